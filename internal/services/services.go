package services

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// SongStore persists songs and their sections.
//
// [repositories.SongRepository] is the production implementation.
type SongStore interface {
	List(ctx context.Context) ([]*models.Song, error)
	Get(ctx context.Context, id int64) (*models.Song, error)

	// Create inserts a song and, when sections is non-empty, its sections.
	Create(ctx context.Context, rec models.SongRecord, sections []models.SectionInput) (int64, error)

	// Update overwrites a song; a nil cover image is left untouched. replace controls whether sections are rewritten.
	Update(ctx context.Context, rec models.SongRecord, sections []models.SectionInput, replace bool) error

	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Catalog implements the song catalog operations over a [SongStore].
type Catalog struct {
	store  SongStore
	logger *log.Logger
}

// NewCatalog creates a [Catalog]. A nil logger discards output.
func NewCatalog(store SongStore, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Catalog{store: store, logger: logger.WithPrefix("catalog")}
}

// ListSongs returns every song, newest first, in the list projection.
func (c *Catalog) ListSongs(ctx context.Context) ([]models.SongSummary, error) {
	songs, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SongSummary, len(songs))
	for i, song := range songs {
		summaries[i] = song.Summary()
	}
	return summaries, nil
}

// GetSong returns the full record of a song, including legacy lyric fields.
//
// A missing song is reported as [shared.ErrSongNotFound].
func (c *Catalog) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	song, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if song.Sections == nil {
		song.Sections = []models.Section{}
	}
	return song, nil
}

// AddSong validates and inserts a song, returning its generated id.
func (c *Catalog) AddSong(ctx context.Context, req *models.SongRequest) (int64, error) {
	if err := req.Validate(false); err != nil {
		return 0, err
	}

	rec := req.Normalize()
	sections, _ := req.SectionsPayload()

	id, err := c.store.Create(ctx, rec, sections)
	if err != nil {
		return 0, err
	}

	c.logger.Debug("song added", "id", id, "title", rec.Title, "sections", len(sections))
	return id, nil
}

// UpdateSong validates and overwrites the song named by req.ID.
//
// Sections are replaced only when the request carries a sections array.
func (c *Catalog) UpdateSong(ctx context.Context, req *models.SongRequest) error {
	if err := req.Validate(true); err != nil {
		return err
	}

	rec := req.Normalize()
	sections, replace := req.SectionsPayload()

	if err := c.store.Update(ctx, rec, sections, replace); err != nil {
		return err
	}

	c.logger.Debug("song updated", "id", rec.ID, "replace_sections", replace, "keep_cover", rec.CoverImage == nil)
	return nil
}

// DeleteSong removes the song named by req.ID with its sections. Unknown ids succeed.
func (c *Catalog) DeleteSong(ctx context.Context, req *models.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	id := int64(*req.ID)
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.logger.Debug("song deleted", "id", id)
	return nil
}

// CountSongs returns the number of stored songs.
func (c *Catalog) CountSongs(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// Health reports whether the store is reachable.
func (c *Catalog) Health(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDatabaseOffline, err)
	}
	return nil
}
