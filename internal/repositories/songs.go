package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

const songColumns = `id, title, artist, genre, bpm, time_signature, key_signature, duration,
	cover_image, verse, pre_chorus, chorus, bridge, created_at`

// SongRepository persists [models.Song] rows and their sections.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new [SongRepository] with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Ping verifies the store is reachable.
func (r *SongRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return shared.NewStoreError("ping database", err)
	}
	return nil
}

// List returns every song, newest first, with sections attached in ascending order.
//
// Sections for all songs are read with a single query and grouped by song.
func (r *SongRepository) List(ctx context.Context) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, shared.NewStoreError("query songs", err)
	}

	songs := []*models.Song{}
	byID := map[int64]*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			rows.Close()
			return nil, shared.NewStoreError("scan song", err)
		}
		song.Sections = []models.Section{}
		songs = append(songs, song)
		byID[song.ID] = song
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, shared.NewStoreError("iterate songs", err)
	}
	rows.Close()

	if len(songs) == 0 {
		return songs, nil
	}

	sectionRows, err := r.db.QueryContext(ctx, `
		SELECT song_id, section_id, section_type, content, section_order
		FROM song_sections
		ORDER BY song_id, section_order ASC, id ASC
	`)
	if err != nil {
		return nil, shared.NewStoreError("query sections", err)
	}
	defer sectionRows.Close()

	for sectionRows.Next() {
		var (
			songID  int64
			section models.Section
		)
		if err := sectionRows.Scan(&songID, &section.ID, &section.Type, &section.Content, &section.Order); err != nil {
			return nil, shared.NewStoreError("scan section", err)
		}
		if song, ok := byID[songID]; ok {
			song.Sections = append(song.Sections, section)
		}
	}
	if err := sectionRows.Err(); err != nil {
		return nil, shared.NewStoreError("iterate sections", err)
	}

	return songs, nil
}

// Get retrieves a song by id with its sections. A missing row is [shared.ErrSongNotFound].
func (r *SongRepository) Get(ctx context.Context, id int64) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ?`

	song, err := scanSong(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSongNotFound
	}
	if err != nil {
		return nil, shared.NewStoreError("query song", err)
	}

	if song.Sections, err = r.Sections(ctx, id); err != nil {
		return nil, err
	}
	return song, nil
}

// Sections returns the sections of a song ordered by their order value. Unknown ids yield an empty slice.
func (r *SongRepository) Sections(ctx context.Context, songID int64) ([]models.Section, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT section_id, section_type, content, section_order
		FROM song_sections
		WHERE song_id = ?
		ORDER BY section_order ASC, id ASC
	`, songID)
	if err != nil {
		return nil, shared.NewStoreError("query sections", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.Type, &s.Content, &s.Order); err != nil {
			return nil, shared.NewStoreError("scan section", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewStoreError("iterate sections", err)
	}
	return sections, nil
}

// Create inserts rec and, when sections is non-empty, its sections. Both happen in one transaction.
func (r *SongRepository) Create(ctx context.Context, rec models.SongRecord, sections []models.SectionInput) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO songs (title, artist, genre, bpm, time_signature, key_signature, duration,
				cover_image, verse, pre_chorus, chorus, bridge)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.Title, rec.Artist, rec.Genre, rec.BPM, rec.TimeSignature, rec.KeySignature, rec.Duration,
			rec.CoverImage, rec.Verse, rec.PreChorus, rec.Chorus, rec.Bridge,
		)
		if err != nil {
			return shared.NewStoreError("insert song", err)
		}

		if id, err = result.LastInsertId(); err != nil {
			return shared.NewStoreError("read song id", err)
		}

		if len(sections) == 0 {
			return nil
		}
		return replaceSections(ctx, tx, id, sections)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites the song identified by rec.ID.
//
// A nil rec.CoverImage leaves the stored cover_image untouched; every other column is overwritten.
// When replace is true the song's sections are replaced by sections, even if it is empty.
// Updating an id with no row is not an error.
func (r *SongRepository) Update(ctx context.Context, rec models.SongRecord, sections []models.SectionInput, replace bool) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE songs
			SET title = ?, artist = ?, genre = ?, bpm = ?, time_signature = ?, key_signature = ?, duration = ?,
				verse = ?, pre_chorus = ?, chorus = ?, bridge = ?
			WHERE id = ?
		`
		args := []any{
			rec.Title, rec.Artist, rec.Genre, rec.BPM, rec.TimeSignature, rec.KeySignature, rec.Duration,
			rec.Verse, rec.PreChorus, rec.Chorus, rec.Bridge, rec.ID,
		}

		if rec.CoverImage != nil {
			query = `
				UPDATE songs
				SET title = ?, artist = ?, genre = ?, bpm = ?, time_signature = ?, key_signature = ?, duration = ?,
					cover_image = ?, verse = ?, pre_chorus = ?, chorus = ?, bridge = ?
				WHERE id = ?
			`
			args = []any{
				rec.Title, rec.Artist, rec.Genre, rec.BPM, rec.TimeSignature, rec.KeySignature, rec.Duration,
				*rec.CoverImage, rec.Verse, rec.PreChorus, rec.Chorus, rec.Bridge, rec.ID,
			}
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return shared.NewStoreError("update song", err)
		}

		if !replace {
			return nil
		}
		return replaceSections(ctx, tx, rec.ID, sections)
	})
}

// Delete removes a song's sections and then the song. Unknown ids are not an error.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM song_sections WHERE song_id = ?`, id); err != nil {
			return shared.NewStoreError("delete sections", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id); err != nil {
			return shared.NewStoreError("delete song", err)
		}
		return nil
	})
}

// Count returns the number of stored songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		return 0, shared.NewStoreError("count songs", err)
	}
	return n, nil
}

// replaceSections deletes every section of songID and inserts sections verbatim.
// It runs inside the caller's transaction.
func replaceSections(ctx context.Context, db execer, songID int64, sections []models.SectionInput) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM song_sections WHERE song_id = ?`, songID); err != nil {
		return shared.NewStoreError("delete sections", err)
	}

	for _, s := range sections {
		sectionID, kind, content, order := s.Values()
		_, err := db.ExecContext(ctx, `
			INSERT INTO song_sections (song_id, section_id, section_type, content, section_order)
			VALUES (?, ?, ?, ?, ?)
		`, songID, sectionID, kind, content, order)
		if err != nil {
			return shared.NewStoreError("insert section", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (*models.Song, error) {
	var (
		song      models.Song
		cover     sql.NullString
		verse     sql.NullString
		preChorus sql.NullString
		chorus    sql.NullString
		bridge    sql.NullString
		createdAt sql.NullTime
	)

	err := row.Scan(
		&song.ID, &song.Title, &song.Artist, &song.Genre, &song.BPM, &song.TimeSignature, &song.KeySignature,
		&song.Duration, &cover, &verse, &preChorus, &chorus, &bridge, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	song.CoverImage = nullable(cover)
	song.Verse = nullable(verse)
	song.PreChorus = nullable(preChorus)
	song.Chorus = nullable(chorus)
	song.Bridge = nullable(bridge)
	if createdAt.Valid {
		song.CreatedAt = models.Timestamp{Time: createdAt.Time.UTC()}
	}
	return &song, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
