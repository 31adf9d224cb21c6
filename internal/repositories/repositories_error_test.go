package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

func TestSongRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := setupRepo(t)

			_, err := repo.Get(ctx, 404)
			if !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			repo := setupRepo(t)

			id, _ := repo.Create(ctx, record("A"), nil)
			if err := repo.Delete(ctx, id); err != nil {
				t.Fatalf("failed to delete song: %v", err)
			}

			if _, err := repo.Get(ctx, id); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		t.Run("IncompleteSectionRollsBack", func(t *testing.T) {
			db := tu.NewTestDB(t)
			repo := NewSongRepository(db)

			payload := []map[string]any{
				{"id": "v1", "type": "verse", "content": "x", "order": 1},
				{"id": "v2", "type": "verse", "order": 2},
			}
			_, err := repo.Create(ctx, record("A"), sectionInputs(t, payload))

			var se *shared.StoreError
			if !errors.As(err, &se) {
				t.Fatalf("expected StoreError, got %v", err)
			}
			if !strings.Contains(se.Cause(), "NOT NULL") {
				t.Errorf("expected the driver constraint message, got %q", se.Cause())
			}

			if n := tu.CountRows(t, db, "songs"); n != 0 {
				t.Errorf("expected song insert to roll back, found %d rows", n)
			}
			if n := tu.CountRows(t, db, "song_sections"); n != 0 {
				t.Errorf("expected section inserts to roll back, found %d rows", n)
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := tu.NewTestDB(t)
			repo := NewSongRepository(db)
			db.Close()

			if _, err := repo.Create(ctx, record("A"), nil); !shared.IsStoreError(err) {
				t.Fatalf("expected StoreError, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("FailedReplaceKeepsPriorSections", func(t *testing.T) {
			repo := setupRepo(t)

			id, _ := repo.Create(ctx, record("A"), sectionInputs(t, tu.Sections(
				[3]string{"v1", "verse", "x"},
				[3]string{"c1", "chorus", "y"},
			)))

			update := record("changed")
			update.ID = id
			broken := sectionInputs(t, []map[string]any{{"id": "v9", "content": "no type", "order": 1}})
			if err := repo.Update(ctx, update, broken, true); !shared.IsStoreError(err) {
				t.Fatalf("expected StoreError, got %v", err)
			}

			song, err := repo.Get(ctx, id)
			if err != nil {
				t.Fatalf("failed to get song: %v", err)
			}
			if song.Title != "A" {
				t.Errorf("song update should roll back, got title %s", song.Title)
			}
			if len(song.Sections) != 2 {
				t.Errorf("prior sections should survive a failed replace, got %d", len(song.Sections))
			}
		})

		t.Run("SectionsForUnknownSong", func(t *testing.T) {
			repo := setupRepo(t)

			update := record("A")
			update.ID = 999
			err := repo.Update(ctx, update, sectionInputs(t, tu.Sections([3]string{"v1", "verse", "x"})), true)
			if !shared.IsStoreError(err) {
				t.Fatalf("expected foreign key StoreError, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := tu.NewTestDB(t)
			repo := NewSongRepository(db)
			db.Close()

			if _, err := repo.List(ctx); !shared.IsStoreError(err) {
				t.Fatalf("expected StoreError, got %v", err)
			}
		})
	})

	t.Run("UpdateSections", func(t *testing.T) {
		t.Run("MalformedEntry", func(t *testing.T) {
			repo := setupRepo(t)

			id, _ := repo.Create(ctx, record("A"), nil)
			rec := record("B")
			rec.ID = id
			err := repo.Update(ctx, rec, []models.SectionInput{{}}, true)
			if !shared.IsStoreError(err) {
				t.Fatalf("expected StoreError for an empty entry, got %v", err)
			}

			song, _ := repo.Get(ctx, id)
			if song == nil || song.Title != "A" {
				t.Errorf("expected the update to roll back, got %+v", song)
			}
		})
	})
}
