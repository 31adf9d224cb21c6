package repositories

import (
	"context"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

func setupRepo(t *testing.T) *SongRepository {
	t.Helper()
	return NewSongRepository(tu.NewTestDB(t))
}

func record(title string) models.SongRecord {
	return models.SongRecord{
		Title:         title,
		Artist:        "B",
		Genre:         "Pop",
		BPM:           120,
		TimeSignature: "4/4",
		KeySignature:  models.DefaultKeySignature,
		Duration:      "3:00",
	}
}

func sectionInputs(t *testing.T, payload []map[string]any) []models.SectionInput {
	t.Helper()
	req := tu.SongRequest(t, map[string]any{"sections": payload})
	sections, ok := req.SectionsPayload()
	if !ok {
		t.Fatal("expected sections payload")
	}
	return sections
}

func strPtr(s string) *string { return &s }

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		repo := setupRepo(t)

		rec := record("A")
		rec.Chorus = strPtr("la la")
		id, err := repo.Create(ctx, rec, nil)
		if err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if id <= 0 {
			t.Fatalf("expected generated id, got %d", id)
		}

		song, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if song.Title != "A" || song.Artist != "B" || song.BPM != 120 || song.KeySignature != "C" {
			t.Errorf("unexpected song %+v", song)
		}
		if song.CoverImage != nil || song.Verse != nil {
			t.Error("omitted optional fields should be null")
		}
		if song.Chorus == nil || *song.Chorus != "la la" {
			t.Error("expected chorus to be stored")
		}
		if song.CreatedAt.IsZero() {
			t.Error("created_at should be set by the store")
		}
		if song.Sections == nil || len(song.Sections) != 0 {
			t.Errorf("expected empty sections, got %v", song.Sections)
		}
	})

	t.Run("Create with sections", func(t *testing.T) {
		repo := setupRepo(t)

		payload := []map[string]any{
			{"id": "c", "type": "chorus", "content": "third", "order": 3},
			{"id": "a", "type": "verse", "content": "first", "order": "1"},
			{"id": "b", "type": "verse", "content": "second", "order": 2.0},
		}
		id, err := repo.Create(ctx, record("A"), sectionInputs(t, payload))
		if err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		sections, err := repo.Sections(ctx, id)
		if err != nil {
			t.Fatalf("failed to read sections: %v", err)
		}
		if len(sections) != 3 {
			t.Fatalf("expected 3 sections, got %d", len(sections))
		}
		for i, want := range []string{"a", "b", "c"} {
			if sections[i].ID != want || sections[i].Order != i+1 {
				t.Errorf("section %d = %+v, want id %s order %d", i, sections[i], want, i+1)
			}
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := setupRepo(t)

		first, _ := repo.Create(ctx, record("first"), sectionInputs(t, tu.Sections([3]string{"v1", "verse", "x"})))
		second, _ := repo.Create(ctx, record("second"), nil)
		third, _ := repo.Create(ctx, record("third"), sectionInputs(t, tu.Sections(
			[3]string{"v1", "verse", "x"},
			[3]string{"c1", "chorus", "y"},
		)))

		songs, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}

		wantOrder := []int64{third, second, first}
		wantSections := []int{2, 0, 1}
		for i, song := range songs {
			if song.ID != wantOrder[i] {
				t.Errorf("position %d: expected song %d, got %d", i, wantOrder[i], song.ID)
			}
			if len(song.Sections) != wantSections[i] {
				t.Errorf("song %d: expected %d sections, got %d", song.ID, wantSections[i], len(song.Sections))
			}
		}
		if songs[0].Sections[0].Type != "verse" || songs[0].Sections[1].Type != "chorus" {
			t.Errorf("sections out of order: %+v", songs[0].Sections)
		}
	})

	t.Run("List empty", func(t *testing.T) {
		songs, err := setupRepo(t).List(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if songs == nil || len(songs) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", songs)
		}
	})

	t.Run("Update keeps cover when omitted", func(t *testing.T) {
		repo := setupRepo(t)

		rec := record("A")
		rec.CoverImage = strPtr("data:image/png;base64,AA")
		id, _ := repo.Create(ctx, rec, nil)

		update := record("A2")
		update.ID = id
		if err := repo.Update(ctx, update, nil, false); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		song, _ := repo.Get(ctx, id)
		if song.Title != "A2" {
			t.Errorf("expected title A2, got %s", song.Title)
		}
		if song.CoverImage == nil || *song.CoverImage != "data:image/png;base64,AA" {
			t.Errorf("cover image should be preserved, got %v", song.CoverImage)
		}

		update.CoverImage = strPtr("data:image/png;base64,BB")
		if err := repo.Update(ctx, update, nil, false); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}
		song, _ = repo.Get(ctx, id)
		if *song.CoverImage != "data:image/png;base64,BB" {
			t.Errorf("cover image should be overwritten, got %s", *song.CoverImage)
		}
	})

	t.Run("Update resets other optional fields", func(t *testing.T) {
		repo := setupRepo(t)

		rec := record("A")
		rec.Verse = strPtr("old verse")
		rec.KeySignature = "Am"
		id, _ := repo.Create(ctx, rec, nil)

		update := record("A")
		update.ID = id
		if err := repo.Update(ctx, update, nil, false); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		song, _ := repo.Get(ctx, id)
		if song.Verse != nil || song.KeySignature != "C" {
			t.Errorf("expected verse null and key C, got %v %s", song.Verse, song.KeySignature)
		}
	})

	t.Run("Update sections", func(t *testing.T) {
		repo := setupRepo(t)

		id, _ := repo.Create(ctx, record("A"), sectionInputs(t, tu.Sections(
			[3]string{"old-1", "verse", "x"},
			[3]string{"old-2", "chorus", "y"},
		)))
		update := record("A")
		update.ID = id

		if err := repo.Update(ctx, update, nil, false); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}
		if sections, _ := repo.Sections(ctx, id); len(sections) != 2 {
			t.Errorf("omitted sections should be untouched, got %d", len(sections))
		}

		replacement := sectionInputs(t, tu.Sections([3]string{"new-1", "bridge", "z"}))
		if err := repo.Update(ctx, update, replacement, true); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}
		sections, _ := repo.Sections(ctx, id)
		if len(sections) != 1 || sections[0].ID != "new-1" {
			t.Errorf("expected only new-1, got %+v", sections)
		}

		if err := repo.Update(ctx, update, []models.SectionInput{}, true); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}
		if sections, _ := repo.Sections(ctx, id); len(sections) != 0 {
			t.Errorf("empty array should clear sections, got %d", len(sections))
		}
	})

	t.Run("Update unknown id", func(t *testing.T) {
		repo := setupRepo(t)

		update := record("A")
		update.ID = 999
		if err := repo.Update(ctx, update, nil, false); err != nil {
			t.Errorf("updating an unknown id should not fail, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := setupRepo(t)

		id, _ := repo.Create(ctx, record("A"), sectionInputs(t, tu.Sections([3]string{"v1", "verse", "x"})))
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if n, _ := repo.Count(ctx); n != 0 {
			t.Errorf("expected 0 songs, got %d", n)
		}
		if sections, _ := repo.Sections(ctx, id); len(sections) != 0 {
			t.Errorf("expected sections to be removed, got %d", len(sections))
		}
		if err := repo.Delete(ctx, id); err != nil {
			t.Errorf("deleting twice should succeed, got %v", err)
		}
	})

	t.Run("UpdateReplacesSectionsVerbatim", func(t *testing.T) {
		repo := setupRepo(t)

		id, _ := repo.Create(ctx, record("A"), sectionInputs(t, tu.Sections([3]string{"v1", "verse", "x"})))
		rec := record("A")
		rec.ID = id
		payload := []map[string]any{{"id": 7, "type": "outro", "content": 42, "order": true}}
		if err := repo.Update(ctx, rec, sectionInputs(t, payload), true); err != nil {
			t.Fatalf("failed to replace sections: %v", err)
		}

		sections, _ := repo.Sections(ctx, id)
		if len(sections) != 1 {
			t.Fatalf("expected 1 section, got %d", len(sections))
		}
		if got := sections[0]; got.ID != "7" || got.Content != "42" || got.Order != 1 {
			t.Errorf("unexpected section %+v", got)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := setupRepo(t).Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
