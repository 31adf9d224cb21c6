package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

type fakeCatalog struct {
	songs   []models.SongSummary
	song    *models.Song
	listErr error
	getErr  error
	lists   int
	gets    []int64
}

func (f *fakeCatalog) ListSongs(ctx context.Context) ([]models.SongSummary, error) {
	f.lists++
	return f.songs, f.listErr
}

func (f *fakeCatalog) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	f.gets = append(f.gets, id)
	return f.song, f.getErr
}

func strPtr(s string) *string { return &s }

func newFakeCatalog() *fakeCatalog {
	song := &models.Song{
		ID:            7,
		Title:         "Cielito Lindo",
		Artist:        "Trío Los Panchos",
		Genre:         "Ranchera",
		BPM:           96,
		TimeSignature: "3/4",
		KeySignature:  "D",
		Duration:      "2:45",
		Sections: []models.Section{
			{ID: "a", Type: "verse", Content: "De la sierra morena", Order: 1},
			{ID: "b", Type: "chorus", Content: "Ay, ay, ay, ay", Order: 2},
		},
	}
	return &fakeCatalog{
		songs: []models.SongSummary{song.Summary(), {ID: 3, Title: "Bésame Mucho", Artist: "Consuelo Velázquez"}},
		song:  song,
	}
}

// run executes cmd and feeds its message back into m until no command is left or a quit is seen.
func run(t *testing.T, m *Model, cmd tea.Cmd) bool {
	t.Helper()
	for range 5 {
		if cmd == nil {
			return false
		}
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
		if _, ok := msg.(Msg); !ok {
			return false
		}
		_, cmd = m.Update(msg)
	}
	return false
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLoadedModel(t *testing.T, catalog *fakeCatalog) *Model {
	t.Helper()
	m := NewModel(context.Background(), catalog)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(t, m, m.Init())
	return m
}

func TestModel(t *testing.T) {
	t.Run("loads songs on init", func(t *testing.T) {
		catalog := newFakeCatalog()
		m := NewModel(context.Background(), catalog)

		if !strings.Contains(m.View(), "Loading") {
			t.Errorf("expected loading view, got %q", m.View())
		}

		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		run(t, m, m.Init())

		if catalog.lists != 1 {
			t.Errorf("expected one list call, got %d", catalog.lists)
		}
		if len(m.songList.Items()) != 2 {
			t.Fatalf("expected 2 list items, got %d", len(m.songList.Items()))
		}
		view := m.View()
		if !strings.Contains(view, "Cielito Lindo") || !strings.Contains(view, "Bésame Mucho") {
			t.Errorf("list view missing songs:\n%s", view)
		}
	})

	t.Run("enter opens sections", func(t *testing.T) {
		catalog := newFakeCatalog()
		m := newLoadedModel(t, catalog)

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		if m.view != SectionView {
			t.Fatalf("expected SectionView, got %v", m.view)
		}
		if len(catalog.gets) != 1 || catalog.gets[0] != 7 {
			t.Errorf("expected GetSong(7), got %v", catalog.gets)
		}

		view := m.View()
		for _, want := range []string{"Cielito Lindo - Trío Los Panchos", "96 bpm", "Verse", "De la sierra morena", "Chorus"} {
			if !strings.Contains(view, want) {
				t.Errorf("section view missing %q:\n%s", want, view)
			}
		}
		if strings.Index(view, "Verse") > strings.Index(view, "Chorus") {
			t.Error("sections should render in order")
		}
	})

	t.Run("esc returns to list", func(t *testing.T) {
		m := newLoadedModel(t, newFakeCatalog())
		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		m.Update(keyPress("esc"))

		if m.view != SongListView || m.selected != nil {
			t.Errorf("expected list view with no selection, got %v", m.view)
		}
	})

	t.Run("r reloads", func(t *testing.T) {
		catalog := newFakeCatalog()
		m := newLoadedModel(t, catalog)

		catalog.songs = catalog.songs[:1]
		_, cmd := m.Update(keyPress("r"))
		run(t, m, cmd)

		if catalog.lists != 2 {
			t.Errorf("expected a second list call, got %d", catalog.lists)
		}
		if len(m.songList.Items()) != 1 {
			t.Errorf("expected 1 item after reload, got %d", len(m.songList.Items()))
		}
	})

	t.Run("q quits", func(t *testing.T) {
		m := newLoadedModel(t, newFakeCatalog())
		_, cmd := m.Update(keyPress("q"))
		if !run(t, m, cmd) {
			t.Error("expected quit")
		}
	})

	t.Run("list error", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.listErr = shared.ErrDatabaseOffline
		m := newLoadedModel(t, catalog)

		if !errors.Is(m.err, shared.ErrDatabaseOffline) {
			t.Fatalf("expected ErrDatabaseOffline, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error view, got %q", m.View())
		}

		catalog.listErr = nil
		_, cmd := m.Update(keyPress("r"))
		run(t, m, cmd)
		if m.err != nil {
			t.Errorf("reload should clear the error, got %v", m.err)
		}
	})

	t.Run("song error stays on list", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.getErr = shared.ErrSongNotFound
		m := newLoadedModel(t, catalog)

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		if m.view != SongListView {
			t.Errorf("expected to stay on the list, got %v", m.view)
		}
		if !errors.Is(m.err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", m.err)
		}
	})
}

func TestRenderLyrics(t *testing.T) {
	t.Run("legacy fallback", func(t *testing.T) {
		out := renderLyrics(&models.Song{Verse: strPtr("old verse"), Bridge: strPtr("old bridge")})
		if !strings.Contains(out, "old verse") || !strings.Contains(out, "Bridge") {
			t.Errorf("expected legacy lyrics, got %q", out)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if out := renderLyrics(&models.Song{}); !strings.Contains(out, "No lyrics yet.") {
			t.Errorf("expected placeholder, got %q", out)
		}
	})
}

func TestSongItem(t *testing.T) {
	item := songItem{song: models.SongSummary{
		Title: "Sabor a Mí", Artist: "Álvaro Carrillo", Genre: "Bolero", BPM: 70, KeySignature: "G",
		Sections: []models.Section{{ID: "x"}},
	}}

	if got := item.Description(); got != "Álvaro Carrillo • 70 bpm • G • 1 sections" {
		t.Errorf("Description() = %q", got)
	}
	if fv := item.FilterValue(); !strings.Contains(fv, "Sabor a Mí") || !strings.Contains(fv, "Álvaro Carrillo") {
		t.Errorf("FilterValue() = %q", fv)
	}
}
