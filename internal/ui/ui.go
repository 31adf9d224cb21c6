package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	SectionView
)

// Catalog is the read side of the song catalog used by the browser.
type Catalog interface {
	ListSongs(ctx context.Context) ([]models.SongSummary, error)
	GetSong(ctx context.Context, id int64) (*models.Song, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	catalog  Catalog
	width    int
	height   int
	songList list.Model
	songs    []models.SongSummary
	selected *models.Song
	lyrics   viewport.Model
	loading  bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model reading from catalog.
func NewModel(ctx context.Context, catalog Catalog) *Model {
	songList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "Songs"
	songList.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		view:     SongListView,
		catalog:  catalog,
		songList: songList,
		lyrics:   viewport.New(0, 0),
		loading:  true,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts loading the song list.
func (m *Model) Init() tea.Cmd {
	return m.fetchSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-4)
		m.lyrics.Width = msg.Width - 4
		m.lyrics.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case SectionView:
			return m.handleSectionKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
	}
	if m.loading {
		return styles.warn.Render("Loading songs...")
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case SectionView:
		return m.renderSections()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsLoaded:
		data := msg.data.(songsLoaded)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.songs = data.songs
		items := make([]list.Item, len(data.songs))
		for i, s := range data.songs {
			items[i] = songItem{song: s}
		}
		return m, m.songList.SetItems(items)

	case MsgSongLoaded:
		data := msg.data.(songLoaded)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.selected = data.song
		m.lyrics.SetContent(renderLyrics(data.song))
		m.lyrics.GotoTop()
		m.view = SectionView
	}
	return m, nil
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.loading = true
			return m, m.fetchSong(item.song.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleSectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SongListView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.view = SongListView
		m.selected = nil
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.lyrics, cmd = m.lyrics.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	case SectionView:
		m.lyrics, cmd = m.lyrics.Update(msg)
	}
	return m, cmd
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	m.err = nil
	return m.fetchSongs()
}

func (m *Model) fetchSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.catalog.ListSongs(m.ctx)
		return songsLoadedMsg(songs, err)
	}
}

func (m *Model) fetchSong(id int64) tea.Cmd {
	return func() tea.Msg {
		song, err := m.catalog.GetSong(m.ctx, id)
		return songLoadedMsg(song, err)
	}
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.reload, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSections() string {
	song := m.selected
	title := styles.title.Render(song.String())
	meta := styles.meta.Render(fmt.Sprintf("%s • %d bpm • %s • %s • %s",
		song.Genre, song.BPM, song.TimeSignature, song.KeySignature, song.Duration))
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, meta, m.lyrics.View(), m.help.ShortHelpView(helpKeys))
}

// renderLyrics lays out a song's sections in order, or its legacy lyric fields when it has none.
func renderLyrics(song *models.Song) string {
	var b strings.Builder
	write := func(label, text string) {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(styles.label.Render(label))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(text, "\n"))
	}

	for _, s := range song.Sections {
		write(formatter.SectionLabel(s.Type), s.Content)
	}
	if len(song.Sections) == 0 {
		for _, p := range song.LegacyParts() {
			write(formatter.SectionLabel(p[0]), p[1])
		}
	}
	if b.Len() == 0 {
		return styles.help.Render("No lyrics yet.")
	}
	return b.String()
}
