package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lyrx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgSongLoaded
)

type songsLoaded struct {
	songs []models.SongSummary
	err   error
}

type songLoaded struct {
	song *models.Song
	err  error
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(songs []models.SongSummary, err error) Msg {
	return Msg{kind: MsgSongsLoaded, data: songsLoaded{songs, err}}
}

// songLoadedMsg is the constructor for [MsgSongLoaded]
func songLoadedMsg(song *models.Song, err error) Msg {
	return Msg{kind: MsgSongLoaded, data: songLoaded{song, err}}
}
