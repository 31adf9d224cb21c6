package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/lyrx/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.SongSummary] to implement [list.Item].
type songItem struct {
	song models.SongSummary
}

func (i songItem) FilterValue() string {
	return strings.Join([]string{i.song.Title, i.song.Artist, i.song.Genre}, " ")
}

func (i songItem) Title() string { return i.song.Title }

func (i songItem) Description() string {
	desc := fmt.Sprintf("%s • %d bpm • %s", i.song.Artist, i.song.BPM, i.song.KeySignature)
	if n := len(i.song.Sections); n > 0 {
		desc = fmt.Sprintf("%s • %d sections", desc, n)
	}
	return desc
}
