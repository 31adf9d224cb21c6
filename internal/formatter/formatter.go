// package formatter renders songs as plain text, Markdown, CSV and JSON for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a --format value. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want text, markdown, json or csv)", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// SectionLabel turns a section type such as "pre_chorus" into "Pre-Chorus".
func SectionLabel(kind string) string {
	words := strings.FieldsFunc(kind, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		words[i] = string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
	}
	if len(words) == 0 {
		return "Section"
	}
	return strings.Join(words, "-")
}

// SongsToText renders a bordered listing of songs with id, title, artist, genre, bpm, key and section count.
func SongsToText(songs []models.SongSummary) []byte {
	rows := make([][]string, len(songs))
	for i, s := range songs {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			s.Artist,
			s.Genre,
			strconv.Itoa(s.BPM),
			s.KeySignature,
			s.Duration,
			strconv.Itoa(len(s.Sections)),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "ARTIST", "GENRE", "BPM", "KEY", "DURATION", "SECTIONS").
		Rows(rows...)

	var buf bytes.Buffer
	buf.WriteString(t.Render())
	buf.WriteString(fmt.Sprintf("\n%d song(s)\n", len(songs)))
	return buf.Bytes()
}

// SongToText renders a lyric sheet. Songs without sections fall back to their legacy lyric fields.
func SongToText(song *models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", song))
	buf.WriteString(fmt.Sprintf("Genre: %s | BPM: %d | Time: %s | Key: %s | Duration: %s\n",
		song.Genre, song.BPM, song.TimeSignature, song.KeySignature, song.Duration))
	if !song.CreatedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("Created: %s\n", song.CreatedAt.Format(models.TimestampLayout)))
	}

	for _, part := range lyricParts(song) {
		buf.WriteString(fmt.Sprintf("\n[%s]\n%s\n", part.label, strings.TrimRight(part.text, "\n")))
	}

	return buf.Bytes()
}

// SongToMarkdown renders a lyric sheet as Markdown.
//
// Remote cover images are linked; inline data URLs are only mentioned.
func SongToMarkdown(song *models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", song.Title))

	if song.CoverImage != nil && *song.CoverImage != "" {
		if strings.HasPrefix(*song.CoverImage, "data:") {
			buf.WriteString("_Cover image embedded in the catalog._\n\n")
		} else {
			buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", *song.CoverImage))
		}
	}

	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", song.Artist))
	buf.WriteString(fmt.Sprintf("**Genre**: %s\n", song.Genre))
	buf.WriteString(fmt.Sprintf("**BPM**: %d\n", song.BPM))
	buf.WriteString(fmt.Sprintf("**Time Signature**: %s\n", song.TimeSignature))
	buf.WriteString(fmt.Sprintf("**Key**: %s\n", song.KeySignature))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n", song.Duration))

	for _, part := range lyricParts(song) {
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", part.label))
		for _, line := range strings.Split(strings.TrimRight(part.text, "\n"), "\n") {
			buf.WriteString(line + "  \n")
		}
	}

	return buf.Bytes()
}

// SongsToCSV converts songs to CSV with columns: ID, Title, Artist, Genre, BPM, Time Signature, Key, Duration, Sections
func SongsToCSV(songs []models.SongSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "BPM", "Time Signature", "Key", "Duration", "Sections"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range songs {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			s.Artist,
			s.Genre,
			strconv.Itoa(s.BPM),
			s.TimeSignature,
			s.KeySignature,
			s.Duration,
			strconv.Itoa(len(s.Sections)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MarshalJSON encodes v, indented when pretty is set, without HTML escaping.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSong renders one song in the given format. CSV renders the song's summary row.
func RenderSong(song *models.Song, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return SongToText(song), nil
	case FormatMarkdown:
		return SongToMarkdown(song), nil
	case FormatJSON:
		return MarshalJSON(song, true)
	case FormatCSV:
		return SongsToCSV([]models.SongSummary{song.Summary()})
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
}

// ExportSong renders song and writes it to path, or to w when path is empty or "-".
//
// Returns the path written, or "" for w. Missing parent directories are created.
func ExportSong(song *models.Song, format Format, path string, w io.Writer) (string, error) {
	data, err := RenderSong(song, format)
	if err != nil {
		return "", err
	}

	if path == "" || path == "-" {
		if _, err := w.Write(data); err != nil {
			return "", fmt.Errorf("failed to write export: %w", err)
		}
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// DefaultExportPath returns "{id}-{slug(title)}{ext}".
func DefaultExportPath(song *models.Song, format Format) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, song.Title)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		return fmt.Sprintf("%d%s", song.ID, format.Extension())
	}
	return fmt.Sprintf("%d-%s%s", song.ID, slug, format.Extension())
}

type lyricPart struct {
	label string
	text  string
}

func lyricParts(song *models.Song) []lyricPart {
	var parts []lyricPart
	for _, s := range song.Sections {
		parts = append(parts, lyricPart{label: SectionLabel(s.Type), text: s.Content})
	}
	if len(parts) > 0 {
		return parts
	}

	for _, p := range song.LegacyParts() {
		parts = append(parts, lyricPart{label: SectionLabel(p[0]), text: p[1]})
	}
	return parts
}
