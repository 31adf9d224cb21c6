// package models defines the data model for the song catalog service
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultKeySignature is stored when a request leaves key_signature unset.
const DefaultKeySignature = "C"

// TimestampLayout is the wire format of created_at, matching what the app has always parsed.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a [time.Time] that marshals as [TimestampLayout].
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	for _, layout := range []string{TimestampLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// Section is a named, ordered fragment of a song's lyrics.
//
// ID is chosen by the client and is only unique within its song.
type Section struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Song is a catalog entry as stored.
//
// The verse/pre_chorus/chorus/bridge fields predate sections and are kept alongside them.
type Song struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Genre         string    `json:"genre"`
	BPM           int       `json:"bpm"`
	TimeSignature string    `json:"time_signature"`
	KeySignature  string    `json:"key_signature"`
	Duration      string    `json:"duration"`
	CoverImage    *string   `json:"cover_image"`
	Verse         *string   `json:"verse"`
	PreChorus     *string   `json:"pre_chorus"`
	Chorus        *string   `json:"chorus"`
	Bridge        *string   `json:"bridge"`
	CreatedAt     Timestamp `json:"created_at"`
	Sections      []Section `json:"sections"`
}

// SongSummary is the list-songs projection of a [Song].
type SongSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Genre         string    `json:"genre"`
	BPM           int       `json:"bpm"`
	TimeSignature string    `json:"time_signature"`
	KeySignature  string    `json:"key_signature"`
	Duration      string    `json:"duration"`
	CoverImage    *string   `json:"cover_image"`
	CreatedAt     Timestamp `json:"created_at"`
	Sections      []Section `json:"sections"`
}

// Summary projects s for list responses. Sections are never nil so they encode as [].
func (s *Song) Summary() SongSummary {
	sections := s.Sections
	if sections == nil {
		sections = []Section{}
	}
	return SongSummary{
		ID:            s.ID,
		Title:         s.Title,
		Artist:        s.Artist,
		Genre:         s.Genre,
		BPM:           s.BPM,
		TimeSignature: s.TimeSignature,
		KeySignature:  s.KeySignature,
		Duration:      s.Duration,
		CoverImage:    s.CoverImage,
		CreatedAt:     s.CreatedAt,
		Sections:      sections,
	}
}

// LegacyParts returns the non-empty legacy lyric fields as (label, text) pairs in song order.
func (s *Song) LegacyParts() [][2]string {
	var parts [][2]string
	for _, p := range []struct {
		label string
		text  *string
	}{
		{"verse", s.Verse},
		{"pre_chorus", s.PreChorus},
		{"chorus", s.Chorus},
		{"bridge", s.Bridge},
	} {
		if p.text != nil && strings.TrimSpace(*p.text) != "" {
			parts = append(parts, [2]string{p.label, *p.text})
		}
	}
	return parts
}

// String returns "Title - Artist" for logs and listings.
func (s *Song) String() string {
	return fmt.Sprintf("%s - %s", s.Title, s.Artist)
}
