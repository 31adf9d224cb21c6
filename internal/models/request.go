package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/lyrx/internal/shared"
)

// FlexInt is an integer that also accepts numeric strings, floats and booleans.
//
// Strings are read up to their leading numeric prefix ("120bpm" -> 120, "abc" -> 0), floats truncate.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty value")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexInt(parseIntPrefix(s))
	case bytes.Equal(data, []byte("true")):
		*f = 1
	case bytes.Equal(data, []byte("false")):
		*f = 0
	case data[0] == '[' || data[0] == '{':
		return fmt.Errorf("cannot use %s as an integer", data)
	default:
		n, err := numberToInt(string(data))
		if err != nil {
			return err
		}
		*f = FlexInt(n)
	}
	return nil
}

// Int returns the value as an int.
func (f FlexInt) Int() int { return int(f) }

func numberToInt(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return clampFloat(fl), nil
}

func clampFloat(fl float64) int64 {
	switch {
	case math.IsNaN(fl):
		return 0
	case fl >= math.MaxInt64:
		return math.MaxInt64
	case fl <= math.MinInt64:
		return math.MinInt64
	}
	return int64(fl)
}

func parseIntPrefix(s string) int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if fl, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return clampFloat(fl)
	}

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if s[0] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return n
}

// FlexString is a string that also accepts numbers (kept as their literal text) and booleans.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty value")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(data, []byte("true")):
		*f = "1"
	case bytes.Equal(data, []byte("false")):
		*f = ""
	case data[0] == '[' || data[0] == '{':
		return fmt.Errorf("cannot use %s as a string", data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	}
	return nil
}

// Empty reports whether f is absent, "" or "0".
func (f *FlexString) Empty() bool {
	return f == nil || *f == "" || *f == "0"
}

// Ptr returns f as a *string, nil when f is absent.
func (f *FlexString) Ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

// SectionInput is one entry of a request's sections array.
//
// Entries are stored verbatim; a nil field is written as NULL and left for the store's constraints to reject.
type SectionInput struct {
	ID      *FlexString `json:"id"`
	Type    *FlexString `json:"type"`
	Content *FlexString `json:"content"`
	Order   *FlexInt    `json:"order"`
}

// Values returns the entry's id, type, content and order as statement arguments, using nil for absent fields.
func (s SectionInput) Values() (id, kind, content, order any) {
	if s.ID != nil {
		id = string(*s.ID)
	}
	if s.Type != nil {
		kind = string(*s.Type)
	}
	if s.Content != nil {
		content = string(*s.Content)
	}
	if s.Order != nil {
		order = int64(*s.Order)
	}
	return id, kind, content, order
}

// SongRequest is the body of add-song and update-song.
//
// Pointer fields distinguish absent or null keys from empty values.
type SongRequest struct {
	ID            *FlexInt        `json:"id"`
	Title         *FlexString     `json:"title"`
	Artist        *FlexString     `json:"artist"`
	Genre         *FlexString     `json:"genre"`
	BPM           *FlexInt        `json:"bpm"`
	TimeSignature *FlexString     `json:"time_signature"`
	KeySignature  *FlexString     `json:"key_signature"`
	Duration      *FlexString     `json:"duration"`
	CoverImage    *FlexString     `json:"cover_image"`
	Verse         *FlexString     `json:"verse"`
	PreChorus     *FlexString     `json:"pre_chorus"`
	Chorus        *FlexString     `json:"chorus"`
	Bridge        *FlexString     `json:"bridge"`
	Sections      json.RawMessage `json:"sections"`
}

// SongRecord is a fully populated songs row, ready for persistence.
type SongRecord struct {
	ID            int64
	Title         string
	Artist        string
	Genre         string
	BPM           int
	TimeSignature string
	KeySignature  string
	Duration      string
	CoverImage    *string
	Verse         *string
	PreChorus     *string
	Chorus        *string
	Bridge        *string
}

// DeleteRequest is the body of delete-song.
type DeleteRequest struct {
	ID *FlexInt `json:"id"`
}

// DecodeObject unmarshals body into v after checking it is a JSON object with at least one key.
//
// Anything else, including "{}", "[]" and "null", is reported as [shared.ErrInvalidJSON].
func DecodeObject(body []byte, v any) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || len(probe) == 0 {
		return shared.ErrInvalidJSON
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidJSON, err)
	}
	return nil
}

// Validate checks required fields before any store access.
//
// title, artist, genre, time_signature and duration must be non-empty, where "0" also counts as empty;
// bpm only has to be present.
// requireID additionally demands id, as update-song does.
func (r *SongRequest) Validate(requireID bool) error {
	var missing []string
	if requireID && r.ID == nil {
		missing = append(missing, "id")
	}

	for _, f := range []struct {
		name  string
		value *FlexString
	}{
		{"title", r.Title},
		{"artist", r.Artist},
		{"genre", r.Genre},
	} {
		if f.value.Empty() {
			missing = append(missing, f.name)
		}
	}

	if r.BPM == nil {
		missing = append(missing, "bpm")
	}

	if r.TimeSignature.Empty() {
		missing = append(missing, "time_signature")
	}
	if r.Duration.Empty() {
		missing = append(missing, "duration")
	}

	if len(missing) > 0 {
		return shared.NewValidationError(shared.ErrMissingFields, missing...)
	}
	return nil
}

// Normalize applies defaults and coercions, producing the row to persist.
//
// Call [SongRequest.Validate] first; Normalize assumes required fields are present.
func (r *SongRequest) Normalize() SongRecord {
	rec := SongRecord{
		Title:         deref(r.Title),
		Artist:        deref(r.Artist),
		Genre:         deref(r.Genre),
		TimeSignature: deref(r.TimeSignature),
		KeySignature:  DefaultKeySignature,
		Duration:      deref(r.Duration),
		CoverImage:    r.CoverImage.Ptr(),
		Verse:         r.Verse.Ptr(),
		PreChorus:     r.PreChorus.Ptr(),
		Chorus:        r.Chorus.Ptr(),
		Bridge:        r.Bridge.Ptr(),
	}
	if r.ID != nil {
		rec.ID = int64(*r.ID)
	}
	if r.BPM != nil {
		rec.BPM = r.BPM.Int()
	}
	if r.KeySignature != nil {
		rec.KeySignature = string(*r.KeySignature)
	}
	return rec
}

// SectionsPayload reports whether the request carries a sections array and returns its entries.
//
// A missing or null key, or a value that is not an array, counts as absent.
// Entries that are not objects decode to an empty [SectionInput].
func (r *SongRequest) SectionsPayload() ([]SectionInput, bool) {
	raw := bytes.TrimSpace(r.Sections)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	sections := make([]SectionInput, len(items))
	for i, item := range items {
		var s SectionInput
		if err := json.Unmarshal(item, &s); err == nil {
			sections[i] = s
		}
	}
	return sections, true
}

// Validate checks that the delete request names a song.
func (r *DeleteRequest) Validate() error {
	if r.ID == nil {
		return shared.NewValidationError(shared.ErrMissingSongID, "id")
	}
	return nil
}

func deref(s *FlexString) string {
	if s == nil {
		return ""
	}
	return string(*s)
}
