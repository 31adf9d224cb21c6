// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// NewTestDB opens an in-memory sqlite database with every migration applied.
//
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(context.Background(), db, shared.DriverSQLite); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// SongBody returns a valid add-song body merged with overrides.
//
// An override whose value is nil removes the key.
func SongBody(overrides map[string]any) map[string]any {
	body := map[string]any{
		"title":          "A",
		"artist":         "B",
		"genre":          "Pop",
		"bpm":            120,
		"time_signature": "4/4",
		"duration":       "3:00",
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	return body
}

// SongRequest decodes body the way the HTTP layer does.
func SongRequest(t *testing.T, body map[string]any) *models.SongRequest {
	t.Helper()

	data := MustJSON(t, body)
	var req models.SongRequest
	if err := models.DecodeObject(data, &req); err != nil {
		t.Fatalf("failed to decode song request: %v", err)
	}
	return &req
}

// Sections builds a sections payload of (id, type, content) triples, ordered by position.
func Sections(triples ...[3]string) []map[string]any {
	sections := make([]map[string]any, len(triples))
	for i, tr := range triples {
		sections[i] = map[string]any{"id": tr[0], "type": tr[1], "content": tr[2], "order": i + 1}
	}
	return sections
}

// MustJSON marshals v or fails the test.
func MustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %T: %v", v, err)
	}
	return data
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
