// Package repositories implements persistence for the song catalog over database/sql.
//
// Key Implementations:
//   - [SongRepository] : songs and their song_sections rows, for both sqlite3 and mysql
//
// Statements use "?" placeholders, which both supported drivers accept.
// Every multi-statement write runs inside a single transaction, and every driver failure is
// returned as a [shared.StoreError] so callers can surface the raw driver message.
package repositories
