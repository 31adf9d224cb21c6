// Package models defines the song catalog entities and the request types accepted by the lyrics API.
//
// The package contains two categories of types:
//
// 1. Stored entities, as read back from the database
//   - [Song] : catalog entry with metadata, legacy lyric fields and ordered sections
//   - [SongSummary] : the list projection of a [Song] without the legacy lyric fields
//   - [Section] : one ordered lyric fragment (verse, chorus, ...) of a song
//
// 2. Request types, as posted by the editing app
//   - [SongRequest] : add-song / update-song body, with presence tracked per field
//   - [SectionInput] : one entry of the sections array, stored verbatim
//   - [DeleteRequest] : delete-song body
//   - [SongRecord] : a fully populated row produced by [SongRequest.Normalize]
//
// Clients send loosely typed JSON (numbers as strings, ids as numbers), so request scalars use
// [FlexInt] and [FlexString], which coerce the way the app has always been served.
package models
