// Package services implements the song catalog operations behind the lyrics API.
//
// # Catalog
//
// [Catalog] exposes list, get, add, update and delete over a [SongStore].
// Requests are validated before any store access and normalized into a fully populated
// [models.SongRecord], so the store never sees a partially filled song.
//
// # Sections
//
// A write that carries a sections array replaces the song's sections as a set:
//   - add-song replaces only when the array is non-empty
//   - update-song replaces whenever the key is present, so [] clears them
//   - delete-song removes sections before the song
//
// Each write runs in a single store transaction.
//
// # Error Handling
//
// Operations return typed errors from the shared package:
//   - [shared.ValidationError] : required fields missing, wraps [shared.ErrMissingFields] or [shared.ErrMissingSongID]
//   - [shared.ErrSongNotFound] : get-song for an id with no row
//   - [shared.StoreError] : any failure reported by the database driver
package services
