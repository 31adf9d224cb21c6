// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes many songs to a directory in one of the [formatter] formats:
//   - A producer reads each song through the [SongSource], paced by a [rate.Limiter]
//   - A pool of workers renders and writes one file per song
//   - Failures are recorded per song and never abort the remaining exports
//   - An export_manifest.json summarizing every result is written last
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters and a message for display.
// Updates use select with default to prevent blocking, so a slow or absent reader never stalls an export.
package tasks
