// Package server provides HTTP routing, middleware, and the song handlers of the lyrics API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Song Handler
//
// [SongHandler] is registered on "/" and dispatches on the request method and the last path segment:
//   - GET songs : list every song
//   - GET song-{id} : one song with its sections
//   - POST add-song, update-song, delete-song : catalog writes with a JSON object body
//
// Every response is an [Envelope] with status "success" or "error". Errors are reported with HTTP
// status 200 unless server.strict_status is enabled, in which case [Describe] picks the code.
//
// # Middleware
//
// [Recover], [RequestID], [AccessLog], [CORS] and [RateLimit] are installed by [New] in that order.
//
// # Observability
//
// [Metrics] keeps request counters and latency histograms on a private Prometheus registry served at /metrics.
// /health pings the store through the catalog.
package server
