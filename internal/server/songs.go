package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// MaxBodyBytes bounds POST bodies; cover images arrive inline as data URLs.
const MaxBodyBytes = 16 << 20

var songPath = regexp.MustCompile(`^song-(\d+)$`)

// SongCatalog is the set of catalog operations served over HTTP.
//
// [services.Catalog] implements it.
type SongCatalog interface {
	ListSongs(ctx context.Context) ([]models.SongSummary, error)
	GetSong(ctx context.Context, id int64) (*models.Song, error)
	AddSong(ctx context.Context, req *models.SongRequest) (int64, error)
	UpdateSong(ctx context.Context, req *models.SongRequest) error
	DeleteSong(ctx context.Context, req *models.DeleteRequest) error
	Health(ctx context.Context) error
}

// SongHandler serves the lyrics API by dispatching on the method and the last path segment.
//
// Both "/songs" and "/lyrics_api.php/songs" reach the list operation.
type SongHandler struct {
	catalog    SongCatalog
	logger     *log.Logger
	requestLog *log.Logger
	metrics    *Metrics
	strict     bool
}

// NewSongHandler creates a [SongHandler]. requestLog and metrics may be nil.
func NewSongHandler(catalog SongCatalog, logger, requestLog *log.Logger, metrics *Metrics, strict bool) *SongHandler {
	return &SongHandler{
		catalog:    catalog,
		logger:     logger,
		requestLog: requestLog,
		metrics:    metrics,
		strict:     strict,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SongHandler) Routes() []string {
	return []string{"/"}
}

// Endpoint returns the last non-empty segment of path.
func Endpoint(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ServeHTTP dispatches one API request and writes its envelope.
func (h *SongHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	endpoint := Endpoint(r.URL.Path)

	var body []byte
	if r.Method == http.MethodPost {
		var err error
		if body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes)); err != nil {
			body = nil
		}
	}
	h.logRequest(r, endpoint, body)

	op, err := h.dispatch(w, r, endpoint, body)
	status := StatusSuccess
	if err != nil {
		status = StatusError
		msg := WriteError(w, err, h.strict)
		h.logError(r, op, msg, err)
	}
	h.metrics.Observe(op, status, time.Since(start))
}

// dispatch runs the operation named by the request and writes the success envelope.
//
// It returns the operation name for metrics and any error still to be written.
func (h *SongHandler) dispatch(w http.ResponseWriter, r *http.Request, endpoint string, body []byte) (string, error) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		switch {
		case endpoint == "songs":
			songs, err := h.catalog.ListSongs(ctx)
			if err != nil {
				return "list_songs", err
			}
			h.write(w, Success(songs))
			return "list_songs", nil
		case songPath.MatchString(endpoint):
			id, err := strconv.ParseInt(songPath.FindStringSubmatch(endpoint)[1], 10, 64)
			if err != nil {
				return "get_song", shared.ErrInvalidEndpoint
			}
			song, err := h.catalog.GetSong(ctx, id)
			if err != nil {
				return "get_song", err
			}
			h.write(w, Success(song))
			return "get_song", nil
		}
		return "invalid_endpoint", shared.ErrInvalidEndpoint
	case http.MethodPost:
		var probe map[string]json.RawMessage
		if err := models.DecodeObject(body, &probe); err != nil {
			return "invalid_json", err
		}

		switch endpoint {
		case "add-song":
			return "add_song", h.addSong(ctx, w, body)
		case "update-song":
			return "update_song", h.updateSong(ctx, w, body)
		case "delete-song":
			return "delete_song", h.deleteSong(ctx, w, body)
		}
		return "invalid_endpoint", shared.ErrInvalidEndpoint
	}
	return "method_not_allowed", shared.ErrMethodNotAllowed
}

func (h *SongHandler) addSong(ctx context.Context, w http.ResponseWriter, body []byte) error {
	var req models.SongRequest
	if err := models.DecodeObject(body, &req); err != nil {
		return err
	}

	id, err := h.catalog.AddSong(ctx, &req)
	if err != nil {
		return err
	}

	env := Message(MsgSongAdded)
	env.SongID = &id
	h.write(w, env)
	return nil
}

func (h *SongHandler) updateSong(ctx context.Context, w http.ResponseWriter, body []byte) error {
	var req models.SongRequest
	if err := models.DecodeObject(body, &req); err != nil {
		return err
	}

	if err := h.catalog.UpdateSong(ctx, &req); err != nil {
		return err
	}
	h.write(w, Message(MsgSongUpdated))
	return nil
}

func (h *SongHandler) deleteSong(ctx context.Context, w http.ResponseWriter, body []byte) error {
	var req models.DeleteRequest
	if err := models.DecodeObject(body, &req); err != nil {
		return err
	}

	if err := h.catalog.DeleteSong(ctx, &req); err != nil {
		return err
	}
	h.write(w, Message(MsgSongDeleted))
	return nil
}

func (h *SongHandler) write(w http.ResponseWriter, env Envelope) {
	WriteJSON(w, http.StatusOK, env)
}

func (h *SongHandler) logRequest(r *http.Request, endpoint string, body []byte) {
	if h.requestLog == nil {
		return
	}
	shared.WithLogger(h.requestLog, "request_id", RequestIDFrom(r.Context())).Info("request",
		"method", r.Method,
		"endpoint", endpoint,
		"body", string(body),
	)
}

func (h *SongHandler) logError(r *http.Request, op, msg string, err error) {
	id := RequestIDFrom(r.Context())
	if h.requestLog != nil {
		shared.WithLogger(h.requestLog, "request_id", id).Error(msg, "operation", op)
	}

	logger := shared.WithLogger(h.logger, "request_id", id, "operation", op)
	if shared.IsStoreError(err) {
		logger.Error("store failure", "err", err)
		return
	}
	logger.Debug("request rejected", "err", err)
}

// HealthHandler reports whether the catalog's store is reachable, answering 503 when it is not.
func HealthHandler(catalog SongCatalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := catalog.Health(r.Context()); err != nil {
			WriteError(w, err, true)
			return
		}
		WriteJSON(w, http.StatusOK, Envelope{Status: "ok"})
	})
}
