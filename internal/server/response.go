package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/lyrx/internal/shared"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Client-facing messages. The editing app matches on these strings, so they stay as shipped.
const (
	MsgMethodNotAllowed = "Método no permitido"
	MsgInvalidEndpoint  = "Endpoint no válido"
	MsgInvalidJSON      = "JSON inválido"
	MsgMissingFields    = "Faltan campos obligatorios"
	MsgMissingSongID    = "ID de canción no proporcionado"
	MsgSongNotFound     = "Canción no encontrada"
	MsgSongAdded        = "Canción añadida correctamente"
	MsgSongUpdated      = "Canción actualizada correctamente"
	MsgSongDeleted      = "Canción eliminada correctamente"
	MsgRateLimited      = "Demasiadas solicitudes"
	MsgInternalError    = "Error interno del servidor"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	SongID  *int64 `json:"songId,omitempty"`
}

// Success builds a success envelope carrying data.
func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// Message builds a success envelope carrying only a message.
func Message(msg string) Envelope {
	return Envelope{Status: StatusSuccess, Message: msg}
}

// Failure builds an error envelope.
func Failure(msg string) Envelope {
	return Envelope{Status: StatusError, Message: msg}
}

// Describe maps err to the message sent to clients and the HTTP status used when strict statuses are enabled.
//
// Store errors expose the driver's own error text.
func Describe(err error) (int, string) {
	var (
		ve *shared.ValidationError
		se *shared.StoreError
	)

	switch {
	case errors.Is(err, shared.ErrInvalidJSON):
		return http.StatusBadRequest, MsgInvalidJSON
	case errors.As(err, &ve) && errors.Is(ve.Kind, shared.ErrMissingSongID):
		return http.StatusBadRequest, MsgMissingSongID
	case errors.Is(err, shared.ErrMissingFields):
		return http.StatusBadRequest, MsgMissingFields
	case errors.Is(err, shared.ErrSongNotFound):
		return http.StatusNotFound, MsgSongNotFound
	case errors.Is(err, shared.ErrInvalidEndpoint):
		return http.StatusNotFound, MsgInvalidEndpoint
	case errors.Is(err, shared.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, MsgMethodNotAllowed
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.Is(err, shared.ErrDatabaseOffline):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &se):
		return http.StatusInternalServerError, se.Cause()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// WriteError writes the error envelope for err and returns the message sent.
//
// The HTTP status is 200 unless strict is set.
func WriteError(w http.ResponseWriter, err error, strict bool) string {
	code, msg := Describe(err)
	if !strict {
		code = http.StatusOK
	}
	WriteJSON(w, code, Failure(msg))
	return msg
}
