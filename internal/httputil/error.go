package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/creature-arena/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteJSON(w, http.StatusConflict, errorBody{Error: msg})
}

// Error picks the response status from the service error taxonomy.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		BadRequest(w, err.Error(), err)
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, err.Error(), err)
	case errors.Is(err, service.ErrInvariant):
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
