package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/statica"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// writeNotFound answers 404 with an empty body.
func writeNotFound(w http.ResponseWriter) {
	w.Header().Del("Content-Type")
	w.WriteHeader(http.StatusNotFound)
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	if errors.Is(err, statica.ErrNotFound) {
		slog.Debug("request error", "error", err)
		writeNotFound(w)
		return
	}

	if errors.Is(err, statica.ErrUnsatisfiableRange) {
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "Requested range not satisfiable")
		return
	}

	if errors.Is(err, statica.ErrInvalidInput) {
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	slog.Error("request error", "error", err)

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteHTML writes a rendered HTML page.
func WriteHTML(w http.ResponseWriter, code int, body []byte, head bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if head {
		return
	}
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed to write html response", "error", err)
	}
}
