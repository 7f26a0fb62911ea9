package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockroom/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service error onto an HTTP status and a stable
// error code, falling back to a generic 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var ise *model.InsufficientStockError
	if errors.As(err, &ise) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ise.Error(), Code: model.ErrCodeInsufficientStock})
		return
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound, model.ErrCodeBatchNotFound:
			status = http.StatusNotFound
		case model.ErrCodeTerminalState, model.ErrCodeConcurrencyConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: de.Message, Code: de.Code})
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: model.ErrCodeInternalError})
}
