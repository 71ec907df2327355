package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes the value with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorKV(context.Background(), "Failed to write response", "error", err)
	}
}

// writeError replies with a JSON error body.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeEngineError maps engine outcomes onto HTTP statuses: unknown field
// 404, rejected command 422, busy field 409, shutdown 503, anything else
// 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var rejected *field.CommandRejectedError

	switch {
	case errors.Is(err, field.ErrUnknownField):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, field.ErrCommandBusy):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, field.ErrEngineShuttingDown):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.As(err, &rejected):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
