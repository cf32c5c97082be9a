package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/relaykit/core/logger"
	"github.com/dmitrymomot/relaykit/core/relay"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates core errors into HTTP statuses: duplicate ids
// conflict, unknown targets are not found, malformed configuration is a
// bad request, everything else is internal.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, relay.ErrDuplicateConnectionID):
		status = http.StatusConflict
	case errors.Is(err, relay.ErrConnectionNotFound),
		errors.Is(err, relay.ErrUserNotFound),
		errors.Is(err, relay.ErrChannelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, relay.ErrInvalidChannelConfig):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			logger.Component("transport"),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
