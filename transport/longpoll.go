package transport

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/relaykit/core/relay"
)

// handleListen is the long-poll delivery endpoint: it blocks until the
// connection's queue has messages, a heartbeat fires, or the poll
// timeout elapses, then returns the whole batch as a JSON array. An
// empty array tells the client to poll again.
func (s *Service) handleListen(w http.ResponseWriter, r *http.Request) {
	connID := r.URL.Query().Get("conn_id")
	if connID == "" {
		badRequest(w, "conn_id is required")
		return
	}
	conn, ok := s.registry.Connection(connID)
	if !ok {
		s.writeError(w, r, relay.ErrConnectionNotFound)
		return
	}

	conn.AttachQueue()
	conn.Touch()
	if u, ok := s.registry.User(conn.Username()); ok {
		u.Touch()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.pollTimeout)
	defer cancel()

	batch, err := conn.DrainWait(ctx)
	if err != nil || batch == nil {
		// Timeout and client-gone both degrade to an empty batch.
		batch = []relay.Message{}
	}
	writeJSON(w, http.StatusOK, batch)
}
