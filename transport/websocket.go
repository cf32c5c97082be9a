package transport

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/relaykit/core/logger"
	"github.com/dmitrymomot/relaykit/core/relay"
)

// handleWebsocket streams the connection's delivery queue over a
// websocket. Each frame carries one JSON batch; heartbeat wakes produce
// empty batches that double as keep-alives. When the socket closes the
// connection is marked for collection rather than torn down inline, so
// the collector repairs all indexes in one place.
func (s *Service) handleWebsocket(w http.ResponseWriter, r *http.Request) {
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

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			logger.Error(err),
			logger.ConnectionID(connID),
		)
		return
	}
	defer func() {
		_ = ws.Close()
		conn.AttachSocket(nil)
		conn.MarkIdle()
	}()

	conn.AttachQueue()
	conn.AttachSocket(ws)
	conn.Touch()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: every inbound frame counts as liveness; a read error
	// means the client is gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			conn.Touch()
		}
	}()

	for {
		batch, err := conn.DrainWait(ctx)
		if err != nil {
			return
		}
		if batch == nil {
			batch = []relay.Message{}
		}
		if err := ws.WriteJSON(batch); err != nil {
			return
		}
		// Stop delivering once the connection has been removed from the
		// registry; the final batch above drained what was queued before
		// teardown.
		if _, ok := s.registry.Connection(connID); !ok {
			return
		}
	}
}
