package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/relaykit/core/relay"
)

// Service defaults.
const (
	DefaultPollTimeout       = 25 * time.Second
	DefaultHeartbeatInterval = 5 * time.Second
)

// Service is the HTTP surface over the relay core. It holds no relay
// state of its own; every handler resolves through the registry and
// dispatcher.
type Service struct {
	registry   *relay.Registry
	dispatcher *relay.Dispatcher
	logger     *slog.Logger

	pollTimeout       time.Duration
	heartbeatInterval time.Duration
	upgrader          websocket.Upgrader
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPollTimeout bounds how long a long-poll request blocks waiting
// for messages before returning an empty batch.
func WithPollTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.pollTimeout = timeout
		}
	}
}

// WithHeartbeatInterval sets how often RunHeartbeat wakes blocked
// queue readers.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.heartbeatInterval = interval
		}
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Service) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewService creates the HTTP surface over the registry.
func NewService(registry *relay.Registry, opts ...Option) *Service {
	s := &Service{
		registry:          registry,
		dispatcher:        relay.NewDispatcher(registry),
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		pollTimeout:       DefaultPollTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route table.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /connect", s.handleConnect)
	mux.HandleFunc("POST /subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /unsubscribe", s.handleUnsubscribe)
	mux.HandleFunc("POST /message", s.handleMessage)
	mux.HandleFunc("POST /disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /info", s.handleInfo)
	mux.HandleFunc("GET /listen", s.handleListen)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("POST /admin/channel_config", s.handleChannelConfig)
	mux.HandleFunc("POST /admin/disconnect", s.handleForceDisconnect)
	return mux
}

// RunHeartbeat periodically wakes every blocked queue reader so
// long-poll waits stay bounded independently of real traffic. Blocks
// until the context is done.
func (s *Service) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range s.registry.Connections() {
				c.Heartbeat()
			}
		}
	}
}
