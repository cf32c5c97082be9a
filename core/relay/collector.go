package relay

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Collector defaults.
const (
	DefaultConnectionTTL = time.Minute
	DefaultUserTTL       = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Second
)

// Collector reclaims idle resources with two independent sweeps:
// connections whose liveness timestamp is older than the connection
// TTL, and users older than the user TTL. The connection sweep also
// repairs the channel and user indexes the evicted connections were
// part of. Both sweeps are idempotent.
//
// The user sweep deliberately ignores whether a user still owns live
// connections; the user lifecycle is coarser than the connection
// lifecycle and the two sweeps converge independently.
type Collector struct {
	registry *Registry

	connectionTTL time.Duration
	userTTL       time.Duration
	interval      time.Duration
	logger        *slog.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithConnectionTTL sets the idle threshold for connections.
func WithConnectionTTL(ttl time.Duration) CollectorOption {
	return func(c *Collector) {
		if ttl > 0 {
			c.connectionTTL = ttl
		}
	}
}

// WithUserTTL sets the inactivity threshold for users.
func WithUserTTL(ttl time.Duration) CollectorOption {
	return func(c *Collector) {
		if ttl > 0 {
			c.userTTL = ttl
		}
	}
}

// WithSweepInterval sets how often Start runs both sweeps.
func WithSweepInterval(interval time.Duration) CollectorOption {
	return func(c *Collector) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithCollectorLogger sets the logger for sweep reporting.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector creates a collector over the registry. Call Start to run
// periodic sweeps, or invoke SweepConnections and SweepUsers directly.
func NewCollector(registry *Registry, opts ...CollectorOption) *Collector {
	c := &Collector{
		registry:      registry,
		connectionTTL: DefaultConnectionTTL,
		userTTL:       DefaultUserTTL,
		interval:      DefaultSweepInterval,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SweepConnections evicts every connection idle beyond the connection
// TTL: it is removed from the registry, from its channels' per-user
// lists (dropping username keys that become empty), and from its user's
// owned list. The pass is two-phase: one full iteration collects the
// removal set, then removals are applied, so the sweep never mutates an
// index while iterating it. Returns the number of evicted connections.
func (c *Collector) SweepConnections() int {
	threshold := time.Now().Add(-c.connectionTTL)

	var stale []*Connection
	for _, conn := range c.registry.Connections() {
		if conn.LastActive().Before(threshold) {
			stale = append(stale, conn)
		}
	}

	channels := c.registry.Channels()
	for _, conn := range stale {
		for _, ch := range channels {
			// Index repair only; eviction does not emit presence events.
			ch.RemoveConnection(conn)
		}
		if u, ok := c.registry.User(conn.Username()); ok {
			u.RemoveConnection(conn)
		}
		c.registry.RemoveConnection(conn.ID())
		conn.Heartbeat()
	}

	if len(stale) > 0 {
		c.logger.Debug("collected idle connections", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// SweepUsers removes every user inactive beyond the user TTL from the
// registry outright. Connections still referencing a collected username
// are left untouched; they are reclaimed by the connection sweep on
// their own schedule. Returns the number of removed users.
func (c *Collector) SweepUsers() int {
	threshold := time.Now().Add(-c.userTTL)

	var stale []*User
	for _, u := range c.registry.Users() {
		if u.LastActive().Before(threshold) {
			stale = append(stale, u)
		}
	}
	for _, u := range stale {
		c.registry.RemoveUser(u.Username())
	}

	if len(stale) > 0 {
		c.logger.Debug("collected inactive users", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Start launches the periodic sweep loop. It returns immediately; the
// loop runs until Stop is called or the context is canceled.
func (c *Collector) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.SweepConnections()
				c.SweepUsers()
			}
		}
	}()
	return nil
}

// Stop terminates the sweep loop and waits for it to exit.
func (c *Collector) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}
