package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection represents one client attachment (a tab or device) bound
// to a username. It owns an unbounded FIFO delivery queue that is
// created lazily when a transport attaches, and a liveness timestamp
// the collector uses to decide eviction.
type Connection struct {
	id       string
	username string

	mu         sync.Mutex
	lastActive time.Time
	queued     []Message
	hasQueue   bool
	socket     any

	// wake carries at most one pending signal so a drain blocked in
	// DrainWait observes messages or heartbeats that arrive after its
	// initial queue check.
	wake chan struct{}
}

// NewConnection creates a connection for the given username. When id is
// empty a random one is generated. Uniqueness across the process is
// enforced by Registry.Connect, not here.
func NewConnection(username, id string) *Connection {
	if id == "" {
		id = uuid.NewString()
	}
	return &Connection{
		id:         id,
		username:   username,
		lastActive: time.Now(),
		wake:       make(chan struct{}, 1),
	}
}

// ID returns the unique connection identifier.
func (c *Connection) ID() string { return c.id }

// Username returns the identity this connection belongs to.
func (c *Connection) Username() string { return c.username }

// LastActive returns the liveness timestamp.
func (c *Connection) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Touch refreshes the liveness timestamp. Transports call it on every
// inbound client signal.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// MarkIdle backdates the liveness timestamp far enough that the
// connection is eligible for collection under any threshold. Used by
// forced-disconnect flows that let a pending drain finish before the
// collector removes the connection.
func (c *Connection) MarkIdle() {
	c.mu.Lock()
	c.lastActive = time.Now().AddDate(-10, 0, 0)
	c.mu.Unlock()
}

// AttachQueue allocates the delivery queue. Until a transport attaches,
// enqueued messages are discarded.
func (c *Connection) AttachQueue() {
	c.mu.Lock()
	c.hasQueue = true
	c.mu.Unlock()
}

// AttachSocket stores an opaque transport handle, such as a websocket
// connection, for diagnostics and forced teardown.
func (c *Connection) AttachSocket(socket any) {
	c.mu.Lock()
	c.socket = socket
	c.mu.Unlock()
}

// Socket returns the opaque transport handle, or nil when none is
// attached.
func (c *Connection) Socket() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket
}

// Enqueue appends a message to the delivery queue and wakes a blocked
// drain. Messages arriving before AttachQueue are dropped.
func (c *Connection) Enqueue(msg Message) {
	c.mu.Lock()
	if !c.hasQueue {
		c.mu.Unlock()
		return
	}
	c.queued = append(c.queued, msg)
	c.mu.Unlock()
	c.signal()
}

// Heartbeat wakes a blocked drain without delivering any content, so a
// long-poll reader returns an empty batch instead of starving.
func (c *Connection) Heartbeat() {
	c.signal()
}

// Drain atomically removes and returns all currently queued messages.
// The batch is never partial; an empty queue yields a nil batch.
func (c *Connection) Drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.queued
	c.queued = nil
	return batch
}

// DrainWait returns the pending batch immediately when the queue is
// non-empty, otherwise it blocks until a message or heartbeat arrives
// or the context is done. A heartbeat wake yields an empty batch and a
// nil error; cancellation returns the context error.
func (c *Connection) DrainWait(ctx context.Context) ([]Message, error) {
	if batch := c.Drain(); len(batch) > 0 {
		return batch, nil
	}
	select {
	case <-c.wake:
		return c.Drain(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Connection) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
