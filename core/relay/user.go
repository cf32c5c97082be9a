package relay

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// User aggregates all connections of one identity and holds its state
// dictionary. State keys listed in the public-keys set are visible to
// other users through presence payloads and channel snapshots.
type User struct {
	username string

	mu          sync.RWMutex
	lastActive  time.Time
	state       map[string]any
	publicKeys  []string
	connections []*Connection
}

// NewUser creates a user with empty state.
func NewUser(username string) *User {
	return &User{
		username:   username,
		lastActive: time.Now(),
		state:      make(map[string]any),
	}
}

// Username returns the unique identity key.
func (u *User) Username() string { return u.username }

// LastActive returns the liveness timestamp.
func (u *User) LastActive() time.Time {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lastActive
}

// Touch refreshes the liveness timestamp.
func (u *User) Touch() {
	u.mu.Lock()
	u.lastActive = time.Now()
	u.mu.Unlock()
}

// MarkIdle backdates the liveness timestamp so the user is eligible for
// collection under any threshold.
func (u *User) MarkIdle() {
	u.mu.Lock()
	u.lastActive = time.Now().AddDate(-10, 0, 0)
	u.mu.Unlock()
}

// AddConnection appends a connection to the owned list. Adding a
// connection that is already owned is a no-op.
func (u *User) AddConnection(c *Connection) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, owned := range u.connections {
		if owned.ID() == c.ID() {
			return
		}
	}
	u.connections = append(u.connections, c)
}

// RemoveConnection removes a connection from the owned list. Removing a
// connection that is not present is a no-op.
func (u *User) RemoveConnection(c *Connection) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.connections = slices.DeleteFunc(u.connections, func(owned *Connection) bool {
		return owned.ID() == c.ID()
	})
}

// Connections returns a snapshot of the owned connections in insertion
// order.
func (u *User) Connections() []*Connection {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.connections)
}

// ConnectionCount returns the number of owned connections.
func (u *User) ConnectionCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.connections)
}

// SetState replaces the state dictionary wholesale. There is no partial
// merge: callers supply the full set of keys they want retained.
func (u *User) SetState(state map[string]any) {
	u.mu.Lock()
	u.state = maps.Clone(state)
	if u.state == nil {
		u.state = make(map[string]any)
	}
	u.mu.Unlock()
}

// SetPublicKeys replaces the set of state keys visible to other users.
func (u *User) SetPublicKeys(keys []string) {
	u.mu.Lock()
	u.publicKeys = slices.Clone(keys)
	u.mu.Unlock()
}

// State returns a copy of the full state dictionary.
func (u *User) State() map[string]any {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return maps.Clone(u.state)
}

// PublicState returns the state dictionary restricted to the public
// keys. It is recomputed on every call so it can never go stale.
func (u *User) PublicState() map[string]any {
	u.mu.RLock()
	defer u.mu.RUnlock()
	public := make(map[string]any, len(u.publicKeys))
	for _, key := range u.publicKeys {
		if value, ok := u.state[key]; ok {
			public[key] = value
		}
	}
	return public
}

// Broadcast enqueues the message to every owned connection (all devices
// and tabs of this identity) and returns the number of connections
// targeted.
func (u *User) Broadcast(msg Message) int {
	connections := u.Connections()
	for _, c := range connections {
		c.Enqueue(msg)
	}
	return len(connections)
}
