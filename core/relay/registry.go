package relay

import (
	"fmt"
	"sync"
)

// Registry is the process-wide store of the three indexes: connection
// id to Connection, username to User, channel name to Channel. It is an
// explicit, constructible value so the core stays embeddable and tests
// never need global teardown. The three maps are independent; cross
// index repair is performed explicitly by the Dispatcher and Collector.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	users       map[string]*User
	channels    map[string]*Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset reinitializes all three indexes. Both cold start and tests rely
// on a full reset being possible at any time.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.connections = make(map[string]*Connection)
	r.users = make(map[string]*User)
	r.channels = make(map[string]*Channel)
	r.mu.Unlock()
}

// Connect creates a connection bound to the username, creating the user
// on first sight, and indexes both. A caller-supplied id that is
// already registered fails with ErrDuplicateConnectionID; an empty id
// is generated.
func (r *Registry) Connect(username, connID string) (*Connection, *User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != "" {
		if _, exists := r.connections[connID]; exists {
			return nil, nil, fmt.Errorf("connection %q: %w", connID, ErrDuplicateConnectionID)
		}
	}

	c := NewConnection(username, connID)
	u, exists := r.users[username]
	if !exists {
		u = NewUser(username)
		r.users[username] = u
	}
	u.Touch()
	u.AddConnection(c)
	r.connections[c.ID()] = c
	return c, u, nil
}

// Connection returns the connection registered under the id.
func (r *Registry) Connection(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[id]
	return c, ok
}

// User returns the user registered under the username.
func (r *Registry) User(username string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	return u, ok
}

// Channel returns the channel registered under the name.
func (r *Registry) Channel(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// EnsureChannel returns the channel registered under the name, creating
// it with the resolved configuration on first subscribe. Configuration
// is applied once at creation; configs passed for an existing channel
// have no effect.
func (r *Registry) EnsureChannel(name, longName string, configs ChannelConfigs) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[name]; ok {
		return ch, nil
	}
	ch, err := NewChannel(name, longName, configs, r.lookupUser)
	if err != nil {
		return nil, err
	}
	r.channels[name] = ch
	return ch, nil
}

// RemoveConnection drops the connection id from the registry index.
// Channel and user index repair is the caller's responsibility.
func (r *Registry) RemoveConnection(id string) {
	r.mu.Lock()
	delete(r.connections, id)
	r.mu.Unlock()
}

// RemoveUser drops the username from the registry index.
func (r *Registry) RemoveUser(username string) {
	r.mu.Lock()
	delete(r.users, username)
	r.mu.Unlock()
}

// DropChannel removes the channel from the registry. Channel removal is
// a caller policy (administrative action, or salvageable and empty);
// the registry never does it on its own.
func (r *Registry) DropChannel(name string) {
	r.mu.Lock()
	delete(r.channels, name)
	r.mu.Unlock()
}

// Connections returns a snapshot of all registered connections.
func (r *Registry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connections := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		connections = append(connections, c)
	}
	return connections
}

// Users returns a snapshot of all registered users.
func (r *Registry) Users() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users
}

// Channels returns a snapshot of all registered channels.
func (r *Registry) Channels() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	return channels
}

// ConnectionCount returns the number of registered connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// UserCount returns the number of registered users.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// lookupUser is the UserLookup handed to channels so presence payloads
// can resolve public state.
func (r *Registry) lookupUser(username string) (*User, bool) {
	return r.User(username)
}
