package relay

import (
	"slices"
	"sync"
	"time"
)

// UserLookup resolves a username to its User, typically backed by a
// Registry. Channels use it to attach public state to presence events
// and snapshots; a nil lookup yields empty state.
type UserLookup func(username string) (*User, bool)

// Channel is a named pub-sub topic. It indexes subscribed connections
// per username, optionally notifies presence on membership transitions,
// and optionally keeps a bounded FIFO history of broadcast messages.
type Channel struct {
	name     string
	longName string
	users    UserLookup

	mu          sync.RWMutex
	config      ChannelConfig
	connections map[string][]*Connection
	history     []Message
}

// NewChannel creates a channel, resolving its configuration from the
// supplied config map by name. Entries under other names are ignored;
// missing entries yield the documented defaults.
func NewChannel(name, longName string, configs ChannelConfigs, users UserLookup) (*Channel, error) {
	config := configs.Resolve(name)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Channel{
		name:        name,
		longName:    longName,
		users:       users,
		config:      config,
		connections: make(map[string][]*Connection),
	}, nil
}

// Name returns the unique channel key.
func (ch *Channel) Name() string { return ch.name }

// LongName returns the display label.
func (ch *Channel) LongName() string { return ch.longName }

// Config returns the active configuration.
func (ch *Channel) Config() ChannelConfig {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.config
}

// Reconfigure replaces the channel configuration. Used by the
// administrative surface; history is retrimmed to the new bound.
func (ch *Channel) Reconfigure(config ChannelConfig) error {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return err
	}
	ch.mu.Lock()
	ch.config = config
	if !config.StoreHistory {
		ch.history = nil
	} else if len(ch.history) > config.HistorySize {
		ch.history = slices.Clone(ch.history[len(ch.history)-config.HistorySize:])
	}
	ch.mu.Unlock()
	return nil
}

// AddConnection indexes the connection under its username, creating the
// per-user list when absent. When this is the user's first connection
// on the channel and presence notification is enabled, a "join"
// presence event is returned for the caller to fan out to the channel,
// joining connection included.
func (ch *Channel) AddConnection(c *Connection) (Message, bool) {
	ch.mu.Lock()
	existing := ch.connections[c.Username()]
	first := len(existing) == 0
	duplicate := slices.ContainsFunc(existing, func(indexed *Connection) bool {
		return indexed.ID() == c.ID()
	})
	if !duplicate {
		ch.connections[c.Username()] = append(existing, c)
	}
	notify := ch.config.NotifyPresence
	ch.mu.Unlock()

	if first && notify {
		return ch.PresencePayload(c.Username(), PresenceJoin), true
	}
	return Message{}, false
}

// RemoveConnection removes the connection from the per-user list,
// deleting the username key when the list becomes empty. Removing a
// connection that is not indexed is a no-op. When the user's last
// connection leaves and presence notification is enabled, a "part"
// presence event is returned.
func (ch *Channel) RemoveConnection(c *Connection) (Message, bool) {
	ch.mu.Lock()
	remaining := slices.DeleteFunc(ch.connections[c.Username()], func(indexed *Connection) bool {
		return indexed.ID() == c.ID()
	})
	if len(remaining) == 0 {
		delete(ch.connections, c.Username())
	} else {
		ch.connections[c.Username()] = remaining
	}
	parted := len(remaining) == 0
	notify := ch.config.NotifyPresence
	ch.mu.Unlock()

	if parted && notify {
		return ch.PresencePayload(c.Username(), PresencePart), true
	}
	return Message{}, false
}

// HasConnection reports whether the connection id is indexed on this
// channel.
func (ch *Channel) HasConnection(id string) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	for _, connections := range ch.connections {
		for _, c := range connections {
			if c.ID() == id {
				return true
			}
		}
	}
	return false
}

// Connections returns a snapshot of the per-user connection index.
func (ch *Channel) Connections() map[string][]*Connection {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	snapshot := make(map[string][]*Connection, len(ch.connections))
	for username, connections := range ch.connections {
		snapshot[username] = slices.Clone(connections)
	}
	return snapshot
}

// Usernames returns the distinct subscribed usernames in sorted order.
func (ch *Channel) Usernames() []string {
	ch.mu.RLock()
	usernames := make([]string, 0, len(ch.connections))
	for username := range ch.connections {
		usernames = append(usernames, username)
	}
	ch.mu.RUnlock()
	slices.Sort(usernames)
	return usernames
}

// ConnectionCount returns the total number of indexed connections
// across all usernames.
func (ch *Channel) ConnectionCount() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	total := 0
	for _, connections := range ch.connections {
		total += len(connections)
	}
	return total
}

// UserPresences returns one entry per distinct subscribed username with
// that user's public state, in sorted username order.
func (ch *Channel) UserPresences() []UserPresence {
	usernames := ch.Usernames()
	presences := make([]UserPresence, 0, len(usernames))
	for _, username := range usernames {
		state := map[string]any{}
		if ch.users != nil {
			if u, ok := ch.users(username); ok {
				state = u.PublicState()
			}
		}
		presences = append(presences, UserPresence{User: username, State: state})
	}
	return presences
}

// PresencePayload builds a presence event for the given username and
// action. The Users list is populated only when the channel broadcasts
// presence with user lists; otherwise it is always empty.
func (ch *Channel) PresencePayload(username, action string) Message {
	msg := Message{
		Type:      TypePresence,
		Channel:   ch.name,
		User:      username,
		Payload:   map[string]any{"action": action},
		Users:     []UserPresence{},
		Timestamp: time.Now(),
	}
	if ch.Config().BroadcastPresenceWithUserLists {
		msg.Users = ch.UserPresences()
	}
	return msg
}

// AddMessage appends the message to the history buffer, stamping it
// with the channel name and trimming oldest-first to the configured
// bound. It is a no-op when history storage is disabled.
func (ch *Channel) AddMessage(msg Message) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.config.StoreHistory {
		return
	}
	msg.Channel = ch.name
	ch.history = append(ch.history, msg)
	if overflow := len(ch.history) - ch.config.HistorySize; overflow > 0 {
		ch.history = slices.Clone(ch.history[overflow:])
	}
}

// History returns a snapshot of the history buffer, newest last.
func (ch *Channel) History() []Message {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return slices.Clone(ch.history)
}

// Notify enqueues the message to every indexed connection across every
// username without touching history. Presence events travel this path.
func (ch *Channel) Notify(msg Message) int {
	recipients := 0
	for _, connections := range ch.Connections() {
		for _, c := range connections {
			c.Enqueue(msg)
			recipients++
		}
	}
	return recipients
}

// Broadcast stamps the message with the channel name, fans it out to
// every indexed connection, and appends it to history when enabled.
// This is the channel-scoped publish path for normal message delivery.
func (ch *Channel) Broadcast(msg Message) int {
	msg.Channel = ch.name
	recipients := ch.Notify(msg)
	ch.AddMessage(msg)
	return recipients
}
