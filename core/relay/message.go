package relay

import "time"

// Message types stamped on payloads flowing through connection queues
// and channel history.
const (
	TypeMessage  = "message"
	TypePresence = "presence"
)

// Presence actions carried inside a presence event payload.
const (
	PresenceJoin = "join"
	PresencePart = "part"
)

// Message is a single payload delivered to connection queues and,
// for history-enabled channels, stored in the channel's history buffer.
// User identifies the sender, Channel is stamped by the owning channel
// on broadcast, and Users is populated only on presence events.
type Message struct {
	Type      string         `json:"type"`
	User      string         `json:"user,omitempty"`
	Channel   string         `json:"channel,omitempty"`
	Payload   any            `json:"message,omitempty"`
	Users     []UserPresence `json:"users,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// UserPresence describes one subscribed user inside a presence event or
// a channel snapshot: the username plus the user's public state.
type UserPresence struct {
	User  string         `json:"user"`
	State map[string]any `json:"state"`
}
