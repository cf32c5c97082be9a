package relay

import "fmt"

// DefaultHistorySize is the history buffer bound applied when a channel
// configuration leaves HistorySize unset.
const DefaultHistorySize = 10

// ChannelConfig controls presence and history behavior of one channel.
// It is resolved once, at channel creation; unset fields take the
// documented defaults (all flags false, HistorySize 10).
type ChannelConfig struct {
	// NotifyPresence enables join/part presence events on membership
	// transitions.
	NotifyPresence bool `json:"notify_presence"`
	// BroadcastPresenceWithUserLists includes the current subscriber list
	// with public state in presence events.
	BroadcastPresenceWithUserLists bool `json:"broadcast_presence_with_user_lists"`
	// StoreHistory enables the bounded message-history buffer.
	StoreHistory bool `json:"store_history"`
	// HistorySize bounds the history buffer; oldest entries are dropped
	// first. Zero means DefaultHistorySize.
	HistorySize int `json:"history_size"`
	// Salvageable marks the channel as removable by the caller once it
	// is empty. The registry never removes channels automatically.
	Salvageable bool `json:"salvageable"`
}

// Validate reports malformed configuration.
func (c ChannelConfig) Validate() error {
	if c.HistorySize < 0 {
		return fmt.Errorf("history size %d: %w", c.HistorySize, ErrInvalidChannelConfig)
	}
	return nil
}

// withDefaults fills unset fields with their documented defaults.
func (c ChannelConfig) withDefaults() ChannelConfig {
	if c.HistorySize == 0 {
		c.HistorySize = DefaultHistorySize
	}
	return c
}

// ChannelConfigs maps channel names to their configuration. An entry
// under a different name has zero effect on a channel.
type ChannelConfigs map[string]ChannelConfig

// Resolve returns the configuration for the named channel with defaults
// applied, or the pure defaults when no matching entry exists.
func (cc ChannelConfigs) Resolve(name string) ChannelConfig {
	return cc[name].withDefaults()
}
