package relay

import (
	"fmt"
	"slices"
	"time"
)

// Dispatcher layers target resolution over the Channel and User
// broadcast primitives: it maps a publish target (channel names,
// usernames, or both) to the concrete set of connections and enqueues
// on each. It owns no state of its own; it exists so transports never
// reach into channel or user internals.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Subscribe joins the connection to the named channels, creating
// channels on first subscribe with the supplied configs, and fans out
// any presence join events produced by the membership transitions. It
// returns the full sorted list of channels the connection is now on.
func (d *Dispatcher) Subscribe(connID string, channels []string, configs ChannelConfigs) ([]string, error) {
	c, ok := d.registry.Connection(connID)
	if !ok {
		return nil, fmt.Errorf("connection %q: %w", connID, ErrConnectionNotFound)
	}
	c.Touch()
	if u, ok := d.registry.User(c.Username()); ok {
		u.Touch()
	}

	for _, name := range channels {
		ch, err := d.registry.EnsureChannel(name, name, configs)
		if err != nil {
			return nil, err
		}
		if event, ok := ch.AddConnection(c); ok {
			ch.Notify(event)
		}
	}
	return d.ChannelsOf(connID), nil
}

// Unsubscribe removes the connection from the named channels, fanning
// out any presence part events, and returns the remaining sorted
// channel list. Unknown channel names are benign no-ops.
func (d *Dispatcher) Unsubscribe(connID string, channels []string) ([]string, error) {
	c, ok := d.registry.Connection(connID)
	if !ok {
		return nil, fmt.Errorf("connection %q: %w", connID, ErrConnectionNotFound)
	}
	c.Touch()

	for _, name := range channels {
		ch, ok := d.registry.Channel(name)
		if !ok {
			continue
		}
		if event, ok := ch.RemoveConnection(c); ok {
			ch.Notify(event)
		}
	}
	return d.ChannelsOf(connID), nil
}

// ChannelsOf returns the sorted names of the channels the connection is
// currently indexed on.
func (d *Dispatcher) ChannelsOf(connID string) []string {
	names := []string{}
	for _, ch := range d.registry.Channels() {
		if ch.HasConnection(connID) {
			names = append(names, ch.Name())
		}
	}
	slices.Sort(names)
	return names
}

// Publish delivers the message to every connection of the named
// channels and usernames and returns the total recipient count. All
// targets are resolved before any delivery, so an unknown channel or
// username fails the whole publish with nothing sent.
func (d *Dispatcher) Publish(msg Message, channels []string, usernames []string) (int, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Type == "" {
		msg.Type = TypeMessage
	}

	targetChannels := make([]*Channel, 0, len(channels))
	for _, name := range channels {
		ch, ok := d.registry.Channel(name)
		if !ok {
			return 0, fmt.Errorf("channel %q: %w", name, ErrChannelNotFound)
		}
		targetChannels = append(targetChannels, ch)
	}
	targetUsers := make([]*User, 0, len(usernames))
	for _, username := range usernames {
		u, ok := d.registry.User(username)
		if !ok {
			return 0, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
		}
		targetUsers = append(targetUsers, u)
	}

	recipients := 0
	for _, ch := range targetChannels {
		recipients += ch.Broadcast(msg)
	}
	for _, u := range targetUsers {
		recipients += u.Broadcast(msg)
	}
	return recipients, nil
}

// Disconnect tears the connection down synchronously: it leaves every
// channel (fanning out presence part events), detaches from its user,
// drops the registry entry, and wakes any reader blocked on the queue
// so a pending drain returns what was queued before teardown.
func (d *Dispatcher) Disconnect(connID string) error {
	c, ok := d.registry.Connection(connID)
	if !ok {
		return fmt.Errorf("connection %q: %w", connID, ErrConnectionNotFound)
	}

	for _, ch := range d.registry.Channels() {
		if event, ok := ch.RemoveConnection(c); ok {
			ch.Notify(event)
		}
	}
	if u, ok := d.registry.User(c.Username()); ok {
		u.RemoveConnection(c)
	}
	d.registry.RemoveConnection(connID)
	c.Heartbeat()
	return nil
}
