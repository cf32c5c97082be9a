package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relaykit/core/relay"
)

func TestDispatcher_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("joins channels and reports membership", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		c, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)

		channels, err := d.Subscribe(c.ID(), []string{"lobby", "news"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"lobby", "news"}, channels)

		ch, ok := r.Channel("lobby")
		require.True(t, ok)
		assert.Contains(t, ch.Connections(), "test_user")
	})

	t.Run("fails for unknown connection", func(t *testing.T) {
		t.Parallel()

		d := relay.NewDispatcher(relay.NewRegistry())
		_, err := d.Subscribe("missing", []string{"lobby"}, nil)
		require.ErrorIs(t, err, relay.ErrConnectionNotFound)
	})

	t.Run("fans join presence out to the whole channel including the joiner", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		configs := relay.ChannelConfigs{"lobby": {NotifyPresence: true}}

		first, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		first.AttachQueue()
		_, err = d.Subscribe(first.ID(), []string{"lobby"}, configs)
		require.NoError(t, err)
		first.Drain() // own join event

		second, _, err := r.Connect("test_user2", "B")
		require.NoError(t, err)
		second.AttachQueue()
		_, err = d.Subscribe(second.ID(), []string{"lobby"}, configs)
		require.NoError(t, err)

		for _, c := range []*relay.Connection{first, second} {
			batch := c.Drain()
			require.Len(t, batch, 1, "connection %s", c.ID())
			assert.Equal(t, relay.TypePresence, batch[0].Type)
			assert.Equal(t, "test_user2", batch[0].User)
			assert.Equal(t, map[string]any{"action": relay.PresenceJoin}, batch[0].Payload)
		}
	})
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("leaves the channel and fans out part presence", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		configs := relay.ChannelConfigs{"lobby": {NotifyPresence: true}}

		stayer, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		stayer.AttachQueue()
		leaver, _, err := r.Connect("test_user2", "B")
		require.NoError(t, err)

		_, err = d.Subscribe(stayer.ID(), []string{"lobby", "news"}, configs)
		require.NoError(t, err)
		_, err = d.Subscribe(leaver.ID(), []string{"lobby"}, configs)
		require.NoError(t, err)
		stayer.Drain()

		channels, err := d.Unsubscribe(leaver.ID(), []string{"lobby"})
		require.NoError(t, err)
		assert.Empty(t, channels)

		batch := stayer.Drain()
		require.Len(t, batch, 1)
		assert.Equal(t, map[string]any{"action": relay.PresencePart}, batch[0].Payload)
		assert.Equal(t, "test_user2", batch[0].User)
	})

	t.Run("unknown channel names are benign", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		c, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)

		channels, err := d.Unsubscribe(c.ID(), []string{"missing"})
		require.NoError(t, err)
		assert.Empty(t, channels)
	})
}

func TestDispatcher_Publish(t *testing.T) {
	t.Parallel()

	t.Run("delivers to channel subscribers and stores history", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		configs := relay.ChannelConfigs{"lobby": {StoreHistory: true, HistorySize: 3}}

		a, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		a.AttachQueue()
		b, _, err := r.Connect("test_user2", "B")
		require.NoError(t, err)
		b.AttachQueue()
		_, err = d.Subscribe(a.ID(), []string{"lobby"}, configs)
		require.NoError(t, err)
		_, err = d.Subscribe(b.ID(), []string{"lobby"}, configs)
		require.NoError(t, err)

		recipients, err := d.Publish(relay.Message{Payload: "hello"}, []string{"lobby"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, recipients)

		batch := a.Drain()
		require.Len(t, batch, 1)
		assert.Equal(t, relay.TypeMessage, batch[0].Type)
		assert.Equal(t, "lobby", batch[0].Channel)
		assert.False(t, batch[0].Timestamp.IsZero())

		ch, _ := r.Channel("lobby")
		assert.Len(t, ch.History(), 1)
	})

	t.Run("delivers to every device of a user exactly once", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)

		a, _, err := r.Connect("u", "A")
		require.NoError(t, err)
		a.AttachQueue()
		b, _, err := r.Connect("u", "B")
		require.NoError(t, err)
		b.AttachQueue()

		recipients, err := d.Publish(relay.Message{Payload: "direct"}, nil, []string{"u"})
		require.NoError(t, err)
		assert.Equal(t, 2, recipients)
		assert.Len(t, a.Drain(), 1)
		assert.Len(t, b.Drain(), 1)
	})

	t.Run("unknown channel fails with nothing sent", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)
		a, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		a.AttachQueue()
		_, err = d.Subscribe(a.ID(), []string{"lobby"}, nil)
		require.NoError(t, err)

		_, err = d.Publish(relay.Message{Payload: "x"}, []string{"lobby", "missing"}, nil)
		require.ErrorIs(t, err, relay.ErrChannelNotFound)
		assert.Empty(t, a.Drain())
	})

	t.Run("unknown user fails", func(t *testing.T) {
		t.Parallel()

		d := relay.NewDispatcher(relay.NewRegistry())
		_, err := d.Publish(relay.Message{}, nil, []string{"ghost"})
		require.ErrorIs(t, err, relay.ErrUserNotFound)
	})
}

func TestDispatcher_Disconnect(t *testing.T) {
	t.Parallel()

	t.Run("tears down all three memberships synchronously", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)

		c, u, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		_, err = d.Subscribe(c.ID(), []string{"lobby"}, nil)
		require.NoError(t, err)

		require.NoError(t, d.Disconnect(c.ID()))

		_, ok := r.Connection("A")
		assert.False(t, ok)
		assert.Equal(t, 0, u.ConnectionCount())
		ch, _ := r.Channel("lobby")
		assert.NotContains(t, ch.Connections(), "test_user")
		assert.Empty(t, d.ChannelsOf("A"))
	})

	t.Run("pending drain returns what was queued before teardown", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		d := relay.NewDispatcher(r)

		c, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		c.AttachQueue()
		c.Enqueue(relay.Message{Payload: "queued"})

		require.NoError(t, d.Disconnect(c.ID()))

		batch := c.Drain()
		require.Len(t, batch, 1)
		assert.Equal(t, "queued", batch[0].Payload)
	})

	t.Run("unknown connection fails", func(t *testing.T) {
		t.Parallel()

		d := relay.NewDispatcher(relay.NewRegistry())
		require.ErrorIs(t, d.Disconnect("missing"), relay.ErrConnectionNotFound)
	})
}
