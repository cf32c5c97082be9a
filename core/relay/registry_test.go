package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relaykit/core/relay"
)

func TestRegistry_Connect(t *testing.T) {
	t.Parallel()

	t.Run("creates and indexes connection and user", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		c, u, err := r.Connect("test_user", "A")
		require.NoError(t, err)

		assert.Equal(t, "A", c.ID())
		assert.Equal(t, "test_user", u.Username())
		assert.Equal(t, 1, u.ConnectionCount())

		got, ok := r.Connection("A")
		require.True(t, ok)
		assert.Same(t, c, got)

		gotUser, ok := r.User("test_user")
		require.True(t, ok)
		assert.Same(t, u, gotUser)
	})

	t.Run("fails on duplicate connection id", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		_, _, err := r.Connect("test_user", "A")
		require.NoError(t, err)

		_, _, err = r.Connect("test_user2", "A")
		require.ErrorIs(t, err, relay.ErrDuplicateConnectionID)
	})

	t.Run("generates unique id when none supplied", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		c, _, err := r.Connect("test_user", "")
		require.NoError(t, err)
		require.NotEmpty(t, c.ID())

		_, ok := r.Connection(c.ID())
		assert.True(t, ok)
	})

	t.Run("reuses the user across connections", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		_, u1, err := r.Connect("test_user", "A")
		require.NoError(t, err)
		_, u2, err := r.Connect("test_user", "B")
		require.NoError(t, err)

		assert.Same(t, u1, u2)
		assert.Equal(t, 2, u1.ConnectionCount())
		assert.Equal(t, 1, r.UserCount())
	})
}

func TestRegistry_EnsureChannel(t *testing.T) {
	t.Parallel()

	t.Run("creates channel once with creation-time config", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		configs := relay.ChannelConfigs{"test": {StoreHistory: true}}
		ch, err := r.EnsureChannel("test", "long name", configs)
		require.NoError(t, err)
		assert.True(t, ch.Config().StoreHistory)

		// Later configs for an existing channel have zero effect.
		again, err := r.EnsureChannel("test", "", relay.ChannelConfigs{"test": {StoreHistory: false, NotifyPresence: true}})
		require.NoError(t, err)
		assert.Same(t, ch, again)
		assert.True(t, again.Config().StoreHistory)
		assert.False(t, again.Config().NotifyPresence)
	})

	t.Run("propagates config validation errors", func(t *testing.T) {
		t.Parallel()

		r := relay.NewRegistry()
		_, err := r.EnsureChannel("test", "", relay.ChannelConfigs{"test": {HistorySize: -1}})
		require.ErrorIs(t, err, relay.ErrInvalidChannelConfig)

		_, ok := r.Channel("test")
		assert.False(t, ok)
	})
}

func TestRegistry_Reset(t *testing.T) {
	t.Parallel()

	r := relay.NewRegistry()
	_, _, err := r.Connect("test_user", "A")
	require.NoError(t, err)
	_, err = r.EnsureChannel("test", "", nil)
	require.NoError(t, err)

	r.Reset()

	assert.Equal(t, 0, r.ConnectionCount())
	assert.Equal(t, 0, r.UserCount())
	assert.Empty(t, r.Channels())
}

func TestRegistry_DropChannel(t *testing.T) {
	t.Parallel()

	r := relay.NewRegistry()
	_, err := r.EnsureChannel("test", "", nil)
	require.NoError(t, err)

	r.DropChannel("test")
	_, ok := r.Channel("test")
	assert.False(t, ok)
}
