package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relaykit/core/server"
)

// freeAddr reserves an ephemeral port and returns it as a bind address.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	t.Run("serves requests until stopped", func(t *testing.T) {
		t.Parallel()

		addr := freeAddr(t)
		srv := server.New(addr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- srv.Start(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "ok")
			}))
		}()

		var body string
		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + addr + "/")
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return false
			}
			body = string(b)
			return true
		}, 2*time.Second, 20*time.Millisecond)
		assert.Equal(t, "ok", body)

		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
		require.NoError(t, srv.Stop())
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0")
		require.NoError(t, srv.Stop())
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("requires an address", func(t *testing.T) {
		t.Parallel()

		_, err := server.NewFromConfig(server.Config{})
		require.ErrorIs(t, err, server.ErrMissingAddress)
	})

	t.Run("builds a server from config", func(t *testing.T) {
		t.Parallel()

		srv, err := server.NewFromConfig(server.Config{Addr: ":8080"})
		require.NoError(t, err)
		assert.NotNil(t, srv)
	})
}

func TestServer_DoubleStart(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := server.New(addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = srv.Start(ctx, http.NewServeMux())
	}()

	require.Eventually(t, func() bool {
		err := srv.Start(ctx, http.NewServeMux())
		return errors.Is(err, server.ErrServerAlreadyRunning)
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, srv.Stop())
}
