// Command relayd runs the relay as a standalone HTTP service: the state
// core, the idle-resource collector, and the client and admin endpoints
// behind a gracefully shutting down server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/relaykit/core/config"
	"github.com/dmitrymomot/relaykit/core/logger"
	"github.com/dmitrymomot/relaykit/core/relay"
	"github.com/dmitrymomot/relaykit/core/server"
	"github.com/dmitrymomot/relaykit/transport"
)

type appConfig struct {
	Server server.Config

	LogLevel  slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat logger.Format `env:"LOG_FORMAT" envDefault:"json"`

	ConnectionTTL     time.Duration `env:"RELAY_CONNECTION_TTL" envDefault:"1m"`
	UserTTL           time.Duration `env:"RELAY_USER_TTL" envDefault:"24h"`
	SweepInterval     time.Duration `env:"RELAY_SWEEP_INTERVAL" envDefault:"10s"`
	PollTimeout       time.Duration `env:"RELAY_POLL_TIMEOUT" envDefault:"25s"`
	HeartbeatInterval time.Duration `env:"RELAY_HEARTBEAT_INTERVAL" envDefault:"5s"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithAttrs(slog.String("service", "relayd")),
	)

	if err := run(cfg, log); err != nil {
		log.Error("relayd exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := relay.NewRegistry()

	collector := relay.NewCollector(registry,
		relay.WithConnectionTTL(cfg.ConnectionTTL),
		relay.WithUserTTL(cfg.UserTTL),
		relay.WithSweepInterval(cfg.SweepInterval),
		relay.WithCollectorLogger(log),
	)
	if err := collector.Start(ctx); err != nil {
		return err
	}
	defer collector.Stop()

	svc := transport.NewService(registry,
		transport.WithLogger(log),
		transport.WithPollTimeout(cfg.PollTimeout),
		transport.WithHeartbeatInterval(cfg.HeartbeatInterval),
	)
	go svc.RunHeartbeat(ctx)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}

	err = srv.Start(ctx, svc.Handler())
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if stopErr := srv.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
