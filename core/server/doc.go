// Package server wraps http.Server with graceful shutdown and
// environment-driven configuration for relay deployments.
//
// Basic usage:
//
//	srv := server.New(":8080",
//		server.WithLogger(log),
//		server.WithShutdownTimeout(15*time.Second),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := srv.Start(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
//		log.Error("server failed", logger.Error(err))
//	}
//	_ = srv.Stop()
//
// Configuration can come from the environment via Config and
// NewFromConfig; TLS termination is expected to happen at the proxy in
// front of the relay.
package server
