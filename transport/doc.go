// Package transport exposes the relay state core over HTTP: JSON
// endpoints for connect/subscribe/publish/disconnect, a long-poll
// delivery endpoint, a websocket streaming endpoint, and the
// administrative surface.
//
// The package owns request decoding, response encoding, and the
// translation of core errors into HTTP statuses; the core itself never
// logs or swallows an error.
//
// Basic usage:
//
//	registry := relay.NewRegistry()
//	svc := transport.NewService(registry,
//		transport.WithLogger(log),
//		transport.WithPollTimeout(25*time.Second),
//	)
//
//	go svc.RunHeartbeat(ctx)
//	err := srv.Start(ctx, svc.Handler())
//
// # Endpoints
//
//	POST /connect               create a connection, join channels
//	POST /subscribe             join channels
//	POST /unsubscribe           leave channels
//	POST /message               publish to channels and/or users
//	POST /disconnect            hard teardown of one connection
//	GET  /info                  registry snapshot for diagnostics
//	GET  /listen?conn_id=       long-poll drain of the delivery queue
//	GET  /ws?conn_id=           websocket stream of the delivery queue
//	POST /admin/channel_config  reconfigure channels
//	POST /admin/disconnect      mark a connection for collection
package transport
