// Package relay implements the in-memory state core of a real-time
// pub-sub relay: connections, users, channels, message fan-out,
// presence notifications, bounded channel history, and the garbage
// collector that reclaims idle connections and inactive users.
//
// # Core Components
//
// The package is built around six types:
//
//   - Connection: one client attachment (tab/device) with its own
//     delivery queue and liveness timestamp
//   - User: identity owning zero or more connections plus a state
//     dictionary with a public/private split
//   - Channel: named topic indexing subscribed connections per user,
//     with presence configuration and a bounded history buffer
//   - Registry: constructible store of the three indexes (by connection
//     id, by username, by channel name); no package-level globals
//   - Dispatcher: resolves publish targets to connection sets and
//     coordinates membership changes and presence fan-out
//   - Collector: periodic sweeps evicting idle connections and stale
//     users while repairing the channel/user indexes
//
// # Basic Usage
//
// Wire a registry, dispatcher, and collector:
//
//	registry := relay.NewRegistry()
//	dispatcher := relay.NewDispatcher(registry)
//
//	collector := relay.NewCollector(registry,
//		relay.WithConnectionTTL(time.Minute),
//		relay.WithUserTTL(24*time.Hour),
//	)
//	if err := collector.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer collector.Stop()
//
// Attach a client and publish:
//
//	conn, _, err := registry.Connect("alice", "")
//	if err != nil {
//		return err
//	}
//	conn.AttachQueue()
//
//	if _, err := dispatcher.Subscribe(conn.ID(), []string{"lobby"}, nil); err != nil {
//		return err
//	}
//
//	recipients, err := dispatcher.Publish(relay.Message{
//		Type:    relay.TypeMessage,
//		User:    "alice",
//		Payload: "hello",
//	}, []string{"lobby"}, nil)
//
// Drain a connection's queue from a transport handler:
//
//	batch, err := conn.DrainWait(ctx)
//
// # Delivery Semantics
//
// Messages enqueued to a connection are delivered in enqueue order;
// Drain always returns the whole pending batch atomically. Heartbeat
// wakes a blocked DrainWait without delivering content, which bounds
// long-poll wait times independently of real traffic. No state in this
// package is persisted: everything is rebuilt from zero on restart, and
// channel history beyond the configured size is dropped oldest-first.
//
// # Concurrency
//
// All types are safe for concurrent use. Each entity guards its own
// state with a small mutex and no entity lock is held across calls into
// another entity, so fan-out never blocks on a slow reader: blocking is
// confined to DrainWait, which is cancellable via its context.
package relay
