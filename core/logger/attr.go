package logger

import "log/slog"

// Attribute helpers use the empty Attr pattern for nil safety, so call
// sites never need explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component tags a record with the emitting component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// ConnectionID tags a record with a connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String("conn_id", id)
}

// Channel tags a record with a channel name.
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Username tags a record with a username.
func Username(name string) slog.Attr {
	return slog.String("username", name)
}

// Recipients tags a record with a fan-out recipient count.
func Recipients(count int) slog.Attr {
	return slog.Int("recipients", count)
}
