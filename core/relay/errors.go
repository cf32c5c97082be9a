package relay

import "errors"

var (
	// ErrDuplicateConnectionID is returned when a connection is created with
	// an id that is already registered.
	ErrDuplicateConnectionID = errors.New("connection id already registered")
	// ErrConnectionNotFound is returned when an operation references an
	// unknown connection id.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrUserNotFound is returned when an operation references an unknown
	// username.
	ErrUserNotFound = errors.New("user not found")
	// ErrChannelNotFound is returned when an operation references an unknown
	// channel name.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrInvalidChannelConfig is returned for malformed channel
	// configuration, such as a negative history size.
	ErrInvalidChannelConfig = errors.New("invalid channel configuration")
)
