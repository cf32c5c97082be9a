// Package logger builds structured slog loggers for relay services and
// provides nil-safe attribute helpers for the domain vocabulary
// (connection ids, channels, usernames).
//
// Basic usage:
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("client connected",
//		logger.ConnectionID(conn.ID()),
//		logger.Username(conn.Username()),
//	)
//
// Attribute helpers follow the empty Attr pattern: passing a nil error
// to logger.Error yields an empty attribute instead of a nil-pointer
// surprise, so call sites never need explicit nil checks.
package logger
