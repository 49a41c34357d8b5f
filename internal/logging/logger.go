// Package logging defines the structured-logging interface used across
// fibkeeper, backed by log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	// Debug logs per-call detail such as gRPC calls and upserts.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs lifecycle events and served requests.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs rejected input: bad bodies, failed logins.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that turn into a 500 or stop a server.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
