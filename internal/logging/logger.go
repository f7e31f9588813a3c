// Package logging defines the structured-logging interface used by the
// client shell and the development backend. The only implementation wraps
// log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "session resolved", "user", user.Username)
type Logger interface {
	// Debug logs expected, high-volume events (cache hits, anonymous sessions).
	Debug(ctx context.Context, msg string, args ...any)
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)
	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)
	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)
	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
