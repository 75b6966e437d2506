// Package logging defines the minimal structured-logging interface used
// across the back-office. Implementations can wrap slog, zap, zerolog,
// etc.; the daemon uses the slog implementation in this package.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key/value pairs, e.g.:
//
//	log.Info(ctx, "subscription established", "path", path)
type Logger interface {
	// Debug logs fine-grained events such as snapshot arrivals.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key/value pairs.
	With(args ...any) Logger
}
