// Package logging defines the structured-logging interface used across the
// portal client and the mirror server. The only implementation wraps slog.
package logging

import "context"

// Logger takes a context and alternating key/value args:
//
//	log.Info(ctx, "session created", "id", id, "creator", creatorID)
type Logger interface {
	// Debug is for diagnostics that are off by default.
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn reports a condition the program recovered from.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
