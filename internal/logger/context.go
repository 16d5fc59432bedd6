package logger

import (
	"context"
)

type contextKey struct{}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in the context, or the default
// logger when none is present.
func FromContext(ctx context.Context) Logger {
	if value, ok := ctx.Value(contextKey{}).(Logger); ok {
		return value
	}
	return defaultLogger
}

// WithValues returns a context whose logger carries the given key-value
// pairs on every subsequent log line.
func WithValues(ctx context.Context, keyvals ...any) context.Context {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "MISSING_VALUE")
	}
	return WithLogger(ctx, FromContext(ctx).With(keyvals...))
}

// Debug logs a message with debug level.
func Debug(ctx context.Context, msg string, tags ...any) {
	FromContext(ctx).Debug(msg, tags...)
}

// Info logs a message with info level.
func Info(ctx context.Context, msg string, tags ...any) {
	FromContext(ctx).Info(msg, tags...)
}

// Warn logs a message with warn level.
func Warn(ctx context.Context, msg string, tags ...any) {
	FromContext(ctx).Warn(msg, tags...)
}

// Error logs a message with error level.
func Error(ctx context.Context, msg string, tags ...any) {
	FromContext(ctx).Error(msg, tags...)
}

// Infof logs a formatted message with info level.
func Infof(ctx context.Context, format string, v ...any) {
	FromContext(ctx).Infof(format, v...)
}

// Errorf logs a formatted message with error level.
func Errorf(ctx context.Context, format string, v ...any) {
	FromContext(ctx).Errorf(format, v...)
}
