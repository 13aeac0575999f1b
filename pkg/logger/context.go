package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns ctx carrying the context logger extended with fields, so
// later lines on the same request share request_id, user_id and so on.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the context logger, or the process logger if none was set.
func From(ctx context.Context) *slog.Logger {
	return FromOr(ctx, LoggerWrapper())
}

// FromOr returns the context logger, or fallback if none was set.
func FromOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return fallback
}
