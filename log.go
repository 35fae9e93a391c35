package panel

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	slogCtxKey ctxKey = iota
	renderPathCtxKey
)

// Logger returns the *slog.Logger stored in the context by
// LoggingContext. If there isn't one, it returns a logger that discards
// everything, so callers never need to check for nil.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(slogCtxKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.New(noopHandler{})
	}
	return logger
}

// LoggingContext returns a copy of ctx that carries logger. Renders
// performed with the returned context will log to it.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, slogCtxKey, logger)
}

type noopHandler struct{}

func (noopHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (noopHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n noopHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n noopHandler) WithGroup(_ string) slog.Handler {
	return n
}
