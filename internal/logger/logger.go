package logger

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey struct{}

// New builds the process logger. level is one of debug, info, warn, error;
// anything else means info.
func New(level string) *charmlog.Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           parseLevel(level),
	})
	return l
}

func parseLevel(level string) charmlog.Level {
	switch level {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// ContextWithLogger attaches a logger to the context so pipeline stages can
// log with request-scoped fields.
func ContextWithLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to the context, or the default
// logger when none is attached.
func FromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok {
		return l
	}
	return charmlog.Default()
}
