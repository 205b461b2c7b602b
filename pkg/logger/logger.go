// Package logger provides the structured logger shared by every Assemble
// component. Components never reach for a global logger directly; they pull
// one out of a context.Context so tests can inject a buffer-backed instance.
package logger

import (
	"context"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the minimal structured-logging surface every engine component
// depends on.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

// NewLogger builds a Logger from cfg. A nil cfg falls back to TestConfig
// under `go test` and DefaultConfig otherwise, so components that construct
// a logger ad hoc in tests never spam stdout.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		if IsTestEnvironment() {
			cfg = TestConfig()
		} else {
			cfg = DefaultConfig()
		}
	}
	opts := charmlog.Options{
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		ReportCaller:    cfg.AddSource,
	}
	if cfg.JSON {
		opts.Formatter = charmlog.JSONFormatter
	}
	l := charmlog.NewWithOptions(cfg.Output, opts)
	l.SetLevel(cfg.Level.ToCharmlogLevel())
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, kv ...any) { c.l.Debug(msg, kv...) }
func (c *charmLogger) Info(msg string, kv ...any)  { c.l.Info(msg, kv...) }
func (c *charmLogger) Warn(msg string, kv ...any)  { c.l.Warn(msg, kv...) }
func (c *charmLogger) Error(msg string, kv ...any) { c.l.Error(msg, kv...) }

func (c *charmLogger) With(kv ...any) Logger {
	return &charmLogger{l: c.l.With(kv...)}
}

type ctxKey string

// LoggerCtxKey is the context.Context key a Logger is stored under.
const LoggerCtxKey ctxKey = "assemble.logger"

var defaultLogger = NewLogger(nil)

// ContextWithLogger returns a copy of ctx carrying l.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, l)
}

// FromContext returns the Logger stored in ctx, falling back to a
// package-level default when ctx carries none, a value of the wrong type, or
// an explicit nil Logger. It never returns nil.
func FromContext(ctx context.Context) Logger {
	if v := ctx.Value(LoggerCtxKey); v != nil {
		if l, ok := v.(Logger); ok && l != nil {
			return l
		}
	}
	return defaultLogger
}
