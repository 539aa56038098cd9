package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures a logger. It is read from the environment with pkg/config.
type Config struct {
	Output    io.Writer
	Level     string `env:"LOG_LEVEL" envDefault:"info"`
	Format    string `env:"LOG_FORMAT" envDefault:"json"`
	Component string `env:"LOG_COMPONENT"`
	Sentry    SentryConfig
}

// New creates a JSON-formatted logger on stdout with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(Config{}, extractors...)
}

// NewWithConfig creates a logger from cfg. When cfg.Sentry.DSN is set, records also
// go to Sentry: errors become issues, warnings are kept as breadcrumb logs.
func NewWithConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	if sh := newSentryHandler(cfg.Sentry, h); sh != nil {
		h = newMultiHandler(h, sh)
	}

	l := slog.New(NewLogHandlerDecorator(h, extractors...))
	if cfg.Component != "" {
		l = l.With("component", cfg.Component)
	}
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewNope returns a logger that drops every record.
func NewNope() *slog.Logger { return slog.New(slog.DiscardHandler) }
