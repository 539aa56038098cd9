package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables Sentry forwarding when DSN is set.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"SENTRY_RELEASE"`
	// MinLevel is the lowest level kept as a Sentry log: warn or error.
	MinLevel string `env:"SENTRY_MIN_LEVEL" envDefault:"warn"`
}

// NewWithSentry is NewWithConfig with only the Sentry section set.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(Config{Sentry: cfg}, extractors...)
}

// newSentryHandler initializes the Sentry client and returns its slog handler.
// It returns nil without a DSN, or after reporting an init failure to local.
func newSentryHandler(cfg SentryConfig, local slog.Handler) slog.Handler {
	if cfg.DSN == "" {
		return nil
	}

	opts := sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}
	if err := sentry.Init(opts); err != nil {
		slog.New(local).Error("sentry disabled", slog.Any("error", err))
		return nil
	}

	kept := []slog.Level{slog.LevelError}
	if ParseLevel(cfg.MinLevel) < slog.LevelError {
		kept = append([]slog.Level{slog.LevelWarn}, kept...)
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   kept,
	}.NewSentryHandler(context.Background())
}
