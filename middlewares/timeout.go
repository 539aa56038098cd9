package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/runway/internal"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures Timeout.
type TimeoutConfig struct {
	Skip    func(c internal.Context) bool
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutSkip exempts requests for which skip returns true, such as
// long-polling or streaming routes.
func WithTimeoutSkip(skip func(c internal.Context) bool) TimeoutOption {
	return func(cfg *TimeoutConfig) { cfg.Skip = skip }
}

// Timeout bounds the request context with a deadline. It is cooperative: the
// handler keeps the calling goroutine and observes the deadline through
// c.Done() or by passing c to blocking calls. A handler that ignores its
// context runs past the deadline.
//
// If the deadline passed and the handler returned nil without writing, or an
// error caused by the deadline, the result is a *TimeoutError (503).
// A response already written is kept.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := TimeoutConfig{Timeout: timeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if cfg.Skip != nil && cfg.Skip(c) {
				return next(c)
			}

			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(context.WithoutCancel(c.Context()))

			if !timedOut(ctx, parent) {
				return err
			}
			switch {
			case err == nil && c.Written():
				return nil
			case err == nil, errors.Is(err, context.DeadlineExceeded):
				c.LogWarn("handler timed out", "timeout", cfg.Timeout.String())
				return &TimeoutError{Duration: cfg.Timeout}
			default:
				return err
			}
		}
	}
}

// timedOut reports whether ctx hit its own deadline rather than inheriting a
// cancellation from parent.
func timedOut(ctx, parent context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}
