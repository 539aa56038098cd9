package health

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 5 * time.Second

	// Aggregate and per-check statuses.
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc checks one dependency. It matches the Healthcheck closures of the
// db, redis and storage packages.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to check funcs.
type Checks map[string]CheckFunc

// Response is the aggregated result of a health run.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one check func.
type Check struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a health run.
type Option func(*config)

// WithTimeout bounds the whole run. Non-positive values keep the 5s default.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks concurrently. On failure the error joins ErrCheckFailed with
// a *CheckError per failed check, ordered by name.
func Run(ctx context.Context, checks Checks, opts ...Option) (*Response, error) {
	resp, failed := runChecks(ctx, checks, newConfig(opts...))
	if len(failed) == 0 {
		return resp, nil
	}
	slices.SortFunc(failed, func(a, b *CheckError) int { return cmp.Compare(a.Name, b.Name) })

	errs := make([]error, 0, len(failed)+1)
	errs = append(errs, ErrCheckFailed)
	for _, f := range failed {
		errs = append(errs, f)
	}
	return resp, errors.Join(errs...)
}

func runChecks(ctx context.Context, checks Checks, cfg *config) (*Response, []*CheckError) {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		failed  []*CheckError
		g       errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			res := Check{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: %w", ErrCheckTimeout, err)
				}
				res.Status, res.Error = StatusUnhealthy, err.Error()
				failed = append(failed, &CheckError{Name: name, Err: err})
				cfg.logger.WarnContext(ctx, "health check failed", slog.String("check", name), slog.String("error", err.Error()))
			}
			results[name] = res
			return nil
		})
	}
	_ = g.Wait()

	status := StatusHealthy
	if lo.SomeBy(lo.Values(results), func(c Check) bool { return c.Status == StatusUnhealthy }) {
		status = StatusUnhealthy
	}
	return &Response{Status: status, Checks: results}, failed
}
