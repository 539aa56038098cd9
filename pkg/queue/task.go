package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
)

// TaskFunc handles a task with a decoded payload.
type TaskFunc[P any] func(ctx context.Context, payload P) error

type executor func(ctx context.Context, raw json.RawMessage) error

type schedule struct {
	every river.PeriodicSchedule
	name  string
}

type registry struct {
	tasks     map[string]executor
	schedules []schedule
	errs      []error
}

func (r *registry) add(name string, exec executor) {
	if _, dup := r.tasks[name]; dup {
		r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrDuplicateTask, name))
		return
	}
	r.tasks[name] = exec
}

func (r *registry) names() []string {
	return slices.Sorted(maps.Keys(r.tasks))
}

// Handle registers a task whose JSON payload decodes into P.
func Handle[P any](name string, fn TaskFunc[P]) Option {
	return func(c *config) {
		c.registry.add(name, func(ctx context.Context, raw json.RawMessage) error {
			var payload P
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &payload); err != nil {
					return errors.Join(ErrInvalidPayload, err)
				}
			}
			return fn(ctx, payload)
		})
	}
}

// Schedule registers a periodic task. expr is a five-field cron expression.
func Schedule(name, expr string, fn func(ctx context.Context) error) Option {
	return func(c *config) {
		s, err := parseSchedule(expr)
		if err != nil {
			c.registry.errs = append(c.registry.errs, err)
			return
		}
		c.registry.add(name, func(ctx context.Context, _ json.RawMessage) error {
			return fn(ctx)
		})
		c.registry.schedules = append(c.registry.schedules, schedule{name: name, every: s})
	}
}

type cronSchedule struct{ cron.Schedule }

func (s cronSchedule) Next(t time.Time) time.Time { return s.Schedule.Next(t) }

func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, expr, err)
	}
	return cronSchedule{s}, nil
}
