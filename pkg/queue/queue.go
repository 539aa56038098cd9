package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const defaultMaxWorkers = 50

type config struct {
	registry   *registry
	logger     *slog.Logger
	queues     map[string]int
	maxWorkers int
}

// Option configures a Queue.
type Option func(*config)

// WithLogger sets the logger for the queue and its river client.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxWorkers sets the concurrency of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) { c.maxWorkers = n }
}

// WithQueue adds a named queue with its own concurrency.
func WithQueue(name string, workers int) Option {
	return func(c *config) { c.queues[name] = workers }
}

// taskArgs is the single river job kind every task travels as.
type taskArgs struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "runway:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	q *Queue
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	log := w.q.logger.With("task", job.Args.Task, "job_id", job.ID, "attempt", job.Attempt)
	if err := w.q.Execute(ctx, job.Args.Task, job.Args.Payload); err != nil {
		log.ErrorContext(ctx, "task failed", "error", err)
		return err
	}
	log.DebugContext(ctx, "task completed")
	return nil
}

// Queue enqueues tasks into Postgres and works them with river.
// Tasks can be enqueued before Start.
type Queue struct {
	client   *river.Client[pgx.Tx]
	registry *registry
	logger   *slog.Logger
	mu       sync.Mutex
	started  bool
}

// New creates a Queue over pool. Registration errors from Handle and Schedule are joined.
func New(pool *pgxpool.Pool, opts ...Option) (*Queue, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		registry:   &registry{tasks: make(map[string]executor)},
		queues:     make(map[string]int),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := errors.Join(cfg.registry.errs...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	q := &Queue{registry: cfg.registry, logger: cfg.logger}

	queues := map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.registry.schedules))
	for _, s := range cfg.registry.schedules {
		periodic = append(periodic, river.NewPeriodicJob(s.every, func() (river.JobArgs, *river.InsertOpts) {
			return taskArgs{Task: s.name}, nil
		}, nil))
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{q: q})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: create client: %w", err)
	}
	q.client = client
	return q, nil
}

// Tasks returns the registered task names, sorted.
func (q *Queue) Tasks() []string { return q.registry.names() }

// Execute runs a registered task in the calling goroutine.
func (q *Queue) Execute(ctx context.Context, task string, payload json.RawMessage) error {
	exec, ok := q.registry.tasks[task]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	return exec(ctx, payload)
}

// EnqueueOption configures an insert.
type EnqueueOption func(*river.InsertOpts)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(o *river.InsertOpts) { o.Queue = name }
}

// At delays the job until t.
func At(t time.Time) EnqueueOption {
	return func(o *river.InsertOpts) { o.ScheduledAt = t }
}

// MaxAttempts caps retries.
func MaxAttempts(n int) EnqueueOption {
	return func(o *river.InsertOpts) { o.MaxAttempts = n }
}

// Enqueue inserts a task with a JSON-encoded payload.
func (q *Queue) Enqueue(ctx context.Context, task string, payload any, opts ...EnqueueOption) error {
	args, insert, err := q.prepare(task, payload, opts)
	if err != nil {
		return err
	}
	if _, err := q.client.Insert(ctx, args, insert); err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", task, err)
	}
	return nil
}

// EnqueueTx inserts a task inside tx; it becomes visible when tx commits.
func (q *Queue) EnqueueTx(ctx context.Context, tx pgx.Tx, task string, payload any, opts ...EnqueueOption) error {
	args, insert, err := q.prepare(task, payload, opts)
	if err != nil {
		return err
	}
	if _, err := q.client.InsertTx(ctx, tx, args, insert); err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", task, err)
	}
	return nil
}

func (q *Queue) prepare(task string, payload any, opts []EnqueueOption) (taskArgs, *river.InsertOpts, error) {
	if _, ok := q.registry.tasks[task]; !ok {
		return taskArgs{}, nil, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return taskArgs{}, nil, errors.Join(ErrInvalidPayload, err)
	}
	insert := &river.InsertOpts{}
	for _, opt := range opts {
		opt(insert)
	}
	return taskArgs{Task: task, Payload: raw}, insert, nil
}

// Start begins working jobs.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return ErrAlreadyStarted
	}
	if err := q.client.Start(ctx); err != nil {
		return fmt.Errorf("queue: start: %w", err)
	}
	q.started = true
	q.logger.InfoContext(ctx, "queue started", "tasks", len(q.registry.tasks))
	return nil
}

// Stop waits for running jobs and stops fetching new ones.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		return ErrNotStarted
	}
	if err := q.client.Stop(ctx); err != nil {
		return fmt.Errorf("queue: stop: %w", err)
	}
	q.started = false
	q.logger.InfoContext(ctx, "queue stopped")
	return nil
}
