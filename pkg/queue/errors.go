package queue

import "errors"

var (
	ErrPoolRequired    = errors.New("queue: pool is required")
	ErrUnknownTask     = errors.New("queue: unknown task")
	ErrDuplicateTask   = errors.New("queue: task already registered")
	ErrInvalidPayload  = errors.New("queue: invalid payload")
	ErrInvalidSchedule = errors.New("queue: invalid cron schedule")
	ErrAlreadyStarted  = errors.New("queue: already started")
	ErrNotStarted      = errors.New("queue: not started")
)
