package health

import (
	"errors"
	"fmt"
)

var (
	// ErrCheckFailed is joined into the error Run returns when any check fails.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check cut off by the run deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// CheckError is the failure of one named check.
type CheckError struct {
	Err  error
	Name string
}

func (e *CheckError) Error() string { return fmt.Sprintf("health: %s: %v", e.Name, e.Err) }

func (e *CheckError) Unwrap() error { return e.Err }
