package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/runway/pkg/failure"
)

// PanicError is the error Recover returns for a recovered panic.
type PanicError = failure.PanicError

// TimeoutError is returned by Timeout when the handler stopped because its
// deadline passed. It matches context.DeadlineExceeded.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("handler exceeded %s deadline", e.Duration)
}

func (e *TimeoutError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// AsPanicError finds a *PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) { return find[*PanicError](err) }

// AsTimeoutError finds a *TimeoutError in err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) { return find[*TimeoutError](err) }

// IsPanicError reports whether err wraps a recovered panic.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

// IsTimeoutError reports whether err wraps a handler timeout.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

func find[E error](err error) (E, bool) {
	var target E
	if err == nil {
		return target, false
	}
	ok := errors.As(err, &target)
	return target, ok
}
