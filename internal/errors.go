package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is the error handlers return to choose the response status.
// Message is shown to the client in developer mode; Err is the cause and is
// only logged.
type HTTPError struct {
	Err       error
	Message   string
	Title     string // defaults to the status text
	Detail    string
	ErrorCode string // application-specific code, rendered as "code"
	RequestID string
	Code      int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.StatusText()
}

// Unwrap returns the cause set by WithError.
func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode returns Code.
func (e *HTTPError) StatusCode() int { return e.Code }

// StatusText is Title, or the standard text for Code.
func (e *HTTPError) StatusText() string {
	if e.Title == "" {
		return http.StatusText(e.Code)
	}
	return e.Title
}

// HTTPErrorOption sets an optional HTTPError field.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError builds an *HTTPError for status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithTitle overrides the status text shown as the title.
func WithTitle(title string) HTTPErrorOption { return func(e *HTTPError) { e.Title = title } }

// WithDetail adds a longer explanation to the response body.
func WithDetail(detail string) HTTPErrorOption { return func(e *HTTPError) { e.Detail = detail } }

// WithErrorCode sets the application-specific error code.
func WithErrorCode(code string) HTTPErrorOption { return func(e *HTTPError) { e.ErrorCode = code } }

// WithRequestID attaches the request ID.
func WithRequestID(id string) HTTPErrorOption { return func(e *HTTPError) { e.RequestID = id } }

// WithError sets the underlying cause, which is logged but never shown.
func WithError(err error) HTTPErrorOption { return func(e *HTTPError) { e.Err = err } }

func statusError(code int) func(string, ...HTTPErrorOption) *HTTPError {
	return func(message string, opts ...HTTPErrorOption) *HTTPError {
		return NewHTTPError(code, message, opts...)
	}
}

// Shorthands for the statuses handlers return most.
var (
	ErrBadRequest         = statusError(http.StatusBadRequest)
	ErrUnauthorized       = statusError(http.StatusUnauthorized)
	ErrForbidden          = statusError(http.StatusForbidden)
	ErrNotFound           = statusError(http.StatusNotFound)
	ErrConflict           = statusError(http.StatusConflict)
	ErrUnprocessable      = statusError(http.StatusUnprocessableEntity)
	ErrInternal           = statusError(http.StatusInternalServerError)
	ErrServiceUnavailable = statusError(http.StatusServiceUnavailable)
)

// AsHTTPError returns the first *HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// MiddlewareContractViolationError reports a middleware that invoked its continuation
// more than once for one request.
type MiddlewareContractViolationError struct {
	// Layer is the zero-based registration index of the offending middleware's continuation.
	Layer int
	Calls int
}

func (e *MiddlewareContractViolationError) Error() string {
	return fmt.Sprintf("runway: middleware at layer %d called next %d times", e.Layer, e.Calls)
}

// Kind names the failure for error reports.
func (e *MiddlewareContractViolationError) Kind() string { return "middleware_contract_violation" }

// statusClientClosedRequest is the nginx convention for a client that went away.
const statusClientClosedRequest = 499

// EmissionReason says why a response could not be emitted.
type EmissionReason int

const (
	// ReasonAlreadySent means the response or transport was already emitted.
	ReasonAlreadySent EmissionReason = iota + 1

	// ReasonNotWritable means the client went away or a write failed.
	ReasonNotWritable
)

func (r EmissionReason) String() string {
	switch r {
	case ReasonAlreadySent:
		return "already sent"
	case ReasonNotWritable:
		return "not writable"
	default:
		return "unknown"
	}
}

// EmissionError is returned by the emitter.
type EmissionError struct {
	Err    error
	Reason EmissionReason
}

func (e *EmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runway: response emission failed: %s: %v", e.Reason, e.Err)
	}
	return "runway: response emission failed: " + e.Reason.String()
}

func (e *EmissionError) Unwrap() error { return e.Err }

// StatusCode reports 499 (client closed request) for unwritable transports and 500 otherwise,
// which keeps client disconnects at warn level in error reports.
func (e *EmissionError) StatusCode() int {
	if e.Reason == ReasonNotWritable {
		return statusClientClosedRequest
	}
	return http.StatusInternalServerError
}

// StatusCode makes violations report as internal server errors.
func (e *MiddlewareContractViolationError) StatusCode() int { return http.StatusInternalServerError }

// Kind names the failure for error reports.
func (e *EmissionError) Kind() string { return "emission" }

// IsEmissionError reports whether err carries an EmissionError with the given reason.
func IsEmissionError(err error, reason EmissionReason) bool {
	var ee *EmissionError
	return errors.As(err, &ee) && ee.Reason == reason
}
