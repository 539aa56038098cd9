package storage

import (
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig     = errors.New("storage: invalid configuration")
	ErrEmptyFile         = errors.New("storage: file is empty")
	ErrNotFound          = errors.New("storage: file not found")
	ErrAccessDenied      = errors.New("storage: access denied")
	ErrOperationFailed   = errors.New("storage: operation failed")
	ErrHealthcheckFailed = errors.New("storage: healthcheck failed")
)

// Error reports a failed disk operation. Kind is one of the sentinel errors above.
// Handlers can return it as is: it renders as 404, 403 or 502.
type Error struct {
	Kind error
	Err  error
	Op   string
	Key  string
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op + " " + e.Key
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the SDK error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAccessDenied:
		return http.StatusForbidden
	case ErrEmptyFile:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// classify wraps an SDK error, recognising missing keys and denied access.
func classify(op, key string, err error) error {
	kind := ErrOperationFailed

	var apiErr smithy.APIError
	var noKey *types.NoSuchKey
	switch {
	case errors.As(err, &noKey):
		kind = ErrNotFound
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			kind = ErrNotFound
		case "AccessDenied", "Forbidden":
			kind = ErrAccessDenied
		}
	}
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}
