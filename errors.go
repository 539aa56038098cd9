package runway

import "github.com/dmitrymomot/runway/internal"

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithTitle overrides the status text shown with the error.
func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

// WithDetail sets an extended description.
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

// WithErrorCode sets an application-specific error code.
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

// WithRequestID sets the request tracking ID.
func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }

// WithError sets the underlying cause. It is logged, never rendered.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized creates a 401 Unauthorized error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden creates a 403 Forbidden error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 Not Found error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrConflict creates a 409 Conflict error.
func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

// ErrUnprocessable creates a 422 Unprocessable Entity error.
func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// ErrServiceUnavailable creates a 503 Service Unavailable error.
func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsEmissionError reports whether err carries an EmissionError with the given reason.
func IsEmissionError(err error, reason EmissionReason) bool {
	return internal.IsEmissionError(err, reason)
}
