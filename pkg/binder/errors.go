package binder

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

var (
	// ErrInvalidHandler is returned by Inspect for unsupported handler shapes.
	ErrInvalidHandler = errors.New("binder: invalid handler")

	// ErrNotConfigured must be wrapped by resolvers that have no provider for a parameter.
	ErrNotConfigured = errors.New("binder: no provider configured")

	// ErrUnsupportedType is returned when a raw value cannot be coerced into a type at all.
	ErrUnsupportedType = errors.New("binder: unsupported type")

	// ErrNoPrimitive is returned when the caller cannot supply a declared primitive.
	ErrNoPrimitive = errors.New("binder: primitive not available")

	// ErrBodyTooLarge is returned when a request body exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("binder: request body too large")
)

// ArgumentCoercionError reports a raw value that cannot be converted to the declared type.
type ArgumentCoercionError struct {
	Err   error
	Type  reflect.Type
	Name  string
	Value string
}

func (e *ArgumentCoercionError) Error() string {
	return fmt.Sprintf("binder: cannot bind %q to %s (%s): %v", e.Value, e.Name, e.Type, e.Err)
}

func (e *ArgumentCoercionError) Unwrap() error { return e.Err }

// StatusCode returns 400, or 413 for an oversized body.
func (e *ArgumentCoercionError) StatusCode() int {
	if errors.Is(e.Err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// UnresolvableArgumentError reports a parameter nothing could produce.
// Construction is true when a provider exists but failed.
type UnresolvableArgumentError struct {
	Err          error
	Type         reflect.Type
	Name         string
	Construction bool
}

func (e *UnresolvableArgumentError) Error() string {
	name := e.Name
	if name == "" {
		name = "argument"
	}
	if e.Construction {
		return fmt.Sprintf("binder: constructing %s (%s) failed: %v", name, e.Type, e.Err)
	}
	return fmt.Sprintf("binder: cannot resolve %s (%s): %v", name, e.Type, e.Err)
}

func (e *UnresolvableArgumentError) Unwrap() error { return e.Err }

// StatusCode returns 500.
func (e *UnresolvableArgumentError) StatusCode() int { return http.StatusInternalServerError }
