package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrFrozen is returned when registering into a table after Freeze.
	ErrFrozen = errors.New("route: table is frozen")

	// ErrInvalidDefinitions is returned when a route-definition file cannot be decoded.
	ErrInvalidDefinitions = errors.New("route: invalid route definitions")
)

// DuplicateNameError is returned when a route name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("route: duplicate route name %q", e.Name)
}

// InvalidPatternError is returned for malformed patterns and unknown methods.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("route: invalid pattern %q: %s", e.Pattern, e.Reason)
}

// NameNotFoundError is returned when no route carries the requested name.
type NameNotFoundError struct {
	Name string
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("route: no route named %q", e.Name)
}

// InvalidParamError is returned when reverse routing gets a missing or non-matching value.
type InvalidParamError struct {
	Pattern string
	Param   string
	Reason  string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("route: parameter %q of %q: %s", e.Param, e.Pattern, e.Reason)
}

// NotMatchedError reports that no route accepts the path under any method.
type NotMatchedError struct {
	Method string
	Path   string
}

func (e *NotMatchedError) Error() string {
	return fmt.Sprintf("route: no route for %s %s", e.Method, e.Path)
}

// StatusCode returns 404.
func (e *NotMatchedError) StatusCode() int { return http.StatusNotFound }

// MethodNotAllowedError reports that the path matches only under other methods.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("route: method %s not allowed for %s (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

// StatusCode returns 405.
func (e *MethodNotAllowedError) StatusCode() int { return http.StatusMethodNotAllowed }

// Header returns the Allow header to send with the 405 response.
func (e *MethodNotAllowedError) Header() http.Header {
	return http.Header{"Allow": {strings.Join(e.Allowed, ", ")}}
}
