package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRuntime is returned when parsing an unknown runtime name.
var ErrUnknownRuntime = errors.New("runway: unknown runtime")

// RuntimeType tells the error renderer and the emitter which execution context they serve.
// The only values are RuntimeHTTP and RuntimeCLI.
type RuntimeType struct {
	name string
}

var (
	// RuntimeHTTP serves requests from a network listener.
	RuntimeHTTP = RuntimeType{name: "http"}

	// RuntimeCLI serves requests dispatched from a command-line process.
	RuntimeCLI = RuntimeType{name: "cli"}
)

// ParseRuntime parses "http" or "cli".
func ParseRuntime(s string) (RuntimeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RuntimeHTTP.name:
		return RuntimeHTTP, nil
	case RuntimeCLI.name:
		return RuntimeCLI, nil
	default:
		return RuntimeType{}, fmt.Errorf("%w: %q", ErrUnknownRuntime, s)
	}
}

func (r RuntimeType) String() string {
	if r.name == "" {
		return RuntimeHTTP.name
	}
	return r.name
}

// IsCLI reports whether r is RuntimeCLI.
func (r RuntimeType) IsCLI() bool { return r == RuntimeCLI }

// UnmarshalText lets RuntimeType be read from environment variables and config files.
func (r *RuntimeType) UnmarshalText(b []byte) error {
	v, err := ParseRuntime(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r RuntimeType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// orDefault maps the zero value to RuntimeHTTP.
func (r RuntimeType) orDefault() RuntimeType {
	if r.name == "" {
		return RuntimeHTTP
	}
	return r
}
