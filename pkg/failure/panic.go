package failure

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// maxFrames bounds the captured panic stack.
const maxFrames = 64

// PanicError is a recovered panic.
type PanicError struct {
	Value  any
	Origin string
	Stack  string
}

// Recovered converts a value returned by recover() into a *PanicError.
// It must be called from the deferred function that recovered the panic.
func Recovered(v any) *PanicError {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var (
		stack     strings.Builder
		origin    string
		panicking bool
	)
	for {
		fr, more := frames.Next()
		switch {
		case fr.Function == "runtime.gopanic":
			panicking = true
		case panicking && origin == "" && !strings.HasPrefix(fr.Function, "runtime."):
			origin = fr.File + ":" + strconv.Itoa(fr.Line) + " (" + fr.Function + ")"
		}
		if panicking && fr.Function != "runtime.gopanic" {
			stack.WriteString(fr.Function)
			stack.WriteString("\n\t")
			stack.WriteString(fr.File)
			stack.WriteByte(':')
			stack.WriteString(strconv.Itoa(fr.Line))
			stack.WriteByte('\n')
		}
		if !more {
			break
		}
	}

	return &PanicError{Value: v, Origin: origin, Stack: stack.String()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsRuntime reports whether the panic was raised by the Go runtime.
func (e *PanicError) IsRuntime() bool {
	_, ok := e.Value.(runtime.Error)
	return ok
}
