package failure

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// maxChain bounds the causal chain walk.
const maxChain = 32

// Severity classifies a failure for logging and reporting.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
	SeverityCritical
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Kinds assigned to failures without a declared kind.
const (
	KindError   = "error"
	KindPanic   = "panic"
	KindRuntime = "runtime"
)

// Kinder is implemented by errors that declare their own kind.
type Kinder interface {
	Kind() string
}

// Link is one element of a causal chain.
type Link struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Failure is the normalized form of an error or panic.
type Failure struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Origin   string   `json:"origin,omitempty"`
	Stack    string   `json:"stack,omitempty"`
	Chain    []Link   `json:"chain,omitempty"`
	Severity Severity `json:"-"`
}

// From normalizes err. A nil error yields the zero Failure.
func From(err error) Failure {
	if err == nil {
		return Failure{}
	}

	f := Failure{
		Kind:     kindOf(err),
		Message:  err.Error(),
		Severity: SeverityError,
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		f.Severity = SeverityCritical
		f.Origin = pe.Origin
		f.Stack = pe.Stack
		switch v := pe.Value.(type) {
		case runtime.Error:
			f.Kind = KindRuntime
		case error:
			if f.Kind = kindOf(v); f.Kind == KindError {
				f.Kind = KindPanic
			}
		default:
			f.Kind = KindPanic
		}
	} else if file, line, fn, ok := errors.GetOneLineSource(err); ok {
		f.Origin = file + ":" + strconv.Itoa(line) + " (" + fn + ")"
		f.Stack = fmt.Sprintf("%+v", err)
	}

	f.Chain = chain(err)
	return f
}

// Status returns the HTTP status declared anywhere in err's chain.
// Both StatusCode() and HTTPStatus() methods are recognized.
func Status(err error) (int, bool) {
	var code int
	walk(err, 0, func(e error) bool {
		switch s := e.(type) {
		case interface{ StatusCode() int }:
			code = s.StatusCode()
		case interface{ HTTPStatus() int }:
			code = s.HTTPStatus()
		}
		return code == 0
	})
	return code, code != 0
}

func chain(err error) []Link {
	var (
		links []Link
		prev  string
	)
	walk(err, 0, func(e error) bool {
		msg := e.Error()
		// Stack and context wrappers repeat their cause's message.
		if msg == prev {
			return true
		}
		prev = msg
		links = append(links, Link{Kind: kindOf(e), Message: msg})
		return true
	})
	return links
}

// walk visits err and its causes depth-first until visit returns false.
func walk(err error, depth int, visit func(error) bool) bool {
	if err == nil || depth >= maxChain {
		return true
	}
	if !visit(err) {
		return false
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			if !walk(e, depth+1, visit) {
				return false
			}
		}
		return true
	}
	return walk(errors.UnwrapOnce(err), depth+1, visit)
}

func kindOf(err error) string {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	if _, ok := err.(interface{ RuntimeError() }); ok {
		return KindRuntime
	}
	return typeName(errors.UnwrapAll(err))
}

// typeName returns "pkg.Type" for named error types and KindError for anonymous string errors.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	if t.Name() == "" || pkg == "errors" || pkg == "fmt" || strings.HasPrefix(pkg, "github.com/cockroachdb/errors") {
		return KindError
	}
	return pkg[strings.LastIndexByte(pkg, '/')+1:] + "." + t.Name()
}
