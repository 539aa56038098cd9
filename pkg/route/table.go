package route

import (
	"iter"
	"net/http"
	"slices"
	"strings"
)

var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// Definition is an immutable route record.
type Definition[H any] struct {
	Handler H
	Method  string
	Pattern string
	Name    string
}

// Compiled is a registered route together with its matcher.
type Compiled[H any] struct {
	*Matcher
	Definition *Definition[H]
}

// Table owns the registered routes.
type Table[H any] struct {
	byName   map[string]*Compiled[H]
	byMethod map[string][]*Compiled[H]
	routes   []*Compiled[H]
	frozen   bool
}

// NewTable creates an empty route table.
func NewTable[H any]() *Table[H] {
	return &Table[H]{
		byName:   make(map[string]*Compiled[H]),
		byMethod: make(map[string][]*Compiled[H]),
	}
}

// Register adds a route. name may be empty.
func (t *Table[H]) Register(method, pattern string, handler H, name string) (*Definition[H], error) {
	if t.frozen {
		return nil, ErrFrozen
	}

	m := strings.ToUpper(method)
	if !slices.Contains(methods, m) {
		return nil, &InvalidPatternError{Pattern: pattern, Reason: "unknown HTTP method " + method}
	}
	if name != "" {
		if _, exists := t.byName[name]; exists {
			return nil, &DuplicateNameError{Name: name}
		}
	}

	matcher, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	def := &Definition[H]{
		Handler: handler,
		Method:  m,
		Pattern: pattern,
		Name:    name,
	}
	c := &Compiled[H]{Matcher: matcher, Definition: def}

	t.routes = append(t.routes, c)
	t.byMethod[m] = append(t.byMethod[m], c)
	if name != "" {
		t.byName[name] = c
	}
	return def, nil
}

// Freeze makes the table read-only.
func (t *Table[H]) Freeze() { t.frozen = true }

// Frozen reports whether Freeze was called.
func (t *Table[H]) Frozen() bool { return t.frozen }

// Len returns the number of registered routes.
func (t *Table[H]) Len() int { return len(t.routes) }

// ResolveByName returns the route registered under name.
func (t *Table[H]) ResolveByName(name string) (*Definition[H], error) {
	c, ok := t.byName[name]
	if !ok {
		return nil, &NameNotFoundError{Name: name}
	}
	return c.Definition, nil
}

// AllForMethod yields the routes registered for method in registration order.
// The sequence can be ranged over any number of times.
func (t *Table[H]) AllForMethod(method string) iter.Seq[*Compiled[H]] {
	routes := t.byMethod[strings.ToUpper(method)]
	return func(yield func(*Compiled[H]) bool) {
		for _, c := range routes {
			if !yield(c) {
				return
			}
		}
	}
}

// All yields every route in registration order.
func (t *Table[H]) All() iter.Seq[*Compiled[H]] {
	return func(yield func(*Compiled[H]) bool) {
		for _, c := range t.routes {
			if !yield(c) {
				return
			}
		}
	}
}

// URL builds the path for the named route.
func (t *Table[H]) URL(name string, params map[string]string) (string, error) {
	c, ok := t.byName[name]
	if !ok {
		return "", &NameNotFoundError{Name: name}
	}
	return c.Build(params)
}
