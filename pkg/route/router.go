package route

import (
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Policy selects a route among the candidates accepting a path.
type Policy int

const (
	// FirstMatch picks the first accepting route in registration order.
	FirstMatch Policy = iota

	// MostSpecific picks the accepting route with the most literal characters,
	// then the most constrained parameters, then the earliest registration.
	MostSpecific
)

// Match is the result of a successful lookup.
type Match[H any] struct {
	Route  *Compiled[H]
	Params Params
}

// Option configures a Router.
type Option func(*options)

type options struct {
	policy Policy
}

// WithPolicy overrides the FirstMatch default.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Router resolves requests against a table.
type Router[H any] struct {
	table  *Table[H]
	policy Policy
}

// NewRouter creates a router over table.
func NewRouter[H any](table *Table[H], opts ...Option) *Router[H] {
	o := &options{policy: FirstMatch}
	for _, opt := range opts {
		opt(o)
	}
	return &Router[H]{table: table, policy: o.policy}
}

// Table returns the underlying route table.
func (r *Router[H]) Table() *Table[H] { return r.table }

// MatchURL finds the route for method and u. When the path carries escapes
// that decoding would lose, such as %2F inside a segment, it matches the raw
// path and unescapes each captured value, so "/files/a%2Fb" binds "a/b" to
// {name}. Otherwise it matches the decoded path.
func (r *Router[H]) MatchURL(method string, u *url.URL) (*Match[H], error) {
	if u.RawPath == "" || u.EscapedPath() != u.RawPath {
		return r.Match(method, u.Path)
	}
	m, err := r.Match(method, u.RawPath)
	if err != nil {
		return nil, err
	}
	for i, p := range m.Params {
		if v, err := url.PathUnescape(p.Value); err == nil {
			m.Params[i].Value = v
		}
	}
	return m, nil
}

// Match finds the route for method and path.
// It returns *NotMatchedError or *MethodNotAllowedError when no route applies.
func (r *Router[H]) Match(method, path string) (*Match[H], error) {
	method = strings.ToUpper(method)

	var best *Match[H]
	for c := range r.table.AllForMethod(method) {
		params, ok := c.Match(path)
		if !ok {
			continue
		}
		if r.policy == FirstMatch {
			return &Match[H]{Route: c, Params: params}, nil
		}
		if best == nil || moreSpecific(c.Matcher, best.Route.Matcher) {
			best = &Match[H]{Route: c, Params: params}
		}
	}
	if best != nil {
		return best, nil
	}

	if allowed := r.allowed(method, path); len(allowed) > 0 {
		return nil, &MethodNotAllowedError{Method: method, Path: path, Allowed: allowed}
	}
	return nil, &NotMatchedError{Method: method, Path: path}
}

// allowed returns the sorted set of other methods under which path matches.
func (r *Router[H]) allowed(method, path string) []string {
	matching := lo.FilterMap(r.table.routes, func(c *Compiled[H], _ int) (string, bool) {
		if c.Definition.Method == method {
			return "", false
		}
		_, ok := c.Match(path)
		return c.Definition.Method, ok
	})
	allowed := lo.Uniq(matching)
	slices.Sort(allowed)
	return allowed
}

func moreSpecific(a, b *Matcher) bool {
	al, ac := a.specificity()
	bl, bc := b.specificity()
	if al != bl {
		return al > bl
	}
	return ac > bc
}
