package internal

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Router is the interface handlers use to declare routes.
// Handlers are HandlerFunc values, net/http handlers, or functions whose arguments
// are bound per request (see HandlerFunc). Registration errors panic.
type Router interface {
	// GET registers a handler for GET requests.
	GET(pattern string, h any, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(pattern string, h any, mw ...Middleware)

	// PUT registers a handler for PUT requests.
	PUT(pattern string, h any, mw ...Middleware)

	// PATCH registers a handler for PATCH requests.
	PATCH(pattern string, h any, mw ...Middleware)

	// DELETE registers a handler for DELETE requests.
	DELETE(pattern string, h any, mw ...Middleware)

	// HEAD registers a handler for HEAD requests.
	HEAD(pattern string, h any, mw ...Middleware)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(pattern string, h any, mw ...Middleware)

	// Handle registers a handler for an arbitrary method.
	Handle(method, pattern string, h any, mw ...Middleware)

	// Named returns a router whose next registered route gets name.
	Named(name string) Router

	// Group creates an inline route group with its own middleware stack.
	Group(fn func(r Router))

	// Route creates a route group with a pattern prefix.
	Route(prefix string, fn func(r Router))

	// Use appends middleware to the group's stack.
	// It panics once the group has registered a route.
	Use(mw ...Middleware)

	// Mount attaches an http.Handler at the given pattern, outside the dispatch kernel.
	// Use this for legacy handlers or third-party routers.
	Mount(pattern string, h http.Handler)
}

// routeGroup registers routes into the app's route table.
type routeGroup struct {
	app         *App
	prefix      string
	name        string
	middlewares []Middleware
	registered  bool
}

func newRouteGroup(app *App) *routeGroup {
	return &routeGroup{app: app}
}

func (g *routeGroup) GET(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodGet, pattern, h, mw...)
}

func (g *routeGroup) POST(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodPost, pattern, h, mw...)
}

func (g *routeGroup) PUT(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodPut, pattern, h, mw...)
}

func (g *routeGroup) PATCH(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodPatch, pattern, h, mw...)
}

func (g *routeGroup) DELETE(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodDelete, pattern, h, mw...)
}

func (g *routeGroup) HEAD(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodHead, pattern, h, mw...)
}

func (g *routeGroup) OPTIONS(pattern string, h any, mw ...Middleware) {
	g.Handle(http.MethodOptions, pattern, h, mw...)
}

func (g *routeGroup) Handle(method, pattern string, h any, mw ...Middleware) {
	if err := g.register(method, pattern, h, mw); err != nil {
		panic(err)
	}
}

func (g *routeGroup) register(method, pattern string, h any, mw []Middleware) error {
	full := joinPattern(g.prefix, pattern)
	name := g.name
	g.name = ""

	ep, err := g.app.newEndpoint(h, append(slices.Clone(g.middlewares), mw...))
	if err != nil {
		return fmt.Errorf("runway: %s %s: %w", method, full, err)
	}
	if _, err := g.app.table.Register(method, full, ep, name); err != nil {
		return fmt.Errorf("runway: %s %s: %w", method, full, err)
	}
	g.registered = true
	return nil
}

func (g *routeGroup) Named(name string) Router {
	return &namedRouter{routeGroup: g, name: name}
}

func (g *routeGroup) Group(fn func(Router)) {
	fn(g.child(""))
}

func (g *routeGroup) Route(prefix string, fn func(Router)) {
	fn(g.child(prefix))
}

func (g *routeGroup) child(prefix string) *routeGroup {
	return &routeGroup{
		app:         g.app,
		prefix:      joinPattern(g.prefix, prefix),
		middlewares: slices.Clone(g.middlewares),
	}
}

func (g *routeGroup) Use(mw ...Middleware) {
	if g.registered {
		panic("runway: all middlewares must be defined before routes in a group")
	}
	g.middlewares = append(g.middlewares, mw...)
}

func (g *routeGroup) Mount(pattern string, h http.Handler) {
	g.app.mux.Mount(joinPattern(g.prefix, pattern), h)
}

// namedRouter names the next route registered through it.
type namedRouter struct {
	*routeGroup
	name string
}

func (n *namedRouter) GET(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodGet, pattern, h, mw...)
}

func (n *namedRouter) POST(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodPost, pattern, h, mw...)
}

func (n *namedRouter) PUT(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodPut, pattern, h, mw...)
}

func (n *namedRouter) PATCH(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodPatch, pattern, h, mw...)
}

func (n *namedRouter) DELETE(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodDelete, pattern, h, mw...)
}

func (n *namedRouter) HEAD(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodHead, pattern, h, mw...)
}

func (n *namedRouter) OPTIONS(pattern string, h any, mw ...Middleware) {
	n.Handle(http.MethodOptions, pattern, h, mw...)
}

func (n *namedRouter) Handle(method, pattern string, h any, mw ...Middleware) {
	n.routeGroup.name, n.name = n.name, ""
	n.routeGroup.Handle(method, pattern, h, mw...)
}

// joinPattern appends pattern to prefix. A bare "/" under a prefix is the prefix itself.
func joinPattern(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	switch {
	case prefix == "":
		return pattern
	case pattern == "" || pattern == "/":
		return prefix
	case !strings.HasPrefix(pattern, "/"):
		return prefix + "/" + pattern
	default:
		return prefix + pattern
	}
}
