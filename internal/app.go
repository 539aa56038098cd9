package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/container"
	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/health"
	"github.com/dmitrymomot/runway/pkg/logger"
	"github.com/dmitrymomot/runway/pkg/route"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle.
// It owns the route table, the global middleware chain, the error capturer and the
// response emitter. App is immutable after creation - all configuration is done via New().
type App struct {
	mux                     chi.Router
	table                   *route.Table[*endpoint]
	router                  *route.Router[*endpoint]
	container               *container.Container
	resolver                binder.Resolver
	capturer                *Capturer
	cookies                 *cookie.Manager
	emitter                 *Emitter
	logger                  *slog.Logger
	chain                   HandlerFunc
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	detailed                DetailedRenderer
	healthConfig            *healthConfig
	metrics                 *metricsConfig
	sinks                   []Sink
	routeOptions            []route.Option
	middlewares             []Middleware
	handlers                []Handler
	routeFiles              []routeFile
	staticRoutes            []staticRoute
	providers               []any
	instances               []any
	shutdownHooks           []func(context.Context) error
	runtime                 RuntimeType
	maxBody                 int
	developer               bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// routeFile is a YAML route-definition file and the handlers its entries refer to.
type routeFile struct {
	fsys fs.FS
	refs map[string]any
	path string
}

// metricsConfig exposes a Prometheus registry on the outer mux.
type metricsConfig struct {
	gatherer prometheus.Gatherer
	path     string
}

// New creates a new application with the given options.
// The App is immutable after creation. Invalid routes, handlers or services panic.
//
// Example:
//
//	app := runway.New(
//	    runway.WithMiddleware(middlewares.Recover(), middlewares.RequestID()),
//	    runway.WithServices(db.Provider(cfg)),
//	    runway.WithHandlers(
//	        handlers.NewItems(),
//	        handlers.NewPages(),
//	    ),
//	)
func New(opts ...Option) *App {
	a := &App{
		mux:       chi.NewRouter(),
		table:     route.NewTable[*endpoint](),
		container: container.New(),
		logger:    logger.NewNope(), // Default: noop logger (before options)
		maxBody:   DefaultMaxBufferedBody,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.runtime = a.runtime.orDefault()
	if a.cookies == nil {
		a.cookies, _ = cookie.New(cookie.Config{}) // no secret, cannot fail
	}
	if a.resolver == nil {
		a.resolver = a.container
	}
	if err := a.container.Provide(a.providers...); err != nil {
		panic(fmt.Errorf("runway: provide services: %w", err))
	}
	if err := a.container.Supply(a.instances...); err != nil {
		panic(fmt.Errorf("runway: supply services: %w", err))
	}

	a.router = route.NewRouter(a.table, a.routeOptions...)
	a.emitter = NewEmitter(a.runtime)
	a.capturer = NewCapturer(CapturerConfig{
		Logger:    a.logger,
		Detailed:  a.detailed,
		Sinks:     a.sinks,
		Runtime:   a.runtime,
		Developer: a.developer,
	})
	a.chain = Chain(a.route, a.middlewares...)

	a.setupRoutes()
	a.table.Freeze()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Router returns the outer chi.Router carrying health, metrics, static and mounted handlers.
func (a *App) Router() chi.Router {
	return a.mux
}

// Routes returns the registered routes in registration order.
func (a *App) Routes() []*route.Definition[any] {
	defs := make([]*route.Definition[any], 0, a.table.Len())
	for c := range a.table.All() {
		d := c.Definition
		defs = append(defs, &route.Definition[any]{
			Handler: d.Handler.source,
			Method:  d.Method,
			Pattern: d.Pattern,
			Name:    d.Name,
		})
	}
	return defs
}

// URL builds the path of a named route.
func (a *App) URL(name string, params map[string]string) (string, error) {
	return a.table.URL(name, params)
}

// Container returns the service container handlers' dependencies are resolved from.
func (a *App) Container() *container.Container {
	return a.container
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	app := runway.New(
//	    runway.WithHandlers(handlers.NewLandingHandler()),
//	)
//	err := app.Run(":8080", runway.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	cfg.shutdownHooks = append(cfg.shutdownHooks, a.shutdownHooks...)
	return serve(a, addr, cfg)
}

// setupRoutes configures the outer mux and registers handlers into the route table.
func (a *App) setupRoutes() {
	kernel := http.HandlerFunc(a.serveHTTP)
	a.mux.NotFound(kernel)
	a.mux.MethodNotAllowed(kernel)

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		live := health.Liveness()
		ready := health.Readiness(a.healthConfig.checks, health.WithLogger(a.logger))
		for _, m := range []string{http.MethodGet, http.MethodHead} {
			a.mux.Method(m, a.healthConfig.livenessPath, live)
			a.mux.Method(m, a.healthConfig.readinessPath, ready)
		}
	}

	if a.metrics != nil {
		a.mux.Handle(a.metrics.path, promhttp.HandlerFor(a.metrics.gatherer, promhttp.HandlerOpts{}))
	}

	r := newRouteGroup(a)
	for _, h := range a.handlers {
		h.Routes(r)
	}
	for _, rf := range a.routeFiles {
		if err := a.loadRouteFile(r, rf); err != nil {
			panic(err)
		}
	}
}

func (a *App) loadRouteFile(r *routeGroup, rf routeFile) error {
	f, err := rf.fsys.Open(rf.path)
	if err != nil {
		return fmt.Errorf("runway: open routes file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decls, err := route.LoadDefinitions(f)
	if err != nil {
		return fmt.Errorf("runway: %s: %w", rf.path, err)
	}
	for _, d := range decls {
		h, ok := rf.refs[d.Handler]
		if !ok {
			return fmt.Errorf("runway: %s: %s %s: unknown handler reference %q", rf.path, d.Method, d.Pattern, d.Handler)
		}
		r.name = d.Name
		if err := r.register(d.Method, d.Pattern, h, nil); err != nil {
			return err
		}
	}
	return nil
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness check.
//
// Example:
//
//	runway.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
