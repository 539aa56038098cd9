package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/logger"
	"github.com/dmitrymomot/runway/pkg/route"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Global middleware runs before routing, in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutesFile registers the routes declared in a YAML file.
// Each entry's handler field is looked up in refs.
//
// Example:
//
//	//go:embed routes.yaml
//	var routes embed.FS
//
//	runway.New(
//	    runway.WithRoutesFile(routes, "routes.yaml", map[string]any{
//	        "items.show": items.Show,
//	    }),
//	)
func WithRoutesFile(fsys fs.FS, path string, refs map[string]any) Option {
	return func(a *App) {
		a.routeFiles = append(a.routeFiles, routeFile{fsys: fsys, path: path, refs: refs})
	}
}

// WithMatchPolicy overrides the first-match routing policy.
func WithMatchPolicy(p route.Policy) Option {
	return func(a *App) {
		a.routeOptions = append(a.routeOptions, route.WithPolicy(p))
	}
}

// WithServices registers constructors whose results handlers receive as arguments.
// Constructors run lazily, once, the first time a handler needs their result.
//
// Example:
//
//	runway.WithServices(
//	    func() (*pgxpool.Pool, error) { return db.Open(ctx, cfg) },
//	    repository.New,
//	)
func WithServices(constructors ...any) Option {
	return func(a *App) {
		a.providers = append(a.providers, constructors...)
	}
}

// WithInstances registers ready values as services.
func WithInstances(values ...any) Option {
	return func(a *App) {
		a.instances = append(a.instances, values...)
	}
}

// WithResolver replaces the service container as the source of handler dependencies.
func WithResolver(r binder.Resolver) Option {
	return func(a *App) {
		a.resolver = r
	}
}

// WithCookies sets the manager behind the context cookie helpers. Without
// it cookies are written with default attributes and no secret, so the
// signed and encrypted helpers return cookie.ErrNoSecret.
func WithCookies(m *cookie.Manager) Option {
	return func(a *App) {
		a.cookies = m
	}
}

// WithRuntime sets the runtime the error renderer and the emitter serve.
// Defaults to RuntimeHTTP.
func WithRuntime(rt RuntimeType) Option {
	return func(a *App) {
		a.runtime = rt
	}
}

// WithDeveloperMode switches error responses to the detailed renderer.
// Never enable it in production: detailed bodies include messages and stack traces.
func WithDeveloperMode(enabled bool) Option {
	return func(a *App) {
		a.developer = enabled
	}
}

// WithDetailedRenderer replaces the built-in developer-mode error renderer.
func WithDetailedRenderer(r DetailedRenderer) Option {
	return func(a *App) {
		a.detailed = r
	}
}

// WithErrorSink adds a destination for captured failures, next to the logger and
// the active trace span.
func WithErrorSink(s Sink) Option {
	return func(a *App) {
		if s != nil {
			a.sinks = append(a.sinks, s)
		}
	}
}

// WithMaxBufferedBody caps the response bytes buffered before a handler must Flush.
// Zero or less disables the cap.
func WithMaxBufferedBody(n int) Option {
	return func(a *App) {
		a.maxBody = n
	}
}

// WithStaticFiles serves subDir of fsys under pattern, outside the dispatch
// kernel. Directory paths answer 404 and files are cacheable for an hour.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	runway.New(
//	    runway.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(fmt.Errorf("runway: static files %q: %w", subDir, err))
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))

		a.staticRoutes = append(a.staticRoutes, staticRoute{
			pattern: pattern,
			handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/") {
					http.NotFound(w, r)
					return
				}
				h := w.Header()
				h.Set("Cache-Control", "public, max-age=3600")
				h.Set("X-Content-Type-Options", "nosniff")
				files.ServeHTTP(w, r)
			}),
		})
	}
}

// WithErrorHandler sets a custom renderer for captured failures.
// The failure is captured and logged first; the handler only renders.
//
// Example:
//
//	runway.WithErrorHandler(func(c runway.Context, err error) error {
//	    return c.Render(http.StatusInternalServerError, views.ErrorPage(runway.ErrorID(c)))
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler renders unmatched paths. The failure is logged first.
//
// Example:
//
//	runway.WithNotFoundHandler(func(c runway.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
// The Allow header is already set when it runs.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks mounts the liveness endpoint, which answers as long as the
// process serves, and the readiness endpoint, which runs every registered check.
// Paths default to /health/live and /health/ready.
//
// Example:
//
//	runway.WithHealthChecks(
//	    runway.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    runway.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics exposes a Prometheus registry on path, outside the dispatch kernel.
// Pair it with middlewares.Metrics registered on the same registry.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return func(a *App) {
		if path == "" {
			path = "/metrics"
		}
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		a.metrics = &metricsConfig{path: path, gatherer: g}
	}
}

// WithLogger installs a stdout JSON logger tagged with component. Use
// WithCustomLogger for one built by logger.NewWithConfig.
//
// Example:
//
//	runway.New(
//	    runway.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger installs l. Nil is ignored.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithShutdownHook registers a cleanup function Run calls during shutdown,
// after the hooks passed as run options.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
