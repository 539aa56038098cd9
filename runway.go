package runway

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/health"
	"github.com/dmitrymomot/runway/pkg/logger"
	"github.com/dmitrymomot/runway/pkg/route"
)

// Type aliases - public API
type (
	// App owns the route table, the middleware chain, the service container and the
	// error capturer. It is immutable after New returns.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the uniform signature every endpoint is normalized to.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc. It must call next at most once.
	Middleware = internal.Middleware

	// ErrorHandler renders captured failures in place of the built-in renderers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Component is the interface for renderable templates.
	Component = internal.Component

	// Translator is what Context.T delegates to.
	Translator = internal.Translator

	// Response is the buffered response a request writes into.
	Response = internal.Response

	// RuntimeType selects HTTP or CLI rendering and emission.
	RuntimeType = internal.RuntimeType

	// HTTPError is the error handlers return to choose the response status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// MiddlewareContractViolationError is raised when a middleware calls next twice.
	MiddlewareContractViolationError = internal.MiddlewareContractViolationError

	// EmissionError is returned when a response cannot be emitted.
	EmissionError = internal.EmissionError

	// EmissionReason says why a response could not be emitted.
	EmissionReason = internal.EmissionReason

	// ErrorContext is the captured state of one failure.
	ErrorContext = internal.ErrorContext

	// RequestSnapshot is the part of a request kept in an error report.
	RequestSnapshot = internal.RequestSnapshot

	// Sink receives every captured failure.
	Sink = internal.Sink

	// SinkFunc adapts a function to Sink.
	SinkFunc = internal.SinkFunc

	// DetailedRenderer renders developer-mode error pages.
	DetailedRenderer = internal.DetailedRenderer

	// DetailedRendererFunc adapts a function to DetailedRenderer.
	DetailedRendererFunc = internal.DetailedRendererFunc

	// Transport is where an emitter writes a finished response.
	Transport = internal.Transport

	// Emitter writes a finished response to its transport exactly once.
	Emitter = internal.Emitter

	// Extractor tries sources in order and returns the first value found.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from a request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Resolver produces service values for handler parameters.
	Resolver = binder.Resolver

	// MatchPolicy selects a route among the candidates accepting a path.
	MatchPolicy = route.Policy

	// RouteDefinition describes one registered route.
	RouteDefinition = route.Definition[any]
)

// Context keys for request-scoped values set by middlewares.
type (
	RequestIDKey  = internal.RequestIDKey
	TranslatorKey = internal.TranslatorKey
	LanguageKey   = internal.LanguageKey
)

var (
	// RuntimeHTTP serves requests from a network listener.
	RuntimeHTTP = internal.RuntimeHTTP

	// RuntimeCLI serves requests dispatched from a command-line process.
	RuntimeCLI = internal.RuntimeCLI

	// ErrUnknownRuntime is returned by ParseRuntime.
	ErrUnknownRuntime = internal.ErrUnknownRuntime

	// ErrResponseTooLarge is returned when a buffered body exceeds its limit.
	ErrResponseTooLarge = internal.ErrResponseTooLarge
)

const (
	// FirstMatch picks the first accepting route in registration order.
	FirstMatch = route.FirstMatch

	// MostSpecific picks the accepting route with the most literal characters.
	MostSpecific = route.MostSpecific

	// ReasonAlreadySent means the response was already emitted.
	ReasonAlreadySent = internal.ReasonAlreadySent

	// ReasonNotWritable means the client went away or a write failed.
	ReasonNotWritable = internal.ReasonNotWritable

	// DefaultMaxBufferedBody is the buffered body limit used when none is configured.
	DefaultMaxBufferedBody = internal.DefaultMaxBufferedBody
)

// Constructors

// New creates a new application with the given options.
// Registration errors such as invalid patterns or duplicate route names panic.
//
// Example:
//
//	app := runway.New(
//	    runway.WithMiddleware(middlewares.RequestID()),
//	    runway.WithServices(repository.New),
//	    runway.WithHandlers(handlers.NewPages()),
//	)
//
//	err := app.Run(":8080", runway.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// ParseRuntime parses "http" or "cli".
func ParseRuntime(s string) (RuntimeType, error) {
	return internal.ParseRuntime(s)
}

// Chain composes mws around terminal. The first middleware is the outermost.
func Chain(terminal HandlerFunc, mws ...Middleware) HandlerFunc {
	return internal.Chain(terminal, mws...)
}

// NewResponse creates a buffered response with the given body limit.
func NewResponse(limit int) *Response {
	return internal.NewResponse(limit)
}

// NewEmitter creates an emitter for the runtime.
func NewEmitter(rt RuntimeType) *Emitter {
	return internal.NewEmitter(rt)
}

// NewDetailedRenderer returns the built-in developer-mode renderer for the runtime.
func NewDetailedRenderer(rt RuntimeType) DetailedRenderer {
	return internal.NewDetailedRenderer(rt)
}

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutesFile registers the routes declared in a YAML file.
// Handler references are looked up in refs.
//
// Example:
//
//	//go:embed routes.yaml
//	var routes embed.FS
//
//	runway.New(
//	    runway.WithRoutesFile(routes, "routes.yaml", map[string]any{
//	        "pages.home": pages.Home,
//	    }),
//	)
func WithRoutesFile(fsys fs.FS, path string, refs map[string]any) Option {
	return internal.WithRoutesFile(fsys, path, refs)
}

// WithMatchPolicy overrides the FirstMatch default.
func WithMatchPolicy(p MatchPolicy) Option {
	return internal.WithMatchPolicy(p)
}

// WithServices registers constructors in the service container.
// Handler parameters are resolved from it by type.
func WithServices(constructors ...any) Option {
	return internal.WithServices(constructors...)
}

// WithInstances registers ready-made values in the service container.
func WithInstances(values ...any) Option {
	return internal.WithInstances(values...)
}

// WithResolver replaces the container as the source of handler parameters.
func WithResolver(r Resolver) Option {
	return internal.WithResolver(r)
}

// WithCookies sets the cookie manager behind Context.SetCookie and the
// signed and encrypted cookie helpers.
func WithCookies(m *cookie.Manager) Option {
	return internal.WithCookies(m)
}

// WithRuntime selects HTTP or CLI rendering and emission.
func WithRuntime(rt RuntimeType) Option {
	return internal.WithRuntime(rt)
}

// WithDeveloperMode enables detailed error pages with the failure chain and stack.
func WithDeveloperMode(enabled bool) Option {
	return internal.WithDeveloperMode(enabled)
}

// WithDetailedRenderer replaces the built-in developer-mode renderer.
func WithDetailedRenderer(r DetailedRenderer) Option {
	return internal.WithDetailedRenderer(r)
}

// WithErrorSink adds a sink that receives every captured failure.
func WithErrorSink(s Sink) Option {
	return internal.WithErrorSink(s)
}

// WithMaxBufferedBody sets the buffered response body limit.
func WithMaxBufferedBody(n int) Option {
	return internal.WithMaxBufferedBody(n)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom renderer for captured failures.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	runway.WithHealthChecks(
//	    runway.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLivenessPath overrides the liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides the readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithMetrics exposes g in the Prometheus text format at path.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return internal.WithMetrics(path, g)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
//
// Example:
//
//	runway.WithLogger("api",
//	    middlewares.RequestIDExtractor(),
//	    middlewares.TraceExtractor(),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger uses l as the application logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithShutdownHook registers a function to run on graceful shutdown.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Run options

// Logger sets the logger used by the server runtime.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the graceful shutdown deadline.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the listener opens.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a function to run on graceful shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context. Cancelling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Listener serves on ln instead of listening on the address passed to Run.
func Listener(ln net.Listener) RunOption {
	return internal.Listener(ln)
}
