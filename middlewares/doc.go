// Package middlewares provides middleware for runway applications.
//
// Middlewares are registered globally with runway.WithMiddleware, per group with
// Router.Use, or per route. The first registered is the outermost. Each one calls
// next at most once; a second call is reported as a contract violation.
//
// # Request ID
//
// RequestID assigns an ID to each request, reusing X-Request-ID or X-Correlation-ID
// when the client sends one and generating a UUIDv7 otherwise. Error reports and
// rendered error pages carry it.
//
//	app := runway.New(
//	    runway.WithLogger("api", middlewares.RequestIDExtractor()),
//	    runway.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// The kernel already turns panics into 500 responses with an error ID. Recover is
// for outer middlewares that must see a panic as an error, such as metrics:
//
//	runway.WithMiddleware(
//	    metrics.Middleware(),
//	    middlewares.Recover(),
//	)
//
// # Timeout
//
// Timeout puts a deadline on the request context. Handlers that pass c to blocking
// calls are cancelled; the request fails with a *TimeoutError (503).
//
//	runway.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # Metrics and tracing
//
// Metrics records Prometheus request counters and latency histograms labelled by
// route pattern. Tracing starts an OpenTelemetry server span per request and
// TraceExtractor adds its IDs to log entries.
//
//	m, err := middlewares.NewMetrics(prometheus.DefaultRegisterer)
//	app := runway.New(
//	    runway.WithLogger("api", middlewares.TraceExtractor()),
//	    runway.WithMiddleware(middlewares.Tracing(), m.Middleware()),
//	    runway.WithMetrics("/metrics", prometheus.DefaultGatherer),
//	)
//
// # I18n
//
// I18n resolves the request language from ?lang, the "lang" cookie and
// Accept-Language, in that order, and stores a translator that c.T uses.
//
//	bundle, _ := i18n.New(i18n.WithYAMLDir(translations))
//	app := runway.New(runway.WithMiddleware(middlewares.I18n(bundle)))
package middlewares
