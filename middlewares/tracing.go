package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/logger"
)

const tracerName = "github.com/dmitrymomot/runway/middlewares"

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	Provider   trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// TracingOption configures TracingConfig.
type TracingOption func(*TracingConfig)

// WithTracerProvider sets the tracer provider. Defaults to otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(cfg *TracingConfig) {
		cfg.Provider = tp
	}
}

// WithPropagator sets the propagator. Defaults to otel.GetTextMapPropagator().
func WithPropagator(p propagation.TextMapPropagator) TracingOption {
	return func(cfg *TracingConfig) {
		cfg.Propagator = p
	}
}

// Tracing returns middleware that starts a server span per request.
// The span continues a trace propagated in the request headers, is renamed to
// "METHOD pattern" once the route is known, and is marked failed for 5xx outcomes.
func Tracing(opts ...TracingOption) internal.Middleware {
	cfg := &TracingConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Provider == nil {
		cfg.Provider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	tracer := cfg.Provider.Tracer(tracerName)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			ctx := cfg.Propagator.Extract(c.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			c.SetContext(ctx)
			err := next(c)

			if pattern := c.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
			if err != nil {
				span.RecordError(err)
			}
			status := statusOf(c, err)
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			return err
		}
	}
}

// TraceExtractor returns a ContextExtractor for use with WithLogger.
// It adds "trace_id" and "span_id" of the active span to log entries.
func TraceExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		sc := trace.SpanContextFromContext(ctx)
		if !sc.IsValid() {
			return slog.Attr{}, false
		}
		return slog.Group("trace",
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		), true
	}
}
