package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/runway/pkg/failure"
	"github.com/dmitrymomot/runway/pkg/id"
)

// redactedHeaders never leave the process in error reports.
var redactedHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Api-Key"}

// RequestSnapshot is the part of a request kept in an error report.
type RequestSnapshot struct {
	Header     http.Header `json:"header,omitempty"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Query      string      `json:"query,omitempty"`
	Route      string      `json:"route,omitempty"`
	RouteName  string      `json:"route_name,omitempty"`
	RemoteAddr string      `json:"remote_addr,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
}

// ErrorContext is the captured state of one failure. It is read-only once built.
type ErrorContext struct {
	Time    time.Time       `json:"time"`
	Request RequestSnapshot `json:"request"`
	ErrorID string          `json:"error_id"`
	Runtime RuntimeType     `json:"runtime"`
	Failure failure.Failure `json:"failure"`
	Status  int             `json:"status"`

	err error
}

// Err returns the captured error.
func (ec *ErrorContext) Err() error { return ec.err }

// Unwrap lets errors.Is and errors.As see the captured error.
func (ec *ErrorContext) Unwrap() error { return ec.err }

func (ec *ErrorContext) Error() string {
	return fmt.Sprintf("%s (error id: %s)", ec.Failure.Message, ec.ErrorID)
}

// Sink receives every captured failure.
type Sink interface {
	Report(ctx context.Context, ec *ErrorContext)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ec *ErrorContext)

// Report implements Sink.
func (f SinkFunc) Report(ctx context.Context, ec *ErrorContext) { f(ctx, ec) }

// CapturerConfig configures a Capturer.
type CapturerConfig struct {
	Logger    *slog.Logger
	Detailed  DetailedRenderer
	NewID     func() string
	Sinks     []Sink
	Runtime   RuntimeType
	Developer bool
}

// Capturer turns failures into error contexts and rendered responses.
type Capturer struct {
	logger    *slog.Logger
	detailed  DetailedRenderer
	newID     func() string
	now       func() time.Time
	sinks     []Sink
	runtime   RuntimeType
	developer bool
}

// NewCapturer creates a capturer. Captures are always logged and recorded on the active
// trace span, in addition to cfg.Sinks.
func NewCapturer(cfg CapturerConfig) *Capturer {
	c := &Capturer{
		logger:    cfg.Logger,
		detailed:  cfg.Detailed,
		newID:     cfg.NewID,
		now:       time.Now,
		runtime:   cfg.Runtime.orDefault(),
		developer: cfg.Developer,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.newID == nil {
		c.newID = id.NewULID
	}
	if c.detailed == nil {
		c.detailed = NewDetailedRenderer(c.runtime)
	}
	c.sinks = append([]Sink{logSink{logger: c.logger}, spanSink{}}, cfg.Sinks...)
	return c
}

// Runtime returns the runtime the capturer renders for.
func (c *Capturer) Runtime() RuntimeType { return c.runtime }

// DeveloperMode reports whether detailed error pages are rendered.
func (c *Capturer) DeveloperMode() bool { return c.developer }

// Capture builds the error context for err and reports it to the sinks.
// It never panics and never returns nil.
func (c *Capturer) Capture(err error, r *http.Request) (ec *ErrorContext) {
	defer func() {
		if rec := recover(); rec != nil {
			ec = c.minimal(err)
		}
	}()

	if err == nil {
		err = errors.New("runway: capture of nil error")
	}

	status, ok := failure.Status(err)
	if !ok || status < http.StatusBadRequest || status > 599 {
		status = http.StatusInternalServerError
	}

	f := failure.From(err)
	if status < http.StatusInternalServerError && f.Severity < failure.SeverityCritical {
		f.Severity = failure.SeverityWarning
	}

	ec = &ErrorContext{
		Time:    c.now(),
		err:     err,
		Request: snapshot(r),
		ErrorID: c.newID(),
		Runtime: c.runtime,
		Failure: f,
		Status:  status,
	}

	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	c.report(ctx, ec)
	return ec
}

func (c *Capturer) report(ctx context.Context, ec *ErrorContext) {
	for _, s := range c.sinks {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					c.logger.ErrorContext(ctx, "error sink panicked", "error_id", ec.ErrorID, "panic", fmt.Sprint(rec))
				}
			}()
			s.Report(ctx, ec)
		}()
	}
}

// minimal is the context used when building a full one failed.
func (c *Capturer) minimal(err error) *ErrorContext {
	errID := ""
	func() {
		defer func() { _ = recover() }()
		errID = c.newID()
	}()
	if errID == "" {
		errID = id.NewULID()
	}
	return &ErrorContext{
		Time:    time.Now(),
		err:     err,
		ErrorID: errID,
		Runtime: c.runtime,
		Status:  http.StatusInternalServerError,
		Failure: failure.Failure{
			Kind:     failure.KindError,
			Message:  fmt.Sprintf("%T", err),
			Severity: failure.SeverityCritical,
		},
	}
}

func snapshot(r *http.Request) RequestSnapshot {
	if r == nil {
		return RequestSnapshot{}
	}

	h := r.Header.Clone()
	for _, k := range redactedHeaders {
		if h.Get(k) != "" {
			h.Set(k, "[redacted]")
		}
	}

	s := RequestSnapshot{
		Header:     h,
		Method:     r.Method,
		RemoteAddr: r.RemoteAddr,
	}
	if r.URL != nil {
		s.Path = r.URL.Path
		s.Query = r.URL.RawQuery
	}
	if rid, ok := r.Context().Value(RequestIDKey{}).(string); ok {
		s.RequestID = rid
	}
	if m := matchFromContext(r.Context()); m != nil {
		s.Route = m.Route.Definition.Pattern
		s.RouteName = m.Route.Definition.Name
	}
	return s
}

// logSink writes captures to the application logger.
// 5xx failures log at error level so they reach Sentry through the logger's Sentry handler.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(ctx context.Context, ec *ErrorContext) {
	level := slog.LevelError
	if ec.Status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("error_id", ec.ErrorID),
		slog.Int("status", ec.Status),
		slog.String("kind", ec.Failure.Kind),
		slog.String("severity", ec.Failure.Severity.String()),
		slog.String("method", ec.Request.Method),
		slog.String("path", ec.Request.Path),
	}
	if ec.Failure.Origin != "" {
		attrs = append(attrs, slog.String("origin", ec.Failure.Origin))
	}
	if ec.Request.Route != "" {
		attrs = append(attrs, slog.String("route", ec.Request.Route))
	}
	if ec.err != nil {
		attrs = append(attrs, slog.Any("error", ec.err))
	}
	s.logger.LogAttrs(ctx, level, "request failed", attrs...)
}

// spanSink records captures on the active OpenTelemetry span.
type spanSink struct{}

func (spanSink) Report(ctx context.Context, ec *ErrorContext) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(ec.err, trace.WithAttributes(
		attribute.String("error.id", ec.ErrorID),
		attribute.String("error.kind", ec.Failure.Kind),
		attribute.Int("http.response.status_code", ec.Status),
	))
	if ec.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, ec.Failure.Message)
	}
}
