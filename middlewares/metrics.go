package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/failure"
)

// unmatchedRoute labels requests that matched no route, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics holds the request collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace string
	buckets   []float64
}

// WithMetricsNamespace prefixes metric names.
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *metricsConfig) {
		cfg.namespace = ns
	}
}

// WithMetricsBuckets sets the latency histogram buckets in seconds.
func WithMetricsBuckets(b ...float64) MetricsOption {
	return func(cfg *metricsConfig) {
		cfg.buckets = b
	}
}

// NewMetrics creates request collectors and registers them with reg.
// Collectors already registered by an earlier call are shared.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) (*Metrics, error) {
	cfg := &metricsConfig{buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by method and route pattern.",
			Buckets:   cfg.buckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// Middleware records every request that passes through it.
// The status of a failed request is the one its error renders with.
func (m *Metrics) Middleware() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			err := next(c)

			route := c.RoutePattern()
			if route == "" {
				route = unmatchedRoute
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(statusOf(c, err))).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf returns the status a request will be answered with.
func statusOf(c internal.Context, err error) int {
	if err == nil {
		if s := c.ResponseWriter().Status(); s != 0 {
			return s
		}
		return http.StatusOK
	}
	if s, ok := failure.Status(err); ok && s >= http.StatusBadRequest && s <= 599 {
		return s
	}
	return http.StatusInternalServerError
}
