package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/middlewares"
)

// counter returns the value of the counter series with the given labels, or -1.
func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func matchLabels(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := middlewares.NewMetrics(reg, middlewares.WithMetricsNamespace("app"))
	require.NoError(t, err)

	app := internal.New(
		internal.WithMiddleware(m.Middleware()),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/items/{id}", func(c internal.Context) error {
				return c.String(http.StatusOK, "item "+c.Param("id"))
			})
			r.GET("/broken", func(internal.Context) error {
				return internal.ErrBadRequest("bad input")
			})
		})),
	)

	for _, target := range []string{"/items/1", "/items/2", "/broken", "/nowhere"} {
		app.ServeHTTP(httptest.NewRecorder(), newRequest(target))
	}

	require.Equal(t, 2.0, counter(t, reg, "app_http_requests_total", map[string]string{
		"method": "GET", "route": "/items/{id}", "status": "200",
	}))
	require.Equal(t, 1.0, counter(t, reg, "app_http_requests_total", map[string]string{
		"route": "/broken", "status": "400",
	}))
	require.Equal(t, 1.0, counter(t, reg, "app_http_requests_total", map[string]string{
		"route": "unmatched", "status": "404",
	}))

	t.Run("registering twice reuses collectors", func(t *testing.T) {
		t.Parallel()

		_, err := middlewares.NewMetrics(reg, middlewares.WithMetricsNamespace("app"))
		require.NoError(t, err)
	})
}
