package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
)

type ctxKey struct{}

// captureHandler registers GET / and GET /{id}, running fn inside the handler.
type captureHandler struct {
	fn func(c internal.Context)
}

func (h *captureHandler) Routes(r internal.Router) {
	run := func(c internal.Context) error {
		h.fn(c)
		return c.NoContent(http.StatusNoContent)
	}
	r.GET("/", run)
	r.GET("/{id}", run)
}

// requestVia sends req through a new App and fails the test unless fn ran.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	h := &captureHandler{fn: func(c internal.Context) {
		called = true
		fn(c)
	}}
	app := internal.New(append(opts, internal.WithHandlers(h))...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.True(t, called, "handler not reached: %d %s", w.Code, w.Body.String())
	return w
}

func TestExtractorSources(t *testing.T) {
	t.Parallel()

	withContextValue := internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(ctxKey{}, "from-ctx")
			return next(c)
		}
	})

	tests := []struct {
		name   string
		target string
		header map[string]string
		cookie *http.Cookie
		source internal.ExtractorSource
		want   string
		found  bool
	}{
		{name: "header", header: map[string]string{"X-Tenant": "acme"}, source: internal.FromHeader("X-Tenant"), want: "acme", found: true},
		{name: "header missing", source: internal.FromHeader("X-Tenant")},
		{name: "header empty", header: map[string]string{"X-Tenant": ""}, source: internal.FromHeader("X-Tenant")},
		{name: "query", target: "/?lang=pl", source: internal.FromQuery("lang"), want: "pl", found: true},
		{name: "query empty", target: "/?lang=", source: internal.FromQuery("lang")},
		{name: "cookie", cookie: &http.Cookie{Name: "lang", Value: "de"}, source: internal.FromCookie("lang"), want: "de", found: true},
		{name: "cookie missing", source: internal.FromCookie("lang")},
		{name: "param", target: "/abc", source: internal.FromParam("id"), want: "abc", found: true},
		{name: "param missing", target: "/abc", source: internal.FromParam("slug")},
		{name: "bearer", header: map[string]string{"Authorization": "Bearer tok-1"}, source: internal.FromBearerToken(), want: "tok-1", found: true},
		{name: "bearer lower case", header: map[string]string{"Authorization": "bearer tok-2"}, source: internal.FromBearerToken(), want: "tok-2", found: true},
		{name: "bearer other scheme", header: map[string]string{"Authorization": "Basic dXNlcg=="}, source: internal.FromBearerToken()},
		{name: "bearer without token", header: map[string]string{"Authorization": "Bearer "}, source: internal.FromBearerToken()},
		{name: "bearer without space", header: map[string]string{"Authorization": "Bearer"}, source: internal.FromBearerToken()},
		{name: "context", source: internal.FromContext(ctxKey{}), want: "from-ctx", found: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target := tt.target
			if target == "" {
				target = "/"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			requestVia(t, req, []internal.Option{withContextValue}, func(c internal.Context) {
				got, ok := tt.source(c)
				require.Equal(t, tt.found, ok)
				require.Equal(t, tt.want, got)
			})
		})
	}
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?id=from-query", nil)
	req.Header.Set("X-Id", "from-header")

	requestVia(t, req, nil, func(c internal.Context) {
		v, ok := internal.NewExtractor().Extract(c)
		require.False(t, ok)
		require.Empty(t, v)

		v, ok = internal.NewExtractor(internal.FromHeader("X-Id"), internal.FromQuery("id")).Extract(c)
		require.True(t, ok)
		require.Equal(t, "from-header", v)

		v, ok = internal.NewExtractor(nil, internal.FromHeader("X-Missing"), internal.FromQuery("id")).Extract(c)
		require.True(t, ok)
		require.Equal(t, "from-query", v)

		e := internal.NewExtractor(nil, internal.FromCookie("id"), internal.FromParam("id"))
		require.Equal(t, 2, e.Len())
		_, ok = e.Extract(c)
		require.False(t, ok)
	})
}
