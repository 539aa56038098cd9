package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/middlewares"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func preflight(origin string) *http.Request {
	req := corsRequest(http.MethodOptions, origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return req
}

func okHandler(c internal.Context) error { return c.String(http.StatusOK, "ok") }

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("no origin passes through", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, corsRequest(http.MethodGet, ""), okHandler, middlewares.CORS())
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard by default", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, corsRequest(http.MethodGet, "https://app.example.com"), okHandler,
			middlewares.CORS(middlewares.WithCORSExposeHeaders("X-Request-ID")))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		require.Contains(t, w.Header().Values("Vary"), "Origin")
	})

	t.Run("preflight is answered before routing", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, preflight("https://app.example.com"), okHandler,
			middlewares.CORS(middlewares.WithCORSMaxAge(time.Hour), middlewares.WithCORSHeaders("Content-Type")))
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		require.Empty(t, w.Body.String())
	})

	t.Run("plain options request is routed", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, corsRequest(http.MethodOptions, "https://app.example.com"), okHandler, middlewares.CORS())
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("listed and subdomain origins", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithCORSOrigins("https://example.com", "https://*.example.org"))
		for origin, allowed := range map[string]bool{
			"https://example.com":     true,
			"HTTPS://EXAMPLE.COM":     true,
			"https://a.example.org":   true,
			"https://example.org":     false,
			"http://a.example.org":    false,
			"https://evil.com":        false,
			"https://example.com.evil": false,
		} {
			w := serveWith(t, corsRequest(http.MethodGet, origin), okHandler, mw)
			require.Equal(t, http.StatusOK, w.Code, origin)
			if allowed {
				require.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), origin)
			} else {
				require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), origin)
			}
		}
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, corsRequest(http.MethodGet, "https://app.example.com"), okHandler, middlewares.CORS(middlewares.WithCORSCredentials()))
		require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("origin func decides alone", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithCORSOrigins("https://listed.com"),
			middlewares.WithCORSOriginFunc(func(origin string) bool { return origin == "https://dynamic.com" }),
		)
		w := serveWith(t, corsRequest(http.MethodGet, "https://dynamic.com"), okHandler, mw)
		require.Equal(t, "https://dynamic.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = serveWith(t, preflight("https://listed.com"), okHandler, mw)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code, "rejected preflight falls through to routing")
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
