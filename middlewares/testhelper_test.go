package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/runway/internal"
)

// routes adapts a function to internal.Handler.
type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// serveWith registers h under GET /test behind mws and sends req through the app.
func serveWith(t *testing.T, req *http.Request, h internal.HandlerFunc, mws ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithMiddleware(mws...),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/test", h)
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

// capture runs mw around a handler that records the context it saw.
// It returns the error mw produced.
func capture(t *testing.T, req *http.Request, mw internal.Middleware, fn func(c internal.Context) error) error {
	t.Helper()

	var out error
	outer := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			out = next(c)
			return out
		}
	}
	serveWith(t, req, fn, outer, mw)
	return out
}

func newRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
