package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
)

type greeting struct {
	Name string `query:"name" default:"world"`
}

type itemParams struct {
	ID int `param:"id"`
}

type greeter struct {
	prefix string
}

// exampleHandler declares the routes used across the dispatch tests.
type exampleHandler struct{}

func (exampleHandler) Routes(r internal.Router) {
	r.Named("home").GET("/", func(g greeting) (string, error) {
		return "Hello, " + g.Name + "!", nil
	})
	r.GET("/error/{code:\\d+}/{id}", func(c internal.Context) error {
		code := internal.Param[int](c, "code")
		return c.String(code, fmt.Sprintf("status %d for %s", code, c.Param("id")))
	})
	r.Named("item").GET("/items/{id}", func(p itemParams) (map[string]int, error) {
		return map[string]int{"id": p.ID}, nil
	})
	r.DELETE("/items/{id}", func(c internal.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	r.GET("/panic", func(internal.Context) error {
		panic("kaboom")
	})
	r.GET("/missing", func(internal.Context) error {
		return internal.ErrNotFound("no such thing")
	})
	r.GET("/greet", func(g *greeter) (string, error) {
		return g.prefix + " there", nil
	})
}

func newExampleApp(opts ...internal.Option) *internal.App {
	return internal.New(append([]internal.Option{internal.WithHandlers(exampleHandler{})}, opts...)...)
}

func serve(app *internal.App, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := newExampleApp(internal.WithInstances(&greeter{prefix: "hi"}))

	t.Run("binds query with default", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Hello, world!", w.Body.String())

		w = serve(app, http.MethodGet, "/?name=Ada")
		require.Equal(t, "Hello, Ada!", w.Body.String())
	})

	t.Run("handler chooses status", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/error/404/abc123")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, w.Body.String(), "404")
		require.Contains(t, w.Body.String(), "abc123")
	})

	t.Run("returned values are encoded", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/items/42")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "application/json")
		require.JSONEq(t, `{"id":42}`, w.Body.String())
	})

	t.Run("services are injected", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/greet")
		require.Equal(t, "hi there", w.Body.String())
	})

	t.Run("coercion failure is 400", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/items/abc")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotEmpty(t, w.Header().Get("X-Error-Id"))
	})

	t.Run("unmatched path is 404", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/nowhere")
		require.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, w.Header().Get("X-Error-Id"), body["error_id"])
	})

	t.Run("wrong method is 405 with allow", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodPut, "/items/1")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		require.Contains(t, w.Header().Get("Allow"), http.MethodGet)
		require.Contains(t, w.Header().Get("Allow"), http.MethodDelete)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/panic")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotEmpty(t, w.Header().Get("X-Error-Id"))
		require.NotContains(t, w.Body.String(), "kaboom")
	})

	t.Run("http errors keep their status", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("named routes build urls", func(t *testing.T) {
		t.Parallel()

		u, err := app.URL("item", map[string]string{"id": "7"})
		require.NoError(t, err)
		require.Equal(t, "/items/7", u)

		names := make([]string, 0)
		for _, d := range app.Routes() {
			if d.Name != "" {
				names = append(names, d.Name)
			}
		}
		require.Equal(t, []string{"home", "item"}, names)
	})
}

func TestApp_EscapedPathParams(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
		r.Named("file").GET("/files/{name}", func(c internal.Context) error {
			return c.String(http.StatusOK, c.Param("name"))
		})
	})))

	w := serve(app, http.MethodGet, "/files/reports%2F2024.csv")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "reports/2024.csv", w.Body.String())

	u, err := app.URL("file", map[string]string{"name": "reports/2024.csv"})
	require.NoError(t, err)
	require.Equal(t, "/files/reports%2F2024.csv", u)

	require.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/files/reports/2024.csv").Code)
}

func TestApp_ErrorIDsAreUnique(t *testing.T) {
	t.Parallel()

	app := newExampleApp()
	ids := make(map[string]bool)
	for range 50 {
		id := serve(app, http.MethodGet, "/panic").Header().Get("X-Error-Id")
		require.False(t, ids[id])
		ids[id] = true
	}
}

func TestApp_DeveloperMode(t *testing.T) {
	t.Parallel()

	app := newExampleApp(internal.WithDeveloperMode(true))
	w := serve(app, http.MethodGet, "/panic")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "kaboom")
	require.Contains(t, w.Body.String(), w.Header().Get("X-Error-Id"))
}

func TestApp_CustomHandlers(t *testing.T) {
	t.Parallel()

	t.Run("not found handler sees the error id", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "lost: "+internal.ErrorID(c))
		}))
		w := serve(app, http.MethodGet, "/nowhere")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "lost: "+w.Header().Get("X-Error-Id"), w.Body.String())
	})

	t.Run("method not allowed handler keeps allow", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.NoContent(http.StatusMethodNotAllowed)
		}))
		w := serve(app, http.MethodPost, "/items/1")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		require.NotEmpty(t, w.Header().Get("Allow"))
	})

	t.Run("error handler receives the failure", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithErrorHandler(func(c internal.Context, err error) error {
			var he *internal.HTTPError
			if errors.As(err, &he) {
				return c.JSON(he.Code, map[string]string{"message": he.Message})
			}
			return c.String(http.StatusInternalServerError, "oops")
		}))

		w := serve(app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"message":"no such thing"}`, w.Body.String())
	})

	t.Run("failing error handler falls back", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithErrorHandler(func(internal.Context, error) error {
			panic("handler bug")
		}))
		w := serve(app, http.MethodGet, "/panic")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Body.String(), w.Header().Get("X-Error-Id"))
	})
}

func TestApp_Middlewares(t *testing.T) {
	t.Parallel()

	t.Run("global then group then route", func(t *testing.T) {
		t.Parallel()

		var trace []string
		app := internal.New(
			internal.WithMiddleware(tracing(&trace, "global")),
			internal.WithHandlers(routesFunc(func(r internal.Router) {
				r.Route("/api", func(r internal.Router) {
					r.Use(tracing(&trace, "group"))
					r.GET("/ping", func(c internal.Context) error {
						trace = append(trace, "handler")
						return c.String(http.StatusOK, "pong")
					}, tracing(&trace, "route"))
				})
			})),
		)

		w := serve(app, http.MethodGet, "/api/ping")
		require.Equal(t, "pong", w.Body.String())
		require.Equal(t, []string{
			"global:in", "group:in", "route:in", "handler",
			"route:out", "group:out", "global:out",
		}, trace)
	})

	t.Run("outer middleware sees the rendered error", func(t *testing.T) {
		t.Parallel()

		var seen error
		app := newExampleApp(internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				seen = next(c)
				return seen
			}
		}))
		w := serve(app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Error(t, seen)
	})

	t.Run("double next panics after responding", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				_ = next(c)
				return next(c)
			}
		}))

		w := httptest.NewRecorder()
		require.Panics(t, func() {
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		})
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotEmpty(t, w.Header().Get("X-Error-Id"))
	})
}

func TestApp_Streaming(t *testing.T) {
	t.Parallel()

	boom := errors.New("late failure")
	app := internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
		r.GET("/stream", func(c internal.Context) error {
			_, _ = c.Response().Write([]byte("chunk1\n"))
			c.ResponseWriter().Flush()
			_, _ = c.Response().Write([]byte("chunk2\n"))
			return boom
		})
	})))

	w := serve(app, http.MethodGet, "/stream")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "chunk1\nchunk2\n", w.Body.String())
	require.Empty(t, w.Header().Get("X-Error-Id"))
}

func TestApp_ClientGone(t *testing.T) {
	t.Parallel()

	app := newExampleApp()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	})
	require.Empty(t, w.Body.String())
}

func TestApp_RoutesFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"routes.yaml": {Data: []byte(`routes:
  - method: GET
    pattern: /hello/{name}
    handler: hello
    name: hello
`)},
	}
	app := internal.New(internal.WithRoutesFile(fsys, "routes.yaml", map[string]any{
		"hello": func(c internal.Context) error {
			return c.String(http.StatusOK, "hello "+c.Param("name")+" via "+c.RouteName())
		},
	}))

	w := serve(app, http.MethodGet, "/hello/bob")
	require.Equal(t, "hello bob via hello", w.Body.String())

	u, err := app.URL("hello", map[string]string{"name": "ann"})
	require.NoError(t, err)
	require.Equal(t, "/hello/ann", u)
}

func TestApp_RegistrationErrors(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.Named("dup").GET("/a", func(internal.Context) error { return nil })
			r.Named("dup").GET("/b", func(internal.Context) error { return nil })
		})))
	})

	require.Panics(t, func() {
		internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.GET("/a", func() {})
		})))
	})
}

func TestApp_DispatchStream(t *testing.T) {
	t.Parallel()

	t.Run("cli writes only the body", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithRuntime(internal.RuntimeCLI))
		var out bytes.Buffer
		err := app.Dispatch(context.Background(), httptest.NewRequest(http.MethodGet, "/?name=cli", nil), &out)
		require.NoError(t, err)
		require.Equal(t, "Hello, cli!", out.String())
	})

	t.Run("cli errors are plain text", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(internal.WithRuntime(internal.RuntimeCLI))
		var out bytes.Buffer
		err := app.Dispatch(context.Background(), httptest.NewRequest(http.MethodGet, "/nowhere", nil), &out)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out.String(), "404 Not Found (error id: "))
	})

	t.Run("http writes the wire form", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp()
		var out bytes.Buffer
		err := app.Dispatch(context.Background(), httptest.NewRequest(http.MethodGet, "/error/418/tea", nil), &out)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out.String(), "HTTP/1.1 418 I'm a teapot\r\n"))
		require.True(t, strings.HasSuffix(out.String(), "\r\n\r\nstatus 418 for tea"))
	})

	t.Run("violations are returned", func(t *testing.T) {
		t.Parallel()

		app := newExampleApp(
			internal.WithRuntime(internal.RuntimeCLI),
			internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					_ = next(c)
					return next(c)
				}
			}),
		)
		var out bytes.Buffer
		err := app.Dispatch(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), &out)

		var verr *internal.MiddlewareContractViolationError
		require.ErrorAs(t, err, &verr)
		var ec *internal.ErrorContext
		require.ErrorAs(t, err, &ec)
		require.Contains(t, out.String(), ec.ErrorID)
	})
}

// routesFunc adapts a function to internal.Handler.
type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }
