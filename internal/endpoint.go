package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/route"
)

// endpoint is the handler stored in the route table: the bound handler wrapped in its
// route-level middleware chain.
type endpoint struct {
	handler HandlerFunc
	source  any
}

var (
	contextType        = reflect.TypeFor[Context]()
	stdContextType     = reflect.TypeFor[context.Context]()
	requestType        = reflect.TypeFor[*http.Request]()
	responseWriterType = reflect.TypeFor[http.ResponseWriter]()
	responseType       = reflect.TypeFor[*Response]()
	loggerType         = reflect.TypeFor[*slog.Logger]()
	paramsType         = reflect.TypeFor[route.Params]()
)

// isPrimitive reports the argument types the kernel supplies itself.
func isPrimitive(t reflect.Type) bool {
	switch t {
	case contextType, stdContextType, requestType, responseWriterType, responseType, loggerType, paramsType:
		return true
	}
	return false
}

func primitives(c Context) func(reflect.Type) (reflect.Value, bool) {
	return func(t reflect.Type) (reflect.Value, bool) {
		var v any
		switch t {
		case contextType:
			return reflect.ValueOf(&c).Elem(), true
		case stdContextType:
			ctx := c.Context()
			return reflect.ValueOf(&ctx).Elem(), true
		case requestType:
			v = c.Request()
		case responseWriterType:
			w := c.Response()
			return reflect.ValueOf(&w).Elem(), true
		case responseType:
			v = c.ResponseWriter()
		case loggerType:
			v = c.Logger()
		case paramsType:
			v = c.Params()
		default:
			return reflect.Value{}, false
		}
		return reflect.ValueOf(v), true
	}
}

// newEndpoint turns h into an endpoint. h is a HandlerFunc, an http.Handler, or any
// function returning error or (T, error) whose arguments the binder can supply.
func (a *App) newEndpoint(h any, mws []Middleware) (*endpoint, error) {
	inv, err := a.invoker(h)
	if err != nil {
		return nil, err
	}
	return &endpoint{handler: Chain(inv, mws...), source: h}, nil
}

func (a *App) invoker(h any) (HandlerFunc, error) {
	switch fn := h.(type) {
	case HandlerFunc:
		return fn, nil
	case func(Context) error:
		return fn, nil
	case http.Handler:
		return adaptHTTPHandler(fn), nil
	case func(http.ResponseWriter, *http.Request):
		return adaptHTTPHandler(http.HandlerFunc(fn)), nil
	}

	sig, err := binder.Inspect(h, isPrimitive)
	if err != nil {
		return nil, err
	}

	return func(c Context) error {
		args, err := sig.Bind(binder.Input{
			Request:   c.Request(),
			Params:    c.Params(),
			Primitive: primitives(c),
		}, a.resolver)
		if err != nil {
			return err
		}

		out, err := sig.Call(args)
		if err != nil {
			return err
		}
		if !sig.ReturnsValue() {
			return nil
		}
		return writeResult(c, out)
	}, nil
}

// writeResult writes the value returned by a (T, error) handler unless the handler
// already wrote a response.
func writeResult(c Context, v any) error {
	if c.Written() {
		return nil
	}
	switch out := v.(type) {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case string:
		return c.String(http.StatusOK, out)
	case []byte:
		return c.Blob(http.StatusOK, "application/octet-stream", out)
	case Component:
		return c.Render(http.StatusOK, out)
	case io.Reader:
		c.SetHeader("Content-Type", "application/octet-stream")
		c.Response().WriteHeader(http.StatusOK)
		_, err := io.Copy(c.Response(), out)
		return err
	default:
		return c.JSON(http.StatusOK, out)
	}
}

// adaptHTTPHandler runs a net/http handler against the buffered response.
func adaptHTTPHandler(h http.Handler) HandlerFunc {
	return func(c Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
