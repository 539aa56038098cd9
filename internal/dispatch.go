package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrymomot/runway/pkg/failure"
	"github.com/dmitrymomot/runway/pkg/route"
)

// serveHTTP is the dispatch kernel behind the outer mux.
// Middleware contract violations and double emission are programmer errors: the
// client gets the rendered 500 when possible, then the captured error is re-raised.
func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	err := a.serve(newHTTPTransport(w, r), r)
	if err == nil || IsEmissionError(err, ReasonNotWritable) {
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	panic(err)
}

// Dispatch runs req through the kernel and writes the response to out.
// Under RuntimeHTTP out receives the HTTP/1.1 wire form; under RuntimeCLI only the body.
// Failures handled by the error capturer are rendered into out and yield a nil error.
// Programmer errors and transport failures are returned as *ErrorContext values that
// unwrap to *MiddlewareContractViolationError or *EmissionError.
func (a *App) Dispatch(ctx context.Context, req *http.Request, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.WithContext(ctx)

	t := newStreamTransport(out, a.runtime)
	err := a.serve(t, req)
	if cerr := t.Close(); cerr != nil && err == nil {
		err = a.capturer.Capture(&EmissionError{Reason: ReasonNotWritable, Err: cerr}, req)
	}
	return err
}

// serve runs one request against t.
func (a *App) serve(t Transport, r *http.Request) error {
	resp := NewResponse(a.maxBody)
	a.emitter.bind(resp, t)
	c := newContext(r, resp, a)

	var programmerErr error
	if err := a.run(c); err != nil {
		ec := a.capturer.Capture(err, c.Request())

		var violation *MiddlewareContractViolationError
		if errors.As(err, &violation) {
			programmerErr = ec
		}
		if resp.Streaming() {
			// status and headers are gone; the failure is only reported
			return programmerErr
		}
		a.renderError(c, ec)
	}

	if resp.Streaming() {
		return programmerErr
	}
	if err := a.emitter.Emit(resp, t); err != nil {
		return a.capturer.Capture(err, c.Request())
	}
	return programmerErr
}

// run executes the global chain, turning panics into failures.
func (a *App) run(c *requestContext) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err = failure.Recovered(v)
		}
	}()
	return a.chain(c)
}

// route is the terminal handler of the global chain: match, then run the endpoint.
func (a *App) route(c Context) error {
	r := c.Request()
	m, err := a.router.MatchURL(r.Method, r.URL)
	if err != nil {
		return err
	}
	c.Set(matchKey{}, m)
	return m.Route.Definition.Handler.handler(c)
}

// renderError writes the error response for ec, preferring the custom handlers.
func (a *App) renderError(c *requestContext, ec *ErrorContext) {
	c.Set(errorIDKey{}, ec.ErrorID)

	if h := a.customErrorHandler(ec); h != nil && c.response.Reset() {
		var hd headerer
		if errors.As(ec.err, &hd) {
			for k, v := range hd.Header() {
				c.response.Header()[k] = v
			}
		}
		c.response.Header().Set("X-Error-Id", ec.ErrorID)

		err := a.callErrorHandler(h, c, ec)
		if err == nil && c.response.Written() {
			return
		}
		if err != nil {
			a.logger.WarnContext(c.Context(), "custom error handler failed", "error_id", ec.ErrorID, "error", err)
		}
	}

	a.capturer.Render(ec, c.Request(), c.response)
}

func (a *App) customErrorHandler(ec *ErrorContext) ErrorHandler {
	var (
		notMatched *route.NotMatchedError
		notAllowed *route.MethodNotAllowedError
	)
	switch {
	case a.notFoundHandler != nil && errors.As(ec.err, &notMatched):
		return func(c Context, _ error) error { return a.notFoundHandler(c) }
	case a.methodNotAllowedHandler != nil && errors.As(ec.err, &notAllowed):
		return func(c Context, _ error) error { return a.methodNotAllowedHandler(c) }
	default:
		return a.errorHandler
	}
}

func (a *App) callErrorHandler(h ErrorHandler, c Context, ec *ErrorContext) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("error handler panicked: %w", failure.Recovered(v))
		}
	}()
	return h(c, ec.err)
}
