// Package internal provides the core types and implementation of the runway
// dispatch kernel.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/runway" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: owns the route table, the global middleware chain, the service
//     container, the error capturer and the emitter
//   - Context: request/response access, route parameters, rendering helpers
//   - Router: declares routes, groups and named routes
//   - Handler: types that declare routes on a router
//   - HandlerFunc: the uniform signature every endpoint is normalized to
//   - Middleware: wraps a HandlerFunc; calls next at most once
//   - Response: the buffered response a request writes into
//
// # Request lifecycle
//
// Every request, whether it arrives through ServeHTTP or Dispatch, goes
// through the same steps:
//
//  1. A buffered Response is bound to the transport.
//  2. The global middleware chain runs, ending in the router.
//  3. The router matches the path and runs the endpoint's own chain.
//  4. An error or panic anywhere is captured once, logged with an error ID,
//     and rendered into the response.
//  5. The response is emitted to the transport exactly once.
//
// Handlers that write through Flush start streaming; from then on the
// response cannot be replaced and late failures are only logged.
//
// # Handlers
//
// Any function returning error or (T, error) can be registered. Arguments are
// resolved by type and name:
//
//	type itemParams struct {
//	    ID   int    `param:"id"`
//	    Sort string `query:"sort" default:"asc"`
//	}
//
//	r.GET("/items/{id:\\d+}", func(ctx context.Context, p itemParams, repo *Repo) (*Item, error) {
//	    return repo.Find(ctx, p.ID)
//	})
//
// Context, *http.Request, http.ResponseWriter, *Response, *slog.Logger and
// route.Params are supplied by the kernel. Other types come from the service
// container. Returned values are written as text, bytes, HTML components or
// JSON.
//
// # Runtimes
//
// RuntimeHTTP serves network requests. RuntimeCLI dispatches a single
// synthetic request and writes only the body to the output stream, with
// plain-text errors.
package internal
