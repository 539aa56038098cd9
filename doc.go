// Package runway is the HTTP dispatch core of a web application: it turns every
// incoming request into exactly one response through a middleware pipeline, a
// route table, argument binding and a single error capture path.
//
// # Quick Start
//
// Create an application with runway.New, configure it with options, and call
// Run to start the HTTP server:
//
//	app := runway.New(
//	    runway.WithMiddleware(middlewares.RequestID()),
//	    runway.WithHandlers(handlers.NewPages()),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes. A route target is
// either a [HandlerFunc] or any function returning error or (T, error). Its
// parameters are bound per request from path parameters, the query string and
// the service container:
//
//	type greeting struct {
//	    Name string `query:"name" default:"world"`
//	}
//
//	func (h *Pages) Routes(r runway.Router) {
//	    r.GET("/", func(g greeting) (string, error) {
//	        return "Hello, " + g.Name + "!", nil
//	    })
//	    r.Named("item").GET("/items/{id:\\d+}", h.item)
//	}
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns. Each middleware
// calls next at most once; calling it twice is reported as a
// [MiddlewareContractViolationError]:
//
//	func Auth(next runway.HandlerFunc) runway.HandlerFunc {
//	    return func(c runway.Context) error {
//	        if runway.RequestID(c) == "" {
//	            return runway.ErrUnauthorized("missing request id")
//	        }
//	        return next(c)
//	    }
//	}
//
// # Errors
//
// Any error or panic is captured once: it gets an error ID, goes to the logger
// and every configured [Sink], and is rendered with its status. Errors with a
// StatusCode method choose the status; everything else is a 500. In production
// the body carries the status text and the error ID only. With
// [WithDeveloperMode] it carries the message, the cause chain and the stack.
//
// # Configuration
//
// [LoadConfig] reads APP_RUNTIME, APP_DEBUG, HTTP_ADDR and SHUTDOWN_TIMEOUT:
//
//	cfg, err := runway.LoadConfig()
//	app := runway.New(append(cfg.Options(), runway.WithHandlers(h))...)
//	err = app.Run(cfg.Addr, cfg.RunOptions()...)
//
// # Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests and runs
// shutdown hooks in order:
//
//	app.Run(":8080",
//	    runway.ShutdownTimeout(30*time.Second),
//	    runway.ShutdownHook(func(ctx context.Context) error { return q.Stop(ctx) }),
//	)
//
// # Command-line dispatch
//
// [App.Dispatch] runs a request through the same pipeline without a listener and
// writes the response to an io.Writer. With [RuntimeCLI] errors render as plain
// text.
package runway
