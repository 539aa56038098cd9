package internal

// Handler declares routes on a router.
//
// Example:
//
//	type ItemsHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *ItemsHandler) Routes(r runway.Router) {
//	    r.Named("items.show").GET("/items/{id:\d+}", h.show)
//	    r.POST("/items", h.create)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the native signature for route handlers.
// Returning a non-nil error hands the failure to the error capturer.
//
// Routes also accept any function returning error or (T, error); its arguments are
// bound from path parameters, the query string and registered services.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// A middleware may short-circuit, call next exactly once, or post-process after next.
// Calling next twice fails the request with MiddlewareContractViolationError.
//
// Example:
//
//	func Auth(next runway.HandlerFunc) runway.HandlerFunc {
//	    return func(c runway.Context) error {
//	        if c.Header("Authorization") == "" {
//	            return runway.ErrUnauthorized("login required")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders captured failures in place of the built-in renderers.
// It runs after the failure was captured, so ErrorID(c) is available.
// Returning an error, or writing nothing, falls back to the built-in renderers.
type ErrorHandler func(Context, error) error
