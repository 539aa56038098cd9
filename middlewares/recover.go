package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/failure"
)

// RecoverConfig configures Recover.
type RecoverConfig struct {
	DisablePrintStack bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverDisablePrintStack leaves the stack out of the panic log record.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) { cfg.DisablePrintStack = true }
}

// Recover converts a panic below it into a *PanicError returned to the layers
// above. The dispatch kernel already recovers panics; Recover is for metrics or
// tracing middlewares registered before it that need to see them as errors.
// http.ErrAbortHandler is re-raised untouched.
func Recover(opts ...RecoverOption) internal.Middleware {
	var cfg RecoverConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				v := recover()
				switch v {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(v)
				}

				pe := failure.Recovered(v)
				attrs := []any{"panic", v, "origin", pe.Origin}
				if !cfg.DisablePrintStack {
					attrs = append(attrs, "stack", pe.Stack)
				}
				c.LogError("handler panicked", attrs...)
				err = pe
			}()
			return next(c)
		}
	}
}
