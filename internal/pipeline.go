package internal

import (
	"sync"
)

// chainKey identifies the call ledger of one composed chain in the request context.
type chainKey struct{ _ byte }

// ledger counts continuation calls per layer for a single request.
type ledger struct {
	violation *MiddlewareContractViolationError
	calls     []int
	mu        sync.Mutex
}

func (l *ledger) enter(layer int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[layer]++
	if n := l.calls[layer]; n > 1 {
		v := &MiddlewareContractViolationError{Layer: layer, Calls: n}
		if l.violation == nil {
			l.violation = v
		}
		return v
	}
	return nil
}

func (l *ledger) err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.violation == nil {
		return nil
	}
	return l.violation
}

// Chain composes middlewares around terminal.
// The first middleware is the outermost: inbound order is registration order,
// outbound order is its reverse. The chain is built once and reused for every request.
func Chain(terminal HandlerFunc, mws ...Middleware) HandlerFunc {
	if len(mws) == 0 {
		return terminal
	}

	key := &chainKey{}
	h := guardNext(terminal, key, len(mws)-1)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
		if i > 0 {
			h = guardNext(h, key, i-1)
		}
	}

	return func(c Context) error {
		l := &ledger{calls: make([]int, len(mws))}
		c.Set(key, l)

		err := h(c)
		// a violation wins even when the offending middleware swallowed it
		if verr := l.err(); verr != nil {
			return verr
		}
		return err
	}
}

// guardNext wraps the continuation handed to the middleware at layer.
func guardNext(next HandlerFunc, key *chainKey, layer int) HandlerFunc {
	return func(c Context) error {
		if l, ok := c.Get(key).(*ledger); ok {
			if err := l.enter(layer); err != nil {
				return err
			}
		}
		return next(c)
	}
}
