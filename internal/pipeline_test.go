package internal_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
)

func tracing(trace *[]string, name string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			*trace = append(*trace, name+":in")
			err := next(c)
			*trace = append(*trace, name+":out")
			return err
		}
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("runs middlewares in registration order", func(t *testing.T) {
		t.Parallel()

		var trace []string
		h := internal.Chain(func(c internal.Context) error {
			trace = append(trace, "handler")
			return nil
		}, tracing(&trace, "m1"), tracing(&trace, "m2"))

		require.NoError(t, h(newParamContext(nil, "")))
		require.Equal(t, []string{"m1:in", "m2:in", "handler", "m2:out", "m1:out"}, trace)
	})

	t.Run("no middlewares returns terminal", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		h := internal.Chain(func(internal.Context) error { return boom })
		require.ErrorIs(t, h(newParamContext(nil, "")), boom)
	})

	t.Run("short circuit skips inner layers", func(t *testing.T) {
		t.Parallel()

		denied := errors.New("denied")
		called := false
		h := internal.Chain(func(internal.Context) error {
			called = true
			return nil
		}, func(internal.HandlerFunc) internal.HandlerFunc {
			return func(internal.Context) error { return denied }
		})

		require.ErrorIs(t, h(newParamContext(nil, "")), denied)
		require.False(t, called)
	})

	t.Run("calling next twice is a violation", func(t *testing.T) {
		t.Parallel()

		calls := 0
		h := internal.Chain(func(internal.Context) error {
			calls++
			return nil
		}, func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				_ = next(c)
				return next(c)
			}
		})

		err := h(newParamContext(nil, ""))
		var verr *internal.MiddlewareContractViolationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, 0, verr.Layer)
		require.Equal(t, 2, verr.Calls)
		require.Equal(t, 1, calls)
	})

	t.Run("swallowed violation is still reported", func(t *testing.T) {
		t.Parallel()

		var trace []string
		h := internal.Chain(func(internal.Context) error {
			return nil
		}, tracing(&trace, "outer"), func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				_ = next(c)
				_ = next(c)
				return nil
			}
		})

		var verr *internal.MiddlewareContractViolationError
		require.ErrorAs(t, h(newParamContext(nil, "")), &verr)
		require.Equal(t, 1, verr.Layer)
	})

	t.Run("each request gets its own ledger", func(t *testing.T) {
		t.Parallel()

		h := internal.Chain(func(internal.Context) error { return nil },
			func(next internal.HandlerFunc) internal.HandlerFunc { return next },
			func(next internal.HandlerFunc) internal.HandlerFunc { return next },
		)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for range 20 {
			wg.Go(func() {
				errs <- h(newParamContext(nil, ""))
			})
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})
}
