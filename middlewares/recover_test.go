package middlewares_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("returns PanicError to outer layers", func(t *testing.T) {
		t.Parallel()

		err := capture(t, newRequest("/test"), middlewares.Recover(), func(internal.Context) error {
			panic("something went wrong")
		})

		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Equal(t, "something went wrong", pe.Value)
		require.Contains(t, pe.Origin, "recover_test.go")
		require.NotEmpty(t, pe.Stack)
	})

	t.Run("error panics unwrap", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		err := capture(t, newRequest("/test"), middlewares.Recover(middlewares.WithRecoverDisablePrintStack()), func(internal.Context) error {
			panic(boom)
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("handler error")
		err := capture(t, newRequest("/test"), middlewares.Recover(), func(internal.Context) error {
			return boom
		})
		require.Same(t, boom, err)
	})

	t.Run("response is a 500", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, newRequest("/test"), func(internal.Context) error {
			var m map[string]int
			m["x"] = 1
			return nil
		}, middlewares.Recover())
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotEmpty(t, w.Header().Get("X-Error-Id"))
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		t.Parallel()

		require.PanicsWithValue(t, http.ErrAbortHandler, func() {
			serveWith(t, newRequest("/test"), func(internal.Context) error {
				panic(http.ErrAbortHandler)
			}, middlewares.Recover())
		})
	})
}
