package container_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/container"
)

type config struct{ dsn string }

type repo struct{ cfg *config }

type clock interface{ Now() int }

type fixedClock int

func (f fixedClock) Now() int { return int(f) }

func param[T any]() binder.Param {
	return binder.Param{Type: reflect.TypeFor[T](), Source: binder.SourceService}
}

func TestContainer(t *testing.T) {
	t.Parallel()

	t.Run("resolves provided types lazily and once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		c := container.New()
		require.NoError(t, c.Supply(&config{dsn: "postgres://"}))
		require.NoError(t, c.Provide(func(cfg *config) *repo {
			calls++
			return &repo{cfg: cfg}
		}))
		require.Zero(t, calls)

		v, err := c.Resolve(context.Background(), param[*repo]())
		require.NoError(t, err)
		require.Equal(t, "postgres://", v.Interface().(*repo).cfg.dsn)

		again, err := c.Resolve(context.Background(), param[*repo]())
		require.NoError(t, err)
		require.Same(t, v.Interface(), again.Interface())
		require.Equal(t, 1, calls)
	})

	t.Run("unknown type is not configured", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		_, err := c.Resolve(context.Background(), param[*repo]())
		require.ErrorIs(t, err, binder.ErrNotConfigured)
		require.False(t, c.Has(reflect.TypeFor[*repo]()))
	})

	t.Run("constructor failure is not a configuration gap", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("dial tcp: refused")
		c := container.New()
		require.NoError(t, c.Provide(func() (*repo, error) { return nil, boom }))
		require.True(t, c.Has(reflect.TypeFor[*repo]()))

		_, err := c.Resolve(context.Background(), param[*repo]())
		require.Error(t, err)
		require.NotErrorIs(t, err, binder.ErrNotConfigured)
		require.ErrorIs(t, err, boom)
	})

	t.Run("supply as interface", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		require.NoError(t, container.SupplyAs[clock](c, fixedClock(7)))

		v, err := c.Resolve(context.Background(), param[clock]())
		require.NoError(t, err)
		require.Equal(t, 7, v.Interface().(clock).Now())
	})

	t.Run("rejects non-function constructors", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		require.ErrorIs(t, c.Provide(42), container.ErrInvalidConstructor)
		require.ErrorIs(t, c.Supply(nil), container.ErrInvalidConstructor)
	})

	t.Run("invoke", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		require.NoError(t, c.Supply(&config{dsn: "x"}))

		var got string
		require.NoError(t, c.Invoke(func(cfg *config) { got = cfg.dsn }))
		require.Equal(t, "x", got)
	})

	t.Run("works as binder resolver", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		require.NoError(t, c.Supply(&config{dsn: "bound"}))

		sig, err := binder.Inspect(func(cfg *config) (string, error) { return cfg.dsn, nil }, nil)
		require.NoError(t, err)
		args, err := sig.Bind(binder.Input{}, c)
		require.NoError(t, err)
		out, err := sig.Call(args)
		require.NoError(t, err)
		require.Equal(t, "bound", out)
	})
}
