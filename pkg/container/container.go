// Package container provides the service resolver used by the argument binder.
//
// It is a thin layer over go.uber.org/dig: constructors are provided once at startup, values are
// built lazily on first use and cached as singletons.
//
//	c := container.New()
//	_ = c.Provide(db.Provider(cfg), users.NewRepository)
//	_ = container.SupplyAs[mailer.Sender](c, sender)
//
// Resolve reports binder.ErrNotConfigured for types nobody provides, so the binder can fall back to
// parameter defaults, and returns the constructor's error when construction fails.
package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"

	"github.com/dmitrymomot/runway/pkg/binder"
)

// ErrInvalidConstructor is returned when a constructor is not a function.
var ErrInvalidConstructor = errors.New("container: constructor must be a function")

var errorType = reflect.TypeFor[error]()

// Container resolves handler services.
type Container struct {
	dig      *dig.Container
	provided map[reflect.Type]struct{}
	cache    map[reflect.Type]reflect.Value
	mu       sync.RWMutex
}

// New creates an empty container.
func New() *Container {
	return &Container{
		dig:      dig.New(),
		provided: make(map[reflect.Type]struct{}),
		cache:    make(map[reflect.Type]reflect.Value),
	}
}

// Provide registers constructors. Each constructor's non-error results become resolvable types.
func (c *Container) Provide(constructors ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ctor := range constructors {
		t := reflect.TypeOf(ctor)
		if t == nil || t.Kind() != reflect.Func {
			return fmt.Errorf("%w: got %T", ErrInvalidConstructor, ctor)
		}
		if err := c.dig.Provide(ctor); err != nil {
			return fmt.Errorf("container: provide %s: %w", t, err)
		}
		for i := range t.NumOut() {
			if out := t.Out(i); out != errorType {
				c.provided[out] = struct{}{}
			}
		}
	}
	return nil
}

// Supply registers ready-made values under their dynamic types.
func (c *Container) Supply(values ...any) error {
	for _, v := range values {
		if v == nil {
			return fmt.Errorf("%w: cannot supply nil", ErrInvalidConstructor)
		}
		if err := c.Provide(valueConstructor(reflect.ValueOf(v), reflect.TypeOf(v))); err != nil {
			return err
		}
	}
	return nil
}

// SupplyAs registers v under the type T, typically an interface.
func SupplyAs[T any](c *Container, v T) error {
	return c.Provide(valueConstructor(reflect.ValueOf(&v).Elem(), reflect.TypeFor[T]()))
}

// Invoke runs fn with its arguments built by the container.
func (c *Container) Invoke(fn any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dig.Invoke(fn)
}

// Has reports whether a provider exists for t.
func (c *Container) Has(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.provided[t]
	return ok
}

// Resolve implements binder.Resolver.
func (c *Container) Resolve(_ context.Context, p binder.Param) (reflect.Value, error) {
	c.mu.RLock()
	v, cached := c.cache[p.Type]
	_, provided := c.provided[p.Type]
	c.mu.RUnlock()

	if cached {
		return v, nil
	}
	if !provided {
		return reflect.Value{}, fmt.Errorf("container: %s: %w", p.Type, binder.ErrNotConfigured)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache[p.Type]; ok {
		return v, nil
	}

	var out reflect.Value
	sink := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{p.Type}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			out = args[0]
			return nil
		},
	)
	if err := c.dig.Invoke(sink.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("container: build %s: %w", p.Type, dig.RootCause(err))
	}
	c.cache[p.Type] = out
	return out, nil
}

func valueConstructor(v reflect.Value, t reflect.Type) any {
	return reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{t}, false),
		func([]reflect.Value) []reflect.Value { return []reflect.Value{v} },
	).Interface()
}
