package internal

import (
	"reflect"

	"github.com/dmitrymomot/runway/pkg/binder"
)

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns the path parameter converted to T, or the zero T if it is missing
// or does not convert. Conversion follows the handler argument binding rules.
func Param[T any](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// ParamE is Param reporting conversion failures as *binder.ArgumentCoercionError,
// which renders as 400 Bad Request when returned from a handler.
func ParamE[T any](c Context, name string) (T, error) {
	raw := c.Param(name)
	v, err := convertParam[T](raw)
	if err != nil {
		return v, &binder.ArgumentCoercionError{Name: name, Value: raw, Type: reflect.TypeFor[T](), Err: err}
	}
	return v, nil
}

// Query returns the query parameter converted to T, or the zero T.
func Query[T any](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T any](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, err := convertParam[T](raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to T.
func convertParam[T any](raw string) (T, error) {
	var zero T
	v, err := binder.Coerce(raw, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}
