package runway

import (
	"context"

	"github.com/dmitrymomot/runway/internal"
)

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns the path parameter converted to T, or the zero T.
//
// Example:
//
//	id := runway.Param[int64](c, "id")
func Param[T any](c Context, name string) T {
	return internal.Param[T](c, name)
}

// ParamE is Param reporting conversion failures. The error renders as 400.
func ParamE[T any](c Context, name string) (T, error) {
	return internal.ParamE[T](c, name)
}

// Query returns the query parameter converted to T, or the zero T.
func Query[T any](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns the query parameter converted to T, or defaultValue
// when it is empty or does not convert.
func QueryDefault[T any](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ErrorID returns the error ID of the failure being rendered.
func ErrorID(c Context) string {
	return internal.ErrorID(c)
}

// RequestID returns the ID stored by the request ID middleware.
func RequestID(ctx context.Context) string {
	return internal.RequestID(ctx)
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a cookie value.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromParam reads a path parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromBearerToken reads the token of an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// FromContext reads a string stored in the request context under key.
func FromContext(key any) ExtractorSource { return internal.FromContext(key) }
