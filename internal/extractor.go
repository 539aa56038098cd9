package internal

import "strings"

// ExtractorSource reads one value from a request; ok is false when it is absent or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries its sources in order. Middlewares use it to find a request ID,
// a language or a token without hard-coding where it comes from.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor. Nil sources are skipped.
func NewExtractor(sources ...ExtractorSource) Extractor {
	e := Extractor{sources: make([]ExtractorSource, 0, len(sources))}
	for _, src := range sources {
		if src != nil {
			e.sources = append(e.sources, src)
		}
	}
	return e
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Len reports the number of sources.
func (e Extractor) Len() int { return len(e.sources) }

func present(v string) (string, bool) { return v, v != "" }

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Header(name)) }
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Query(name)) }
}

// FromCookie reads a cookie value.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return present(v)
	}
}

// FromParam reads a path parameter. It finds nothing in global middlewares that run
// before the request is routed.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Param(name)) }
}

// FromBearerToken reads the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		scheme, token, ok := strings.Cut(c.Header("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		return present(strings.TrimSpace(token))
	}
}

// FromContext reads a string stored in the request context under key.
func FromContext(key any) ExtractorSource {
	return func(c Context) (string, bool) {
		v, _ := c.Get(key).(string)
		return present(v)
	}
}
