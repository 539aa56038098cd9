package middlewares

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/id"
	"github.com/dmitrymomot/runway/pkg/logger"
)

// DefaultRequestIDHeaders are checked in order for an ID set upstream.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

const maxRequestIDLength = 128

// RequestIDConfig configures RequestID.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders replaces the inbound headers RequestID trusts.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Headers = headers }
}

// WithRequestIDGenerator replaces the UUIDv7 generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Generator = gen }
}

// WithRequestIDResponseHeader renames the echoed response header.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.ResponseHeader = header }
}

// RequestID tags every request with an ID. The first acceptable inbound header
// wins, otherwise Generator is called. The ID is stored under
// internal.RequestIDKey, where error reports pick it up, and echoed as a
// response header that survives error rendering.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.NewUUIDv7,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	inbound := func(c internal.Context) (string, bool) {
		for _, h := range cfg.Headers {
			if v := strings.TrimSpace(c.Header(h)); acceptableRequestID(v) {
				return v, true
			}
		}
		return "", false
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID, ok := inbound(c)
			if !ok {
				reqID = cfg.Generator()
			}
			c.Set(internal.RequestIDKey{}, reqID)
			c.SetHeader(cfg.ResponseHeader, reqID)
			return next(c)
		}
	}
}

func acceptableRequestID(v string) bool {
	return v != "" && len(v) <= maxRequestIDLength && !lo.ContainsBy([]byte(v), func(b byte) bool {
		return b < 0x20 || b == 0x7f
	})
}

// GetRequestID returns the ID RequestID assigned, or "".
func GetRequestID(c internal.Context) string {
	return internal.RequestID(c.Context())
}

// RequestIDExtractor adds request_id to log records emitted with a request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		rid := internal.RequestID(ctx)
		return slog.String("request_id", rid), rid != ""
	}
}
