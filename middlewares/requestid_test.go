package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/middlewares"
	"github.com/dmitrymomot/runway/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a UUIDv7 when none is provided", func(t *testing.T) {
		t.Parallel()

		var got string
		w := serveWith(t, newRequest("/test"), func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return c.NoContent(http.StatusOK)
		}, middlewares.RequestID())

		parsed, err := uuid.Parse(got)
		require.NoError(t, err)
		require.Equal(t, uuid.Version(7), parsed.Version())
		require.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("reuses the incoming header", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Request-ID", "upstream-id")

		var got string
		w := serveWith(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		}, middlewares.RequestID())
		require.Equal(t, "upstream-id", got)
		require.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))
	})

	t.Run("header order decides", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Correlation-ID", "correlation")
		req.Header.Set("X-Trace", "trace")

		var got string
		serveWith(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		}, middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Trace", "X-Correlation-ID")))
		require.Equal(t, "trace", got)
	})

	t.Run("falls back to correlation header", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Correlation-ID", "correlation")

		var got string
		serveWith(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		}, middlewares.RequestID())
		require.Equal(t, "correlation", got)
	})

	t.Run("oversized header is replaced", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Request-ID", strings.Repeat("a", 200))

		var got string
		serveWith(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" })))
		require.Equal(t, "generated", got)
	})

	t.Run("header with control characters is replaced", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Request-ID", "abc\x01def")

		var got string
		serveWith(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "clean" })))
		require.Equal(t, "clean", got)
	})

	t.Run("custom response header", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, newRequest("/test"), func(internal.Context) error { return nil },
			middlewares.RequestID(
				middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
				middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
			))
		require.Equal(t, "fixed", w.Header().Get("X-Trace-ID"))
		require.Empty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("error responses keep the header", func(t *testing.T) {
		t.Parallel()

		w := serveWith(t, newRequest("/test"), func(internal.Context) error {
			return internal.ErrNotFound("no such thing")
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid-1" })))
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("c.Error carries the request id", func(t *testing.T) {
		t.Parallel()

		var herr *internal.HTTPError
		serveWith(t, newRequest("/test"), func(c internal.Context) error {
			herr = c.Error(http.StatusConflict, "taken")
			return herr
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid-2" })))
		require.NotNil(t, herr)
		require.Equal(t, "rid-2", herr.RequestID)
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()

		got := "unset"
		serveWith(t, newRequest("/test"), func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		})
		require.Empty(t, got)
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	ext := middlewares.RequestIDExtractor()

	_, ok := ext(context.Background())
	require.False(t, ok)

	ctx := context.WithValue(context.Background(), internal.RequestIDKey{}, "abc")
	attr, ok := ext(ctx)
	require.True(t, ok)
	require.Equal(t, "request_id", attr.Key)
	require.Equal(t, "abc", attr.Value.String())

	var buf bytes.Buffer
	log := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), ext))
	log.InfoContext(ctx, "hello")
	require.Contains(t, buf.String(), `"request_id":"abc"`)
}
