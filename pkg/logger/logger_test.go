package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/logger"
)

type tenantKey struct{}

func tenantExtractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(tenantKey{}).(string); ok {
		return slog.String("tenant", v), true
	}
	return slog.Attr{}, false
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("json with extractors and component", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Output: &buf, Component: "api"}, tenantExtractor, nil)

		ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
		log.InfoContext(ctx, "hello", "n", 1)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "hello", rec["msg"])
		require.Equal(t, "acme", rec["tenant"])
		require.Equal(t, "api", rec["component"])
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Output: &buf, Level: "warn", Format: "text"})
		log.Info("dropped")
		require.Zero(t, buf.Len())

		log.Warn("kept")
		require.Contains(t, buf.String(), "msg=kept")
	})

	t.Run("no extractor match", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Output: &buf}, tenantExtractor)
		log.Info("plain")
		require.NotContains(t, buf.String(), "tenant")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("loud"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestLogHandlerDecorator(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), tenantExtractor)
	log := slog.New(h)

	ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
	log.InfoContext(ctx, "explicit", "tenant", "globex")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "globex", rec["tenant"], "explicit attributes win")

	base := slog.NewJSONHandler(&buf, nil)
	require.Same(t, base, logger.NewLogHandlerDecorator(base, nil))
}
