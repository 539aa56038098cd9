package id_test

import (
	"regexp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("generates valid length", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, id.NewULID(), 26, "ULID should be exactly 26 characters")
	})

	t.Run("uses only Crockford Base32 alphabet", func(t *testing.T) {
		t.Parallel()

		v := id.NewULID()
		validChars := regexp.MustCompile(`^[0-9A-HJ-NP-TV-Z]+$`)
		require.True(t, validChars.MatchString(v), "ULID contains invalid characters: %s", v)
	})

	t.Run("monotonic within one millisecond", func(t *testing.T) {
		t.Parallel()

		at := time.Now()
		ids := make([]string, 100)
		for i := range ids {
			ids[i] = id.ULIDAt(at)
		}
		require.True(t, slices.IsSorted(ids))
		require.Len(t, slices.Compact(slices.Clone(ids)), len(ids))
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		t.Parallel()

		const (
			workers = 8
			perG    = 250
		)
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, workers*perG)
			wg   sync.WaitGroup
		)
		for range workers {
			wg.Go(func() {
				for range perG {
					v := id.NewULID()
					mu.Lock()
					seen[v] = struct{}{}
					mu.Unlock()
				}
			})
		}
		wg.Wait()
		require.Len(t, seen, workers*perG)
	})

	t.Run("round-trips the timestamp", func(t *testing.T) {
		t.Parallel()

		at := time.UnixMilli(1_700_000_000_000)
		got, err := id.ParseULID(id.ULIDAt(at))
		require.NoError(t, err)
		require.True(t, at.Equal(got))

		_, err = id.ParseULID("not-a-ulid")
		require.Error(t, err)
	})
}

func TestNewUUID(t *testing.T) {
	t.Parallel()

	v4, err := uuid.Parse(id.NewUUID())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), v4.Version())

	v7, err := uuid.Parse(id.NewUUIDv7())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), v7.Version())

	require.NotEqual(t, id.NewUUID(), id.NewUUID())
}
