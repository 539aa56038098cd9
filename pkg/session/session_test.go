package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/session"
)

type countingStore struct {
	*session.MemoryStore
	release chan struct{}
	loads   atomic.Int32
}

func (c *countingStore) Load(ctx context.Context, id string) (*session.Session, error) {
	c.loads.Add(1)
	if c.release != nil {
		<-c.release
	}
	return c.MemoryStore.Load(ctx, id)
}

type failingStore struct{ session.Store }

func (failingStore) Load(context.Context, string) (*session.Session, error) {
	return nil, session.ErrStore
}

func newManager(store session.Store, now *time.Time) *session.Manager {
	seq := 0
	return session.NewManager(store, session.Config{TTL: time.Hour},
		session.WithClock(func() time.Time { return *now }),
		session.WithIDGenerator(func() string { seq++; return "sid-" + string(rune('0'+seq)) }),
	)
}

func TestManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save then load", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(session.NewMemoryStore(), &now)

		s := m.New()
		require.True(t, s.IsNew())
		s.Set("theme", "dark")
		s.Authenticate("user-1")
		require.NoError(t, m.Save(ctx, s))
		require.False(t, s.IsDirty())
		require.False(t, s.IsNew())

		loaded, err := m.Load(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, "user-1", loaded.UserID)
		require.True(t, loaded.IsAuthenticated())
		require.Equal(t, "dark", session.ValueOr(loaded, "theme", "light"))
	})

	t.Run("clean sessions are not written", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(session.NewMemoryStore(), &now)

		s := m.New()
		require.NoError(t, m.Save(ctx, s))
		_, err := m.Load(ctx, s.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("expired sessions", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(session.NewMemoryStore(), &now)

		s := m.New()
		s.Set("k", "v")
		require.NoError(t, m.Save(ctx, s))

		now = now.Add(2 * time.Hour)
		_, err := m.Load(ctx, s.ID)
		require.ErrorIs(t, err, session.ErrExpired)

		fresh, err := m.LoadOrNew(ctx, s.ID)
		require.NoError(t, err)
		require.NotEqual(t, s.ID, fresh.ID)
		require.True(t, fresh.IsNew())
	})

	t.Run("destroy deletes", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(session.NewMemoryStore(), &now)

		s := m.New()
		s.Set("k", "v")
		require.NoError(t, m.Save(ctx, s))

		s.Destroy()
		require.NoError(t, m.Save(ctx, s))
		_, err := m.Load(ctx, s.ID)
		require.ErrorIs(t, err, session.ErrNotFound)

		c := m.Cookie(s)
		require.Equal(t, "sid", c.Name)
		require.Empty(t, c.Value)
		require.Equal(t, -1, c.MaxAge)
	})

	t.Run("store failures surface", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(failingStore{}, &now)
		_, err := m.LoadOrNew(ctx, "any")
		require.ErrorIs(t, err, session.ErrStore)
	})

	t.Run("concurrent loads share one lookup", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		store := &countingStore{MemoryStore: session.NewMemoryStore()}
		m := newManager(store, &now)

		s := m.New()
		s.Set("k", "v")
		require.NoError(t, m.Save(ctx, s))

		store.release = make(chan struct{})
		var wg sync.WaitGroup
		results := make([]*session.Session, 8)
		for i := range results {
			wg.Go(func() {
				loaded, err := m.Load(ctx, s.ID)
				if err == nil {
					results[i] = loaded
				}
			})
		}
		time.Sleep(50 * time.Millisecond)
		close(store.release)
		wg.Wait()

		require.Less(t, store.loads.Load(), int32(len(results)))
		for _, r := range results {
			require.NotNil(t, r)
		}
		results[0].Set("k", "changed")
		require.Equal(t, "v", session.ValueOr(results[1], "k", ""))
	})

	t.Run("cookie attributes", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		m := newManager(session.NewMemoryStore(), &now)
		c := m.Cookie(m.New())
		require.True(t, c.HttpOnly)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.Equal(t, "/", c.Path)
	})

	t.Run("signed cookies", func(t *testing.T) {
		t.Parallel()

		cm, err := cookie.New(cookie.Config{Secret: "0123456789abcdef0123456789abcdef"})
		require.NoError(t, err)
		m := session.NewManager(session.NewMemoryStore(), session.Config{}, session.WithCookies(cm))
		s := m.New()
		c := m.Cookie(s)
		require.NotEqual(t, s.ID, c.Value)

		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		require.Equal(t, s.ID, m.ID(r))

		r, _ = http.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: m.CookieName(), Value: s.ID})
		require.Empty(t, m.ID(r), "unsigned value is rejected")
	})
}

func TestValue(t *testing.T) {
	t.Parallel()

	_, err := session.Value[string](nil, "k")
	require.ErrorIs(t, err, session.ErrNotFound)

	now := time.Now()
	s := newManager(session.NewMemoryStore(), &now).New()
	s.Set("count", 3)

	n, err := session.Value[int](s, "count")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = session.Value[string](s, "count")
	require.True(t, errors.Is(err, session.ErrTypeMismatch))

	s.Delete("count")
	require.Equal(t, 7, session.ValueOr(s, "count", 7))
}
