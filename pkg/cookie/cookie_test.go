package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/cookie"
)

const secret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, cfg cookie.Config) *cookie.Manager {
	t.Helper()
	m, err := cookie.New(cfg)
	require.NoError(t, err)
	return m
}

// replay copies the cookies written to rec onto a fresh request.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New(cookie.Config{Secret: "short"})
		require.ErrorIs(t, err, cookie.ErrBadSecret)
	})

	t.Run("attributes", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, cookie.Config{Domain: "example.com", SameSite: "strict", Secure: true})
		c := m.Cookie("a", "b", 60)
		require.Equal(t, "/", c.Path)
		require.Equal(t, "example.com", c.Domain)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite)
		require.True(t, c.Secure)
		require.True(t, c.HttpOnly)
		require.False(t, m.Signing())
	})
}

func TestPlain(t *testing.T) {
	t.Parallel()
	m := newManager(t, cookie.Config{})

	_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "missing")
	require.ErrorIs(t, err, cookie.ErrNotFound)

	rec := httptest.NewRecorder()
	m.Set(rec, "lang", "en", 0)
	v, err := m.Get(replay(rec), "lang")
	require.NoError(t, err)
	require.Equal(t, "en", v)

	rec = httptest.NewRecorder()
	m.Delete(rec, "lang")
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	require.ErrorIs(t, m.SetSigned(rec, "x", "y", 0), cookie.ErrNoSecret)
	require.ErrorIs(t, m.SetEncrypted(rec, "x", "y", 0), cookie.ErrNoSecret)
}

func TestSigned(t *testing.T) {
	t.Parallel()
	m := newManager(t, cookie.Config{Secret: secret})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "theme", "dark", 0))
		v, err := m.GetSigned(replay(rec), "theme")
		require.NoError(t, err)
		require.Equal(t, "dark", v)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		signed, err := m.Sign("user-1")
		require.NoError(t, err)
		forged, _ := m.Sign("user-2")
		_, sig, _ := strings.Cut(signed, ".")
		value, _, _ := strings.Cut(forged, ".")

		_, err = m.Verify(value + "." + sig)
		require.ErrorIs(t, err, cookie.ErrBadSig)
		_, err = m.Verify("no-dot")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("other secret", func(t *testing.T) {
		t.Parallel()
		signed, err := m.Sign("v")
		require.NoError(t, err)
		other := newManager(t, cookie.Config{Secret: strings.Repeat("z", 32)})
		_, err = other.Verify(signed)
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})
}

func TestEncrypted(t *testing.T) {
	t.Parallel()
	m := newManager(t, cookie.Config{Secret: secret})

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetEncrypted(rec, "token", "s3cret", 0))
	raw := rec.Result().Cookies()[0].Value
	require.NotContains(t, raw, "s3cret")

	v, err := m.GetEncrypted(replay(rec), "token")
	require.NoError(t, err)
	require.Equal(t, "s3cret", v)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "other", Value: raw})
	_, err = m.GetEncrypted(r, "other")
	require.ErrorIs(t, err, cookie.ErrDecrypt, "value is bound to its cookie name")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	_, err = m.GetEncrypted(r, "token")
	require.ErrorIs(t, err, cookie.ErrDecrypt)
}
