package middlewares_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/middlewares"
	"github.com/dmitrymomot/runway/pkg/i18n"
)

func newBundle(t *testing.T) *i18n.Bundle {
	t.Helper()

	b, err := i18n.New(
		i18n.WithDefaultLanguage("en"),
		i18n.WithTranslations("en", map[string]any{
			"hello": "Hello",
			"auth":  map[string]any{"login": "Sign in"},
		}),
		i18n.WithTranslations("pl", map[string]any{
			"hello": "Cześć",
			"auth":  map[string]any{"login": "Zaloguj się"},
		}),
		i18n.WithTranslations("de", map[string]any{
			"hello": "Hallo",
		}),
	)
	require.NoError(t, err)
	return b
}

func TestI18n(t *testing.T) {
	t.Parallel()

	b := newBundle(t)

	resolve := func(t *testing.T, req *http.Request, opts ...middlewares.I18nOption) (lang, hello string) {
		t.Helper()
		serveWith(t, req, func(c internal.Context) error {
			lang = middlewares.GetLanguage(c)
			hello = c.T("hello")
			return nil
		}, middlewares.I18n(b, opts...))
		return lang, hello
	}

	t.Run("default language without hints", func(t *testing.T) {
		t.Parallel()

		lang, hello := resolve(t, newRequest("/test"))
		require.Equal(t, "en", lang)
		require.Equal(t, "Hello", hello)
	})

	t.Run("accept-language is negotiated", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("Accept-Language", "fr;q=0.9, pl-PL;q=0.8, en;q=0.1")
		lang, hello := resolve(t, req)
		require.Equal(t, "pl", lang)
		require.Equal(t, "Cześć", hello)
	})

	t.Run("cookie beats header", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("Accept-Language", "pl")
		req.AddCookie(&http.Cookie{Name: "lang", Value: "de"})
		lang, _ := resolve(t, req)
		require.Equal(t, "de", lang)
	})

	t.Run("query beats cookie", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test?lang=pl")
		req.AddCookie(&http.Cookie{Name: "lang", Value: "de"})
		lang, _ := resolve(t, req)
		require.Equal(t, "pl", lang)
	})

	t.Run("unsupported language falls back", func(t *testing.T) {
		t.Parallel()

		lang, hello := resolve(t, newRequest("/test?lang=xx"))
		require.Equal(t, "en", lang)
		require.Equal(t, "Hello", hello)
	})

	t.Run("custom extractor", func(t *testing.T) {
		t.Parallel()

		req := newRequest("/test")
		req.Header.Set("X-Lang", "de")
		lang, _ := resolve(t, req, middlewares.WithI18nExtractor(internal.NewExtractor(internal.FromHeader("X-Lang"))))
		require.Equal(t, "de", lang)
	})

	t.Run("namespace prefixes keys", func(t *testing.T) {
		t.Parallel()

		var got string
		var tr *i18n.Translator
		serveWith(t, newRequest("/test?lang=pl"), func(c internal.Context) error {
			got = c.T("login")
			tr = middlewares.GetTranslator(c)
			return nil
		}, middlewares.I18n(b, middlewares.WithI18nNamespace("auth")))
		require.Equal(t, "Zaloguj się", got)
		require.NotNil(t, tr)
		require.Equal(t, "auth", tr.Namespace())
	})

	t.Run("helpers without middleware", func(t *testing.T) {
		t.Parallel()

		var lang, key string
		var tr *i18n.Translator
		serveWith(t, newRequest("/test"), func(c internal.Context) error {
			lang = middlewares.GetLanguage(c)
			tr = middlewares.GetTranslator(c)
			key = c.T("hello")
			return nil
		})
		require.Empty(t, lang)
		require.Nil(t, tr)
		require.Equal(t, "hello", key)
	})
}

func TestFromAcceptLanguage(t *testing.T) {
	t.Parallel()

	b := newBundle(t)
	src := middlewares.FromAcceptLanguage(b)

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"de-CH", "de", true},
		{"ja", "en", true},
	}
	for _, tc := range cases {
		req := newRequest("/test")
		if tc.header != "" {
			req.Header.Set("Accept-Language", tc.header)
		}

		var got string
		var ok bool
		serveWith(t, req, func(c internal.Context) error {
			got, ok = src(c)
			return nil
		})
		require.Equal(t, tc.ok, ok, tc.header)
		require.Equal(t, tc.want, got, tc.header)
	}
}
