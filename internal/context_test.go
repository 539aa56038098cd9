package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/cookie"
)

type contactForm struct {
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message" sanitize:"strict"`
	Copies  int    `form:"copies" json:"copies" default:"1"`
}

func TestContext_Bind(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
		r.POST("/contact", func(c internal.Context) error {
			var f contactForm
			if err := c.Bind(&f); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, f)
		})
		r.POST("/contact.json", func(c internal.Context) error {
			var f contactForm
			if err := c.BindJSON(&f); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, f)
		})
		r.GET("/search", func(c internal.Context) error {
			var q struct {
				Term string `query:"q"`
				Page int    `query:"page" default:"1"`
			}
			if err := c.BindQuery(&q); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, q)
		})
	})))

	post := func(target, contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		return w
	}

	t.Run("form body", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"email": {"a@b.c"}, "message": {"<b>hi</b>"}}
		w := post("/contact", "application/x-www-form-urlencoded", form.Encode())
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"email":"a@b.c","message":"hi","copies":1}`, w.Body.String())
	})

	t.Run("json by content type", func(t *testing.T) {
		t.Parallel()

		w := post("/contact", "application/json", `{"email":"a@b.c","copies":3}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"email":"a@b.c","message":"","copies":3}`, w.Body.String())
	})

	t.Run("bind json ignores content type", func(t *testing.T) {
		t.Parallel()

		w := post("/contact.json", "text/plain", `{"email":"x@y.z"}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "x@y.z")
	})

	t.Run("malformed input is 400", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, http.StatusBadRequest, post("/contact", "application/json", `{"copies":`).Code)
		require.Equal(t, http.StatusBadRequest, post("/contact", "application/x-www-form-urlencoded", "copies=many").Code)
	})

	t.Run("query", func(t *testing.T) {
		t.Parallel()

		w := serve(app, http.MethodGet, "/search?q=go")
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"Term":"go","Page":1}`, w.Body.String())
		require.Equal(t, http.StatusBadRequest, serve(app, http.MethodGet, "/search?page=two").Code)
	})
}

func TestContext_Cookies(t *testing.T) {
	t.Parallel()

	cm, err := cookie.New(cookie.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	app := internal.New(
		internal.WithCookies(cm),
		internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.POST("/prefs", func(c internal.Context) error {
				c.SetCookie("lang", "en", 0)
				if err := c.SetCookieSigned("theme", "dark", 3600); err != nil {
					return err
				}
				if err := c.SetCookieEncrypted("token", "s3cret", 3600); err != nil {
					return err
				}
				return c.NoContent(http.StatusNoContent)
			})
			r.GET("/prefs", func(c internal.Context) error {
				lang, _ := c.Cookie("lang")
				theme, err := c.CookieSigned("theme")
				if err != nil {
					return internal.ErrBadRequest(err.Error())
				}
				token, err := c.CookieEncrypted("token")
				if err != nil {
					return internal.ErrBadRequest(err.Error())
				}
				return c.String(http.StatusOK, lang+" "+theme+" "+token)
			})
			r.DELETE("/prefs", func(c internal.Context) error {
				c.DeleteCookie("lang")
				return c.NoContent(http.StatusNoContent)
			})
		})),
	)

	w := serve(app, http.MethodPost, "/prefs")
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)

	read := func(cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/prefs", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		return w
	}

	w = read(cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "en dark s3cret", w.Body.String())

	tampered := *cookies[1]
	tampered.Value = "ZGF5." + strings.SplitN(cookies[1].Value, ".", 2)[1]
	require.Equal(t, http.StatusBadRequest, read(cookies[0], &tampered, cookies[2]).Code)

	w = serve(app, http.MethodDelete, "/prefs")
	require.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}
