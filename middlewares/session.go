package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/session"
)

type sessionKey struct{}

// Session returns middleware that loads the session named by the request cookie
// (verified when the manager signs cookies),
// or starts a new one, and stores it in the request context.
// After the handler returns, a changed session is saved and its cookie set; a
// destroyed one is deleted and its cookie expired. Streamed responses keep the
// cookie they were sent with.
func Session(m *session.Manager) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			s, err := m.LoadOrNew(c, m.ID(c.Request()))
			if err != nil {
				return err
			}
			c.Set(sessionKey{}, s)

			err = next(c)

			changed := s.IsDirty() || s.IsDestroyed()
			if !changed {
				return err
			}
			if saveErr := m.Save(c, s); saveErr != nil {
				c.LogError("session save failed", "error", saveErr)
				if err == nil {
					return saveErr
				}
				return err
			}
			if resp := c.ResponseWriter(); !resp.Streaming() {
				http.SetCookie(resp, m.Cookie(s))
			}
			return err
		}
	}
}

// GetSession returns the request session, or nil without the Session middleware.
func GetSession(c internal.Context) *session.Session {
	s, _ := c.Get(sessionKey{}).(*session.Session)
	return s
}
