package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/id"
)

// Config holds session settings, read from the environment.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// Manager creates, loads and persists sessions.
// Concurrent loads of one ID share a single store round trip.
type Manager struct {
	store  Store
	now    func() time.Time
	newID  func() string
	loads   singleflight.Group
	cookies *cookie.Manager
	config  Config
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithCookies signs the session cookie with cm. Unsigned or tampered
// cookies are then ignored and a new session is started.
func WithCookies(cm *cookie.Manager) Option {
	return func(m *Manager) { m.cookies = cm }
}

// NewManager creates a Manager over store.
func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	m := &Manager{
		store:  store,
		config: cfg,
		now:    time.Now,
		newID:  id.NewUUID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.config.CookieName }

// ID returns the session ID carried by the request cookie, or "" when the
// cookie is missing or fails signature verification.
func (m *Manager) ID(r *http.Request) string {
	c, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return ""
	}
	if !m.signing() {
		return c.Value
	}
	sid, err := m.cookies.Verify(c.Value)
	if err != nil {
		return ""
	}
	return sid
}

// New creates an unsaved session.
func (m *Manager) New() *Session {
	return newSession(m.newID(), m.now(), m.config.TTL)
}

// Load returns the session with the given ID.
// Each caller gets its own copy.
func (m *Manager) Load(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNotFound
	}
	v, err, _ := m.loads.Do(sid, func() (any, error) {
		return m.store.Load(ctx, sid)
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session).clone()
	if s.IsExpired(m.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

// LoadOrNew loads the session with the given ID, or starts a new one
// when it is missing or expired. Store failures are returned.
func (m *Manager) LoadOrNew(ctx context.Context, sid string) (*Session, error) {
	s, err := m.Load(ctx, sid)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
		return m.New(), nil
	default:
		return nil, err
	}
}

// Save persists s when it changed, extending its expiry.
// A destroyed session is deleted instead.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s.destroyed {
		if s.isNew {
			return nil
		}
		return m.store.Delete(ctx, s.ID)
	}
	if !s.dirty {
		return nil
	}
	s.ExpiresAt = m.now().Add(m.config.TTL)
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	s.markSaved()
	return nil
}

// Cookie returns the cookie carrying s, or an expiring cookie for a destroyed session.
func (m *Manager) Cookie(s *Session) *http.Cookie {
	c := &http.Cookie{
		Name:     m.config.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	}
	if s.destroyed {
		c.Value = ""
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		return c
	}
	if m.signing() {
		// Sign only fails without a secret, which signing rules out.
		c.Value, _ = m.cookies.Sign(s.ID)
	}
	return c
}

func (m *Manager) signing() bool { return m.cookies != nil && m.cookies.Signing() }
