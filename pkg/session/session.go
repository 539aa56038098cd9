package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Session is a server-side session. Values must be JSON-encodable.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values,omitempty"`
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`

	dirty     bool
	destroyed bool
	isNew     bool
}

func newSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		Values:    make(map[string]any),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		isNew:     true,
	}
}

// IsAuthenticated reports whether a user is attached.
func (s *Session) IsAuthenticated() bool { return s.UserID != "" }

// Authenticate attaches userID to the session.
func (s *Session) Authenticate(userID string) {
	s.UserID = userID
	s.dirty = true
}

// Set stores a value.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Destroy marks the session for removal at the end of the request.
func (s *Session) Destroy() { s.destroyed = true }

// IsDirty reports whether the session has unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// IsDestroyed reports whether Destroy was called.
func (s *Session) IsDestroyed() bool { return s.destroyed }

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool { return s.isNew }

// IsExpired reports whether the session expired at now.
func (s *Session) IsExpired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

func (s *Session) clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	return &c
}

func (s *Session) markSaved() {
	s.dirty = false
	s.isNew = false
}

// Value returns the value under key as T.
// Values read back from a store went through JSON: numbers are float64, objects map[string]any.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrTypeMismatch, key, val)
	}
	return typed, nil
}

// ValueOr returns the value under key as T, or def.
func ValueOr[T any](s *Session, key string, def T) T {
	if v, err := Value[T](s, key); err == nil {
		return v
	}
	return def
}

func encode(s *Session) ([]byte, error) { return json.Marshal(s) }

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	return &s, nil
}
