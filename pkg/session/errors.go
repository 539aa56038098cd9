package session

import "errors"

var (
	ErrNotFound     = errors.New("session: no such session")
	ErrExpired      = errors.New("session: session expired")
	ErrTypeMismatch = errors.New("session: stored value has a different type")
	// ErrStore is joined with the backing store's error.
	ErrStore = errors.New("session: store unavailable")
)
