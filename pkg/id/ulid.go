// Package id provides identifier generation for request and error tracking.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// IDs created within the same millisecond increase monotonically, so two calls never
// return the same value.
func NewULID() string {
	return ULIDAt(time.Now())
}

// ULIDAt generates a ULID for the given time.
func ULIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	v, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		// monotonic entropy overflowed within one millisecond; restart the sequence
		entropy = ulid.Monotonic(rand.Reader, 0)
		v = ulid.MustNew(ulid.Timestamp(t), entropy)
	}
	return v.String()
}

// ParseULID validates s and returns the time encoded in it.
func ParseULID(s string) (time.Time, error) {
	v, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()), nil
}
