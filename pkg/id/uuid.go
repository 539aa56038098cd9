package id

import "github.com/google/uuid"

// NewUUID generates a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewUUIDv7 generates a time-ordered (version 7) UUID string.
// It falls back to version 4 if the clock sequence cannot be read.
func NewUUIDv7() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}
