package redis

import "errors"

// Sentinel errors returned by Open and Healthcheck. Underlying driver errors
// are joined to them.
var (
	ErrEmptyConnectionURL = errors.New("redis: connection url is required")
	ErrInvalidURL         = errors.New("redis: cannot parse connection url")
	ErrConnectionFailed   = errors.New("redis: server unreachable")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
