package cookie

import "errors"

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: no secret configured")
	ErrBadSecret = errors.New("cookie: secret shorter than 32 bytes")
	ErrBadSig    = errors.New("cookie: signature mismatch")
	ErrDecrypt   = errors.New("cookie: cannot decrypt value")
)
