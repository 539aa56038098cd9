package mailer

import "errors"

var (
	ErrNoRecipient  = errors.New("mailer: message must have at least one recipient")
	ErrNoSubject    = errors.New("mailer: message must have a subject")
	ErrNoContent    = errors.New("mailer: message must have a body")
	ErrRenderFailed = errors.New("mailer: failed to render message")
	ErrSendFailed   = errors.New("mailer: failed to send message")
)
