// Package resend delivers mailer messages through the Resend HTTP API.
package resend

import (
	"context"
	"errors"
	"net/mail"

	"github.com/resend/resend-go/v3"
	"github.com/samber/lo"

	"github.com/dmitrymomot/runway/pkg/mailer"
)

// Config is read from the environment with pkg/config.
type Config struct {
	APIKey     string `env:"RESEND_API_KEY,required"`
	SenderName string `env:"RESEND_FROM_NAME"`
	From       string `env:"RESEND_FROM_EMAIL,required"`
}

// Sender is a mailer.Sender backed by a Resend client.
type Sender struct {
	client *resend.Client
	from   string
}

var _ mailer.Sender = (*Sender)(nil)

// New creates a Sender authenticated with cfg.APIKey.
func New(cfg Config) *Sender {
	return NewWithClient(resend.NewClient(cfg.APIKey), cfg)
}

// NewWithClient creates a Sender over client, which tests point at a fake API.
func NewWithClient(client *resend.Client, cfg Config) *Sender {
	from := cfg.From
	if cfg.SenderName != "" {
		from = (&mail.Address{Name: cfg.SenderName, Address: cfg.From}).String()
	}
	return &Sender{client: client, from: from}
}

// Send posts email to the Resend API. Messages without From use the
// configured sender. Failures wrap mailer.ErrSendFailed.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    lo.CoalesceOrEmpty(email.From, s.from),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Headers: email.Headers,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(mailer.ErrSendFailed, err)
	}
	return nil
}
