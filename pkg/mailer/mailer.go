package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Config holds mailer settings, read from the environment.
type Config struct {
	From          string `env:"MAILER_FROM"`
	SubjectPrefix string `env:"MAILER_SUBJECT_PREFIX"`
}

// Email is a prepared message handed to a Sender.
type Email struct {
	Headers map[string]string
	From    string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	To      []string
}

// Sender delivers prepared messages.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, email *Email) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, email *Email) error { return f(ctx, email) }

// Message is a markdown message. The markdown is sent as the text part and rendered
// to HTML for the HTML part.
type Message struct {
	Headers  map[string]string
	Subject  string
	Markdown string
	ReplyTo  string
	To       []string
}

// Mailer renders and sends messages.
type Mailer struct {
	sender Sender
	md     goldmark.Markdown
	config Config
}

// New creates a Mailer.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender: sender,
		config: cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Send renders msg and hands it to the sender.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	switch {
	case len(msg.To) == 0:
		return ErrNoRecipient
	case msg.Subject == "":
		return ErrNoSubject
	case msg.Markdown == "":
		return ErrNoContent
	}

	var body bytes.Buffer
	if err := m.md.Convert([]byte(msg.Markdown), &body); err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	email := &Email{
		From:    m.config.From,
		To:      msg.To,
		Subject: m.subject(msg.Subject),
		HTML:    body.String(),
		Text:    msg.Markdown,
		ReplyTo: msg.ReplyTo,
		Headers: msg.Headers,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (m *Mailer) subject(s string) string {
	if m.config.SubjectPrefix == "" {
		return s
	}
	return fmt.Sprintf("%s %s", m.config.SubjectPrefix, s)
}
