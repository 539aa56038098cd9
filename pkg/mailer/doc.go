// Package mailer sends markdown messages through a pluggable Sender.
// Subpackage resend provides the Resend API sender.
//
// runway.ErrorMailSink uses a Mailer to alert on server failures.
package mailer
