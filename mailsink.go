package runway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/runway/pkg/mailer"
)

const mailSinkTimeout = 10 * time.Second

// ErrorMailSink emails a report for every captured failure with a 5xx status.
// Messages are sent in the background so the request is not held up by the mail provider.
// Send failures are logged on log, which may be nil.
func ErrorMailSink(m *mailer.Mailer, log *slog.Logger, to ...string) Sink {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return SinkFunc(func(ctx context.Context, ec *ErrorContext) {
		if ec.Status < http.StatusInternalServerError || len(to) == 0 {
			return
		}
		msg := mailer.Message{
			To:       to,
			Subject:  fmt.Sprintf("%d %s %s", ec.Status, ec.Request.Method, ec.Request.Path),
			Markdown: errorReport(ec),
			Headers:  map[string]string{"X-Error-Id": ec.ErrorID},
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailSinkTimeout)
			defer cancel()
			if err := m.Send(ctx, msg); err != nil {
				log.ErrorContext(ctx, "failed to send error report",
					slog.String("error_id", ec.ErrorID),
					slog.String("error", err.Error()),
				)
			}
		}()
	})
}

func errorReport(ec *ErrorContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", ec.Failure.Message)
	fmt.Fprintf(&b, "- Error ID: `%s`\n", ec.ErrorID)
	fmt.Fprintf(&b, "- Kind: `%s`\n", ec.Failure.Kind)
	fmt.Fprintf(&b, "- Time: %s\n", ec.Time.UTC().Format(time.RFC3339))
	if ec.Request.Route != "" {
		fmt.Fprintf(&b, "- Route: `%s`\n", ec.Request.Route)
	}
	if ec.Request.RequestID != "" {
		fmt.Fprintf(&b, "- Request ID: `%s`\n", ec.Request.RequestID)
	}
	if ec.Failure.Origin != "" {
		fmt.Fprintf(&b, "- Origin: `%s`\n", ec.Failure.Origin)
	}
	if ec.Failure.Stack != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", ec.Failure.Stack)
	}
	return b.String()
}
