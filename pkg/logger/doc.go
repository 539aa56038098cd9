// Package logger builds *slog.Logger values for runway applications.
//
// Records are written as JSON (or text) to stdout. Context extractors add
// request-scoped attributes such as the request ID or trace IDs to every record
// logged with a context, and a Sentry DSN turns error records into Sentry issues.
//
// # Usage
//
//	cfg := config.MustLoad[logger.Config]()
//	log := logger.NewWithConfig(cfg,
//		middlewares.RequestIDExtractor(),
//		middlewares.TraceExtractor(),
//	)
//	log.InfoContext(ctx, "note created", slog.Int64("note_id", id))
//
// Environment variables: LOG_LEVEL (debug, info, warn, error), LOG_FORMAT
// (json or text), LOG_COMPONENT, SENTRY_DSN, SENTRY_ENVIRONMENT,
// SENTRY_RELEASE and SENTRY_MIN_LEVEL.
//
// # Extractors
//
// A ContextExtractor returns an attribute and whether to add it:
//
//	func tenant(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(tenantKey{}).(string)
//		return slog.String("tenant", id), ok
//	}
//
// Extractors run on every record. An attribute passed explicitly to the log
// call takes precedence over an extracted one with the same key.
// NewLogHandlerDecorator applies extractors to any slog.Handler.
//
// # Sentry
//
// Error records become Sentry events, which is how failures captured by the
// dispatch kernel reach Sentry. Warnings are kept as Sentry logs unless
// SENTRY_MIN_LEVEL is error. Without a DSN, or when the client cannot start,
// records only go to the local handler.
package logger
