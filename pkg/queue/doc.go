// Package queue runs background tasks on Postgres with river.
//
// Tasks are registered by name with a typed payload; periodic tasks take a cron
// expression. Wire Start and Stop as startup and shutdown hooks:
//
//	q, err := queue.New(pool,
//		queue.Handle("send_digest", func(ctx context.Context, p DigestPayload) error { ... }),
//		queue.Schedule("purge_sessions", "0 * * * *", purgeSessions),
//	)
//	err = app.Run(addr, runway.StartupHook(q.Start), runway.ShutdownHook(q.Stop))
package queue
