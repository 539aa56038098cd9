// Package db opens and checks the PostgreSQL pool handlers receive by injection.
//
// A *pgxpool.Pool registered with runway.WithInstances is resolved for any handler
// parameter of that type:
//
//	pool, err := db.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	app := runway.New(
//		runway.WithInstances(pool),
//		runway.WithHealthChecks(runway.WithReadinessCheck("db", db.Healthcheck(pool))),
//		runway.WithShutdownHook(db.Shutdown(pool)),
//	)
//
// Migrate applies goose migrations from any fs.FS, usually an embed.FS.
package db
