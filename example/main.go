package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/runway"
	"github.com/dmitrymomot/runway/middlewares"
	"github.com/dmitrymomot/runway/pkg/config"
	"github.com/dmitrymomot/runway/pkg/cookie"
	"github.com/dmitrymomot/runway/pkg/db"
	"github.com/dmitrymomot/runway/pkg/i18n"
	"github.com/dmitrymomot/runway/pkg/logger"
	"github.com/dmitrymomot/runway/pkg/mailer"
	"github.com/dmitrymomot/runway/pkg/mailer/resend"
	"github.com/dmitrymomot/runway/pkg/queue"
	"github.com/dmitrymomot/runway/pkg/redis"
	"github.com/dmitrymomot/runway/pkg/session"
	"github.com/dmitrymomot/runway/pkg/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

//go:embed locales
var locales embed.FS

//go:embed routes.yaml
var routes embed.FS

type appConfig struct {
	App     runway.Config
	Log     logger.Config
	DB      db.Config
	Redis   redis.Config
	Session session.Config
	Cookie  cookie.Config
	CORS    []string `env:"CORS_ORIGINS" envDefault:"*"`
	Storage storage.Config
	Mailer  mailer.Config
	Resend  resend.Config
	Alerts  []string `env:"ALERT_EMAILS"`
}

func main() {
	cfg := config.MustLoad[appConfig]()
	log := logger.NewWithConfig(cfg.Log, middlewares.RequestIDExtractor(), middlewares.TraceExtractor())

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, dir, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	rdb, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	files, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	langs, err := fs.Sub(locales, "locales")
	if err != nil {
		return err
	}
	bundle, err := i18n.New(i18n.WithDefaultLanguage("en"), i18n.WithYAMLDir(langs))
	if err != nil {
		return err
	}

	mail := mailer.New(resend.New(cfg.Resend), cfg.Mailer)
	cookies, err := cookie.New(cfg.Cookie)
	if err != nil {
		return err
	}
	sessions := session.NewManager(session.NewRedisStore(rdb, ""), cfg.Session, session.WithCookies(cookies))

	tasks, err := queue.New(pool,
		queue.WithLogger(log),
		queue.WithMaxWorkers(10),
		queue.Handle("notes.welcome", welcomeTask(mail)),
		queue.Schedule("notes.purge", "@hourly", purgeTask(pool)),
	)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := middlewares.NewMetrics(reg, middlewares.WithMetricsNamespace("example"))
	if err != nil {
		return err
	}

	notes := &notesHandler{pool: pool, files: files, queue: tasks}

	app := runway.New(append(cfg.App.Options(),
		runway.WithCustomLogger(log),
		runway.WithCookies(cookies),
		runway.WithMiddleware(
			middlewares.CORS(middlewares.WithCORSOrigins(cfg.CORS...)),
			middlewares.RequestID(),
			middlewares.Tracing(),
			metrics.Middleware(),
			middlewares.Timeout(10*time.Second),
			middlewares.I18n(bundle),
			middlewares.Session(sessions),
		),
		runway.WithInstances(pool),
		runway.WithHandlers(notes, accountHandler{}),
		runway.WithRoutesFile(routes, "routes.yaml", map[string]any{
			"pages.home":  home,
			"pages.error": errorPage,
			"notes.list":  listNotes,
		}),
		runway.WithErrorSink(runway.ErrorMailSink(mail, log, cfg.Alerts...)),
		runway.WithMetrics("/metrics", reg),
		runway.WithHealthChecks(
			runway.WithReadinessCheck("postgres", db.Healthcheck(pool)),
			runway.WithReadinessCheck("redis", redis.Healthcheck(rdb)),
			runway.WithReadinessCheck("storage", storage.Healthcheck(files)),
		),
		runway.WithShutdownHook(redis.Shutdown(rdb)),
	)...)

	opts := append(cfg.App.RunOptions(),
		runway.Logger(log),
		runway.StartupHook(tasks.Start),
		runway.ShutdownHook(tasks.Stop),
	)
	return app.Run(cfg.App.Addr, opts...)
}

func purgeTask(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := pool.Exec(ctx, `DELETE FROM notes WHERE created_at < now() - interval '30 days'`)
		return err
	}
}
