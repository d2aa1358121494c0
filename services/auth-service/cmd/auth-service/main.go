package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/md-rashed-zaman/tutorbook/libs/config"
	"github.com/md-rashed-zaman/tutorbook/libs/db"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/tutorbook/libs/otel"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/libs/runtime"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/accounts"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/handlers"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/storage"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type serviceConfig struct {
	Name     string `env:"SERVICE_NAME" env-default:"auth-service"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	HTTP     config.HTTP
	Postgres config.Postgres
	Kafka    config.Kafka
	JWT      config.JWT

	AllowAdminRegistration bool   `env:"ALLOW_ADMIN_REGISTRATION" env-default:"false"`
	AdminName              string `env:"ADMIN_NAME" env-default:"Administrator"`
	AdminEmail             string `env:"ADMIN_EMAIL" env-default:""`
	AdminPassword          string `env:"ADMIN_PASSWORD" env-default:""`

	OutboxRetention time.Duration `env:"OUTBOX_RETENTION" env-default:"168h"`
	OutboxPruneCron string        `env:"OUTBOX_PRUNE_CRON" env-default:"@hourly"`
}

func main() {
	var cfg serviceConfig
	if err := config.Load(&cfg); err != nil {
		panic(err)
	}
	if err := config.ValidatePort("PORT", cfg.HTTP.Port); err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.Name, cfg.LogLevel)

	ctx, stop := runtime.SignalContext()
	defer stop()

	defer otelx.Start(ctx, cfg.Name, logger.Error)()

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(cfg.Postgres.URL); err != nil {
			logger.Error("migration failed", "err", err)
			panic(err)
		}
	}
	pool, err := db.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	svc := accounts.NewService(storage.NewPostgres(pool, outboxRepo), accounts.Config{
		Secret:             cfg.JWT.Secret,
		TokenTTL:           cfg.JWT.TTL,
		AllowAdminRegister: cfg.AllowAdminRegistration,
	}, logger)

	created, err := svc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Error("admin bootstrap failed", "err", err)
	} else if created {
		logger.Info("admin account created", "email", cfg.AdminEmail)
	}

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   cfg.Kafka.Brokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go publisher.Run(ctx)

	jobs := cron.New()
	if err := outbox.SchedulePrune(jobs, cfg.OutboxPruneCron, outboxRepo, cfg.OutboxRetention, logger); err != nil {
		logger.Error("invalid outbox prune schedule", "err", err, "schedule", cfg.OutboxPruneCron)
	}
	jobs.Start()
	defer jobs.Stop()

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if cfg.Kafka.Brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.Kafka.Brokers)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewAuthHandler(svc, logger, cfg.JWT.Secret).Register(mux)

	httpHandler := httpx.Chain(mux,
		middleware.RealIP,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(cfg.HTTP.BodyLimitBytes),
		httpx.WithTimeout(cfg.HTTP.RequestTimeout),
		middleware.Recoverer,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           otelhttp.NewHandler(httpHandler, "auth"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger)
}
