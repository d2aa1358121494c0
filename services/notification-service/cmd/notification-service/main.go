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
	"github.com/md-rashed-zaman/tutorbook/libs/redisx"
	"github.com/md-rashed-zaman/tutorbook/libs/runtime"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/consumer"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/dedupe"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/email"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/handlers"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/inbox"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/notify"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/storage"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type serviceConfig struct {
	Name     string `env:"SERVICE_NAME" env-default:"notification-service"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	HTTP     config.HTTP
	Postgres config.Postgres
	Kafka    config.Kafka
	Redis    config.Redis
	JWT      config.JWT
	SMTP     email.Config

	SeenRetention time.Duration `env:"NOTIFICATION_SEEN_RETENTION" env-default:"720h"`
	PruneCron     string        `env:"NOTIFICATION_PRUNE_CRON" env-default:"@hourly"`
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

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var tracker dedupe.Tracker = dedupe.NewMemory()
	if cfg.Redis.Enabled() {
		rdb := redisx.Open(cfg.Redis)
		defer func() { _ = rdb.Close() }()
		tracker = dedupe.NewRedis(rdb)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)})
		logger.Info("notification dedupe backed by redis", "redis_addr", cfg.Redis.Addr)
	} else {
		logger.Warn("REDIS_ADDR not set; notification dedupe kept in memory")
	}

	var mailer email.Sender
	if cfg.SMTP.Enabled() {
		mailer = email.NewSMTPSender(cfg.SMTP)
	}

	notifications := storage.NewRepository(pool)
	processor := notify.NewProcessor(notifications, tracker, mailer, logger)

	if cfg.Kafka.Brokers != "" {
		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			groupID = cfg.Name
		}
		eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: groupID,
			Topics:  notify.Topics,
		}, processor.Handle)
		go eventConsumer.Run(ctx)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.Kafka.Brokers)})
	} else {
		logger.Warn("KAFKA_BROKERS not set; booking events will not be consumed")
	}

	jobs := cron.New()
	if err := notify.SchedulePrune(jobs, cfg.PruneCron, notifications, cfg.SeenRetention, logger); err != nil {
		logger.Error("invalid notification prune schedule", "err", err, "schedule", cfg.PruneCron)
	}
	jobs.Start()
	defer jobs.Stop()

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(notifications, logger, cfg.JWT.Secret).Register(mux)

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
		Handler:           otelhttp.NewHandler(httpHandler, "notification"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger)
}
