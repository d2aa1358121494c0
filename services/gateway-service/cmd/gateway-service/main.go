package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/md-rashed-zaman/tutorbook/libs/config"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	otelx "github.com/md-rashed-zaman/tutorbook/libs/otel"
	"github.com/md-rashed-zaman/tutorbook/libs/redisx"
	"github.com/md-rashed-zaman/tutorbook/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type serviceConfig struct {
	Name     string `env:"SERVICE_NAME" env-default:"gateway-service"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	HTTP     config.HTTP
	Redis    config.Redis
	JWT      config.JWT
	Upstream upstreams

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	RateLimitPrefix    string `env:"RATE_LIMIT_PREFIX" env-default:"rl"`
	RateLimitFailOpen  bool   `env:"RATE_LIMIT_FAIL_OPEN" env-default:"true"`
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

	var checks []runtime.ReadyCheck
	var rateLimitMW httpx.Middleware
	if cfg.Redis.Enabled() {
		rdb := redisx.Open(cfg.Redis)
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)})

		rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitPrefix)
		rateLimitMW = rl.Middleware(logger, cfg.RateLimitFailOpen)
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.Redis.Addr)
	} else {
		rl := httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	if err := registerRoutes(mux, cfg.Upstream, cfg.JWT.Secret, otelhttp.NewTransport(http.DefaultTransport), logger); err != nil {
		logger.Error("invalid upstream url", "err", err)
		panic(err)
	}

	handler := httpx.Chain(mux,
		middleware.RealIP,
		httpx.WithCORS(httpx.BrowserPolicy(config.SplitList(cfg.CORSAllowedOrigins))),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(cfg.HTTP.BodyLimitBytes),
		httpx.WithTimeout(cfg.HTTP.RequestTimeout),
		rateLimitMW,
		middleware.Recoverer,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           otelhttp.NewHandler(handler, "gateway"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger)
}
