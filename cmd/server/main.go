package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/shortyhq/shorty/config"
	appmodel "github.com/shortyhq/shorty/internal/app/model"
	apprepository "github.com/shortyhq/shorty/internal/app/repository"
	appserver "github.com/shortyhq/shorty/internal/app/server"
	appservice "github.com/shortyhq/shorty/internal/app/service"
	"github.com/shortyhq/shorty/internal/auth"
	"github.com/shortyhq/shorty/internal/infra/logger"
	infraNATS "github.com/shortyhq/shorty/internal/infra/nats"
	infraPostgres "github.com/shortyhq/shorty/internal/infra/postgres"
	infraPrometheus "github.com/shortyhq/shorty/internal/infra/prometheus"
	infraRedis "github.com/shortyhq/shorty/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded",
		zap.String("listen_addr", cfg.App.ListenAddr),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Duration("ratelimit_window", cfg.RateLimit.Window),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Link{}, &appmodel.ClickEvent{}, &appmodel.AuditEntry{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS")

	metrics := infraPrometheus.NewMetrics()
	if cfg.Prometheus.Enabled {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)
	auditRepo := apprepository.NewAuditRepository(gormDB)
	clickRepo := apprepository.NewClickEventRepository(pool)

	slugFilter := appservice.NewSlugFilter()
	if err := slugFilter.Seed(ctx, linkRepo); err != nil {
		log.Fatal("Failed to seed slug filter", zap.Error(err))
	}

	limiter := appservice.NewLimiter(
		appservice.NewRedisCounterStore(redisClient),
		appservice.LimiterConfig{
			Window:   cfg.RateLimit.Window,
			ActorMax: cfg.RateLimit.ActorMax,
			AddrMax:  cfg.RateLimit.AddrMax,
		},
		log,
	)

	screener := appservice.NewScreener(appservice.ScreenerOpts{
		Endpoint: cfg.Screener.Endpoint,
		APIKey:   cfg.Screener.APIKey,
		Timeout:  cfg.Screener.Timeout,
	}, log)

	publisher := appservice.NewClickPublisher(js)
	consumer := appservice.NewClickConsumer(js, log, clickRepo, metrics)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	linkService := appservice.NewLinkService(appservice.LinkServiceDeps{
		Logger:        log,
		Links:         linkRepo,
		Audits:        auditRepo,
		Clicks:        clickRepo,
		Limiter:       limiter,
		Screener:      screener,
		SlugFilter:    slugFilter,
		Metrics:       metrics,
		AnonListLimit: cfg.App.AnonListLimit,
		ListLimit:     cfg.App.ListLimit,
		SlugRetries:   cfg.App.SlugRetries,
	})

	resolver := appservice.NewResolver(appservice.ResolverDeps{
		Logger:    log,
		Links:     linkRepo,
		Publisher: publisher,
		Metrics:   metrics,
	})

	srv := appserver.New(appserver.Dependencies{
		Logger:      log,
		LinkService: linkService,
		Resolver:    resolver,
		Auth:        auth.NewResolver([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer),
	})

	log.Info("Listening", zap.String("addr", cfg.App.ListenAddr))
	if err := srv.Listen(cfg.App.ListenAddr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
