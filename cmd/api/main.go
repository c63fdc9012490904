package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/config"
	"github.com/noah-isme/scholarship-api/internal/database"
	"github.com/noah-isme/scholarship-api/internal/handler"
	"github.com/noah-isme/scholarship-api/internal/middleware"
	"github.com/noah-isme/scholarship-api/internal/repository"
	"github.com/noah-isme/scholarship-api/internal/router"
	"github.com/noah-isme/scholarship-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		logger.Warn().Msg("redis url not set, category cache and redis events disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewUserRepository(db)
	scholarRepo := repository.NewScholarRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	events := service.NewActivityEventPublisher(natsConn, redisClient, cfg.EventsSubject)
	statsService := service.NewStatsService(activityRepo, scholarRepo, logger)
	activityService := service.NewActivityService(
		activityRepo,
		scholarRepo,
		categoryRepo,
		userRepo,
		validate,
		auditService,
		events,
		service.ActivityServiceOptions{AllowReReview: cfg.AllowReReview},
		logger,
	)
	scholarService := service.NewScholarService(scholarRepo, statsService, validate, auditService, cfg.BcryptCost, logger)
	categoryService := service.NewCategoryService(categoryRepo, redisClient, cfg.CategoryCacheTTL, validate, auditService, logger)
	authService := service.NewAuthService(userRepo, issuer, validate, auditService, cfg.BcryptCost, logger)
	seedService := service.NewSeedService(categoryRepo, userRepo, categoryService, cfg.SeedEnabled, cfg.SeedToken, cfg.BcryptCost, logger)

	if created, err := seedService.BootstrapAdmin(context.Background(), service.AdminBootstrap{
		Username: cfg.BootstrapAdminUsername,
		Email:    cfg.BootstrapAdminEmail,
		Password: cfg.BootstrapAdminPassword,
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap administrator")
	} else if created {
		logger.Info().Str("username", cfg.BootstrapAdminUsername).Msg("administrator account created")
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, logger),
		ScholarHandler:       handler.NewScholarHandler(scholarService, statsService, activityService, logger),
		ActivityHandler:      handler.NewActivityHandler(activityService, logger),
		CategoryHandler:      handler.NewCategoryHandler(categoryService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		AdminScholarHandler:  handler.NewAdminScholarHandler(scholarService, statsService, logger),
		AdminStatsHandler:    handler.NewAdminStatsHandler(statsService, logger),
		AuditHandler:         handler.NewAuditHandler(auditService, logger),
		SeedHandler:          handler.NewSeedHandler(seedService, logger),
		HealthProbes:         probes,
		JWTMiddleware:        middleware.JWTProtected(issuer),
		LoginLimiter:         middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute),
		EnableMetrics:        true,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
