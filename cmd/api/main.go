package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"portfoliobuilder/internal/auth"
	"portfoliobuilder/internal/config"
	"portfoliobuilder/internal/directory"
	"portfoliobuilder/internal/handler"
	"portfoliobuilder/internal/httpserver"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/internal/service/project"
	"portfoliobuilder/internal/wizard"
	"portfoliobuilder/pkg/db"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/mq"
	"portfoliobuilder/pkg/otel"
	"portfoliobuilder/pkg/outbox"
	redisclient "portfoliobuilder/pkg/redis"
	"portfoliobuilder/pkg/util"
)

func main() {
	// Load config
	cfg, err := config.Load("config")
	if err != nil {
		panic(err)
	}

	logger := logger.NewLogger(cfg.Env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init tracing
	if cfg.OTel.Enabled {
		shutdown, err := otel.Init(cfg.OTel, logger)
		if err != nil {
			logger.Fatal("OpenTelemetry initialization failed", zap.Error(err))
		}
		defer shutdown()
	}

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn, logger); err != nil {
		logger.Fatal("DB migration failed", zap.Error(err))
	}

	// Init Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	// Init MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, outboxRepo)

	// Init Services
	strategy, err := auth.NewStrategy(cfg.Auth.Strategy, userRepo)
	if err != nil {
		logger.Fatal("Invalid auth strategy", zap.Error(err))
	}
	if strategy.Name() == auth.StrategyAutoApprove {
		logger.Warn("Auto-approve authentication is enabled; passwords are not checked")
	}
	authService := auth.NewService(strategy, cfg.JWT.Secret, cfg.JWT.TTL(), logger)
	projectService := project.NewService(projectRepo, logger)
	directoryService := directory.NewService(projectRepo, directory.NewRedisCache(rdb), cfg.Directory.CacheTTL(), logger)
	wizardStore := wizard.NewRedisStore(rdb, cfg.Wizard.SessionTTL())
	deduper := util.NewDeduper(rdb, cfg.Idempotency.TTL())
	replayService := outbox.NewReplayService(outboxRepo, publisher, logger).WithMaxRetries(cfg.Outbox.MaxRetries)

	// Init Outbox Dispatcher
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, logger).
		WithMaxRetries(cfg.Outbox.MaxRetries).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithInterval(cfg.Outbox.Interval())
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Start(ctx)
	}()

	// Router
	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:      handler.NewAuthHandler(authService, logger),
		Project:   handler.NewProjectHandler(projectService, deduper, logger),
		Wizard:    handler.NewWizardHandler(wizardStore, projectService, logger),
		Directory: handler.NewDirectoryHandler(directoryService, logger),
		Admin:     handler.NewAdminHandler(replayService, logger),
	}, httpserver.Options{
		JWTSecret: cfg.JWT.Secret,
		Logger:    logger,
		Tracing:   cfg.OTel.Enabled,
		Checks: map[string]httpserver.ReadinessCheck{
			"db":    dbConn.Ping,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mq": func(context.Context) error {
				if !publisher.IsConnected() {
					return errors.New("publisher disconnected")
				}
				return nil
			},
		},
	})

	srv := router.Server(cfg.Server.Port)
	go func() {
		logger.Info("Starting API server",
			zap.String("port", cfg.Server.Port),
			zap.String("auth_strategy", strategy.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	<-dispatcherDone
}
