package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	mqcontracts "portfoliobuilder/contracts/mq"
	"portfoliobuilder/internal/config"
	"portfoliobuilder/internal/directory"
	"portfoliobuilder/internal/mqhandler"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/pkg/db"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/mq"
	"portfoliobuilder/pkg/otel"
	"portfoliobuilder/pkg/outbox"
	redisclient "portfoliobuilder/pkg/redis"
)

func main() {
	// Load config
	cfg, err := config.Load("config")
	if err != nil {
		panic(err)
	}

	logger := logger.NewLogger(cfg.Env)
	defer logger.Sync()

	logger.Info("Starting worker service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	// Init Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	projectRepo := repository.NewProjectRepository(dbConn, outbox.NewRepository(dbConn))
	directoryService := directory.NewService(projectRepo, directory.NewRedisCache(rdb), cfg.Directory.CacheTTL(), logger)
	projectHandler := mqhandler.NewProjectEventHandler(directoryService, logger)

	// 每个 routing key 一个队列：directory.<routing_key>.q
	var (
		consumers []*mq.Consumer
		wg        sync.WaitGroup
	)
	for _, routingKey := range mqcontracts.ProjectRoutingKeys {
		queue := "directory." + routingKey + ".q"
		logger.Info("Initializing consumer", zap.String("queue", queue))

		consumer, err := mq.NewConsumer(cfg.MQ.URL, queue, routingKey, logger)
		if err != nil {
			logger.Fatal("failed to init consumer", zap.String("queue", queue), zap.Error(err))
		}
		consumer.SetHandler(projectHandler.Handler(routingKey))
		consumers = append(consumers, consumer)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.StartConsuming(); err != nil {
				logger.Error("consumer stopped", zap.String("queue", queue), zap.Error(err))
				stop()
			}
		}()
	}

	logger.Info("All consumers started, worker is ready to process messages")

	<-ctx.Done()
	logger.Info("Shutting down worker")
	for _, c := range consumers {
		c.Stop()
	}
	wg.Wait()
}
