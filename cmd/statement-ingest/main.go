package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"statement-ingest/internal/api"
	"statement-ingest/internal/api/handlers"
	"statement-ingest/internal/classifier"
	"statement-ingest/internal/extract"
	"statement-ingest/internal/queue"
	"statement-ingest/internal/queue/inmemory"
	"statement-ingest/internal/queue/redisq"
	"statement-ingest/internal/repository"
	"statement-ingest/internal/service"
	"statement-ingest/internal/storage"
	"statement-ingest/pkg/auth"
	"statement-ingest/pkg/config"
	"statement-ingest/pkg/logger"
	"statement-ingest/pkg/postgres"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Statement Ingest API
// @version 1.0
// @description Asynchronous ingestion of bank statements and card invoices into categorised transactions

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

type transport interface {
	queue.Publisher
	queue.Consumer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting statement-ingest service")

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(&cfg.Database, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	jobRepo := repository.NewJobRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	q, err := newTransport(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize queue", zap.Error(err))
	}
	defer q.Close()

	cls, err := classifier.New(ctx, &cfg.AI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize classifier", zap.Error(err))
	}
	defer cls.Close()

	var archive service.DocumentArchive
	store, err := storage.NewArchive(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize document archive", zap.Error(err))
	}
	if store != nil {
		archive = store
	} else {
		appLogger.Info("Document archive disabled, STORAGE_ENDPOINT not set")
	}

	// Services
	jobService := service.NewJobService(jobRepo, appLogger)
	txService := service.NewTransactionService(txRepo, appLogger)
	detector := service.NewDuplicateDetector(txRepo, appLogger)
	consumer := service.NewBatchConsumer(jobService, txRepo, detector, cfg.Upload.DefaultCurrency, appLogger)
	ingestion := service.NewIngestionService(
		jobService,
		extract.NewExtractor(appLogger),
		cls,
		q,
		archive,
		cfg.Upload.MaxFileSize,
		cfg.Upload.DefaultCurrency,
		appLogger,
	)

	consumerCtx, cancelConsumers := context.WithCancel(ctx)
	defer cancelConsumers()
	if err := q.Start(consumerCtx, consumer.Handle); err != nil {
		appLogger.Fatal("Failed to start consumer", zap.Error(err))
	}

	// Handlers
	jwtManager := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	docHandler := handlers.NewDocumentHandler(ingestion, appLogger)
	jobHandler := handlers.NewJobHandler(jobService, appLogger)
	txHandler := handlers.NewTransactionHandler(txService, appLogger)

	app := api.SetupRouter(docHandler, jobHandler, txHandler, jwtManager, cfg, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := q.Stop(stopCtx); err != nil {
		// handlers still running see their context cancelled and requeue
		appLogger.Warn("Consumers did not finish in time", zap.Error(err))
		cancelConsumers()
	}
	appLogger.Info("Shutdown complete")
}

func newTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (transport, error) {
	switch cfg.Queue.Driver {
	case "memory":
		logger.Warn("Using in-memory queue, batches are lost on restart")
		return inmemory.NewQueue(cfg.Queue.BufferSize, cfg.Queue.MaxConcurrency, logger), nil
	case "redis", "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr), zap.String("queue", cfg.Queue.Name))
		return redisq.New(client, redisq.Options{
			Name:           cfg.Queue.Name,
			MaxConcurrency: cfg.Queue.MaxConcurrency,
			PollTimeout:    cfg.Queue.PollTimeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}
