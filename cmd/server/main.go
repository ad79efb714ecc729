package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/cron"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/logger"
	gormrepository "trade-journal-go/internal/repository/gorm"
	"trade-journal-go/internal/server"
	"trade-journal-go/internal/snapshot"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	repo := gormrepository.New(db)

	// Snapshot cache: Redis when configured, process memory otherwise.
	var snapshots snapshot.Store
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		snapshots = snapshot.NewRedisStore(redisClient)
		log.Info("Using Redis snapshot cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		snapshots = snapshot.NewMemoryStore()
		log.Info("Using in-memory snapshot cache")
	}

	ledgerService := ledger.NewService(repo, snapshots, log)
	analyticsService := analytics.NewService(repo, snapshots, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Periodic snapshot precompute keeps the analytics cache warm.
	if cfg.Snapshots.Enabled {
		runner := cron.NewRunner(log, ctx)
		_, err := runner.Add(cfg.Snapshots.Schedule, func(jobCtx context.Context) {
			if err := analyticsService.RefreshSnapshots(jobCtx, cfg.Snapshots.Periods); err != nil {
				log.Error("Snapshot refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			log.Fatal("Failed to schedule snapshot refresh", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	apiServer := server.New(log, &cfg, ledgerService, analyticsService)
	if err := apiServer.Run(ctx); err != nil {
		log.Fatal("API server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
