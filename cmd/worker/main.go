package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/soniva/backend/internal/aireport"
	"github.com/soniva/backend/internal/cache"
	"github.com/soniva/backend/internal/config"
	"github.com/soniva/backend/internal/database"
	"github.com/soniva/backend/internal/queue"
	"github.com/soniva/backend/internal/queue/workers"
	"github.com/soniva/backend/internal/storage"
	"github.com/soniva/backend/internal/voice"
	"github.com/soniva/backend/internal/voiceprint"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var store storage.Storage
	if cfg.Storage.Backend == "s3" {
		store = storage.NewS3Storage(storage.NewS3ClientFromConfig(cfg.Storage))
	} else {
		store, err = storage.NewLocalStorage(cfg.Storage.LocalDir)
		if err != nil {
			slog.Error("local storage unavailable", "error", err)
			os.Exit(1)
		}
	}

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	voiceSvc := voice.NewService(db, store, cfg.Storage.Bucket, cfg.Analysis,
		aireport.NewGateway(cfg.Report),
		voiceprint.NewPgVectorStore(db),
		cache.NewCache(rdb),
		queueClient,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	analyzeWorker := workers.NewAnalyzeWorker(voiceSvc)
	registry.Register(queue.TypeVoiceAnalyze, asynq.HandlerFunc(analyzeWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
