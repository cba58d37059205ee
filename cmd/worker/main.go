package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/files-manager/internal/config"
	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/queue"
	"github.com/files-manager/internal/storage"
	"github.com/files-manager/internal/thumbnail"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.Open(cfg.DriverName(), cfg.GetDSN())
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Infof("Connected to %s database", cfg.Database.Type)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	logger.Info("Connected to Redis")

	content, err := newContentStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to create content store: %v", err)
	}

	jobs := queue.NewRedisQueue(rdb, cfg.Queue.Name)
	processor := thumbnail.NewProcessor(db, content, logger)
	worker := thumbnail.NewWorker(jobs, processor, cfg.Queue.Workers, logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down worker...")
		cancel()
	}()

	logger.Infof("Starting %d thumbnail workers on queue %q", cfg.Queue.Workers, cfg.Queue.Name)
	worker.Run(ctx)
	logger.Info("Worker exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newContentStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "minio":
		store, err := storage.NewMinIOStore(cfg.Storage.MinIO)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return store, nil
	case "local":
		return storage.NewLocalStore(cfg.Storage.Local.RootPath)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
