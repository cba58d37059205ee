package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/files-manager/internal/auth"
	"github.com/files-manager/internal/config"
	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/files"
	"github.com/files-manager/internal/middleware"
	"github.com/files-manager/internal/queue"
	"github.com/files-manager/internal/session"
	"github.com/files-manager/internal/storage"
	"github.com/files-manager/internal/thumbnail"
)

func main() {
	// A missing .env is fine; real deployments configure through the
	// environment directly.
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
	logger.Infof("Content store initialized (%s)", cfg.Storage.Type)

	sessions := session.NewRedisStore(rdb)

	var jobs queue.Queue
	if cfg.Queue.Embedded {
		jobs = queue.NewMemoryQueue(256)
	} else {
		jobs = queue.NewRedisQueue(rdb, cfg.Queue.Name)
	}

	authService := auth.NewService(db, sessions, cfg.Auth.SessionTTL, logger)
	fileService := files.NewService(db, content, jobs, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if cfg.Queue.Embedded {
		processor := thumbnail.NewProcessor(db, content, logger)
		worker := thumbnail.NewWorker(jobs, processor, cfg.Queue.Workers, logger)
		go worker.Run(workerCtx)
		logger.Info("Embedded thumbnail worker started")
	}

	gin.SetMode(cfg.GetGINMode())
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	registerRoutes(router, db, sessions, authService, fileService)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func registerRoutes(router *gin.Engine, db *database.DB, sessions session.Store, authService *auth.Service, fileService *files.Service) {
	router.GET("/status", handleStatus(db, sessions))
	router.GET("/stats", handleStats(db))

	router.POST("/users", handleCreateUser(authService))
	router.GET("/users/me", middleware.AuthRequired(authService), handleGetMe(authService))

	router.GET("/connect", handleConnect(authService))
	router.GET("/disconnect", handleDisconnect(authService))

	filesGroup := router.Group("/files")
	{
		filesGroup.POST("", middleware.AuthRequired(authService), handleUploadFile(fileService))
		filesGroup.GET("", middleware.AuthRequired(authService), handleListFiles(fileService))
		filesGroup.GET("/:id", middleware.AuthRequired(authService), handleGetFile(fileService))
		filesGroup.PUT("/:id/publish", middleware.AuthRequired(authService), handleSetVisibility(fileService, true))
		filesGroup.PUT("/:id/unpublish", middleware.AuthRequired(authService), handleSetVisibility(fileService, false))

		// Content is served without mandatory auth: public files are
		// world-readable.
		filesGroup.GET("/:id/data", handleGetFileContent(authService, fileService))
	}
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
