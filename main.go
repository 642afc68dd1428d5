package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidtube/db"
	"vidtube/logging"
	"vidtube/storage"
	"vidtube/telemetry"

	"github.com/joho/godotenv"
)

const serviceName = "vidtube-api"

var version = "dev"

func newMediaStore(ctx context.Context, cfg Config) (storage.MediaStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccess,
			SecretKey:     cfg.MinioSecret,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioSSL,
			PublicBaseURL: cfg.MediaPublicBaseURL,
		})
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.MediaPublicBaseURL,
		})
	case "memory":
		return storage.NewMemoryStore(cfg.MediaPublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}
	cfg := loadConfig()

	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdownTracing, err := telemetry.InitTracing(cfg.OTLPEndpoint, serviceName, version)
	if err != nil {
		logger.Error("failed to init tracing", "err", err)
		os.Exit(1)
	}
	defer shutdownTracing()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	media, err := newMediaStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to init media store", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}

	app := &App{db: database, media: media, cfg: cfg, logger: logger}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("vidtube API listening", "port", cfg.Port, "dialect", string(database.Dialect), "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server shut down")
}
