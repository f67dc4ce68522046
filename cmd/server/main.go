package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/config"
	"github.com/tastebook/tastebook/internal/database"
	"github.com/tastebook/tastebook/internal/handlers"
	"github.com/tastebook/tastebook/internal/ratelimit"
	"github.com/tastebook/tastebook/internal/requestlog"
	"github.com/tastebook/tastebook/internal/storage"
	"github.com/tastebook/tastebook/internal/store"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Database setup failed")
	}

	var uploads storage.Storage
	switch cfg.StorageBackend {
	case "s3":
		uploads = storage.NewS3Storage(cfg)
	default:
		uploads, err = storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			logger.WithError(err).Fatal("Upload storage setup failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var limiter ratelimit.Limiter
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewRedisSlidingWindow(client, cfg.RateLimit, cfg.RateLimitWindow)
	case cfg.RateLimitStrategy == "bucket":
		bucket := ratelimit.NewTokenBucket(cfg.RateLimit, cfg.RateLimitWindow)
		go ratelimit.NewJanitor(logger, bucket, cfg.RateLimitIdleTTL, cfg.RateLimitSweepTick).Start(ctx)
		limiter = bucket
	default:
		window := ratelimit.NewSlidingWindow(cfg.RateLimit, cfg.RateLimitWindow)
		go ratelimit.NewJanitor(logger, window, cfg.RateLimitIdleTTL, cfg.RateLimitSweepTick).Start(ctx)
		limiter = window
	}

	var sink requestlog.Sink
	if cfg.RequestLogSink == "database" {
		sink = requestlog.NewDatabaseSink(db)
	} else {
		sink = requestlog.NewFileSink(cfg.RequestLogFile)
	}
	buffer := requestlog.NewBuffer(logger, sink, cfg.RequestLogFlush)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)

	handler := handlers.New(
		logger,
		cfg,
		store.NewGormUserStore(db),
		store.NewGormPostStore(db),
		store.NewGormReviewStore(db),
		store.NewGormImageStore(db),
		tokens,
		uploads,
	)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger, buffer))
	r.Use(handlers.RateLimitMiddleware(logger, limiter))
	handlers.RegisterRoutes(r, handler)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
		cancel()
		buffer.Flush()
	}()

	logger.WithField("addr", server.Addr).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed")
	}
	<-done
	logger.Info("Server stopped")
}
