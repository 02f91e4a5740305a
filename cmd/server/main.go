package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"task-service/internal/api"
	"task-service/internal/config"
	"task-service/internal/db"
	"task-service/internal/logging"
	"task-service/internal/telemetry"
	"task-service/pkg/task"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer store.Close()

	tasks, cleanup, err := decorate(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatalf("store decorators: %v", err)
	}
	defer cleanup()

	server := api.New(tasks, logger, cfg.BasePath)

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Server is running on http://localhost:%s", cfg.Port)
		errc <- server.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("listen: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}
}

// decorate wraps the store with tracing, the circuit breaker and the Redis
// cache, in that order from the inside out, as configured.
func decorate(ctx context.Context, cfg *config.Config, store task.Store, logger *log.Logger) (task.Store, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.TracingEnabled {
		tp := telemetry.NewTracerProvider(logger)
		closers = append(closers, func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.WithError(err).Warn("tracer shutdown")
			}
		})
		store = task.NewTraced(store, tp.Tracer(telemetry.TracerName))
	}

	if cfg.BreakerEnabled {
		store = task.NewBreaker(store, task.BreakerSettings{
			ConsecutiveFailures: cfg.BreakerFailures,
			Timeout:             cfg.BreakerTimeout,
		}, logger)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, cache will fall through to the store")
		}
		closers = append(closers, func() { client.Close() })
		store = task.NewCache(store, client, cfg.CacheTTL)
	}

	return store, cleanup, nil
}
