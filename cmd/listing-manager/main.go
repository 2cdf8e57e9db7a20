// cmd/listing-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dr-Musa/najah-realestate/internal/common/camunda"
	"github.com/Dr-Musa/najah-realestate/internal/common/config"
	"github.com/Dr-Musa/najah-realestate/internal/common/database"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/observability"
	"github.com/Dr-Musa/najah-realestate/internal/common/validation"
	"github.com/Dr-Musa/najah-realestate/internal/httpapi"
	"github.com/Dr-Musa/najah-realestate/internal/journal"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/providers"
	al "github.com/Dr-Musa/najah-realestate/internal/workers/realestate/aggregate-listings"
	"github.com/Dr-Musa/najah-realestate/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting listing manager",
		zap.String("version", cfg.App.Version),
		zap.String("provider", cfg.Provider.Kind),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	var checkers []database.Checker

	// --- Redis (provider rate limit) ---
	var rdb redis.Cmdable
	if cfg.RateLimit.Enabled {
		redisClient := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		rdb = redisClient.Client
		checkers = append(checkers, redisClient)
		zapLog.Info("Redis connected successfully")
	}

	// --- PostgreSQL (run journal) ---
	var runJournal *journal.Journal
	if cfg.Pipeline.Journal {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres init failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error {
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		runJournal = journal.New(pg.DB, log)
		if err := runJournal.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("journal schema failed", zap.Error(err))
		}
		checkers = append(checkers, pg)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Pipeline ---
	searcher, err := providers.New(cfg, rdb, log)
	if err != nil {
		zapLog.Fatal("provider init failed", zap.Error(err))
	}

	seed := cfg.Pipeline.RoomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pipeline := listing.NewPipeline(searcher, listing.NewExtractor(listing.NewRandomRoomGuesser(seed)), log)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.ForTaskType(reg, al.TaskType)
	if err != nil {
		zapLog.Fatal("input schema compile failed", zap.Error(err))
	}

	// --- Zeebe worker ---
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, al.TaskType) {
		zc, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zc.Close()
		checkers = append(checkers, zc)

		wcfg := al.LoadConfig(config.GetWorkerConfig(cfg, al.TaskType))
		if act, ok := reg.FindByTaskType(al.TaskType); ok && config.GetWorkerConfig(cfg, al.TaskType).Timeout == 0 {
			wcfg.Timeout = act.TimeoutDuration(wcfg.Timeout)
		}
		var recorder al.RunRecorder
		if runJournal != nil {
			recorder = runJournal
		}
		handler := al.NewHandler(wcfg, pipeline, validator, recorder, obs, log)
		jobWorker = camunda.NewWorker(zc.GetClient(), camunda.WorkerOptions{
			TaskType:      al.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler, log)
		zapLog.Info("Zeebe worker registered", zap.String("taskType", al.TaskType))
	}

	// --- HTTP API ---
	opts := httpapi.Options{
		Runner:         pipeline,
		Validator:      validator,
		Observability:  obs,
		Checkers:       checkers,
		ProviderName:   cfg.Provider.Kind,
		RequestTimeout: config.GetDuration(cfg.HTTP.RequestTimeout),
		Logger:         log,
	}
	if runJournal != nil {
		opts.Journal = runJournal
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(opts), cfg.HTTP.AllowedOrigins),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}

	zapLog.Info("Listing manager stopped")
}
