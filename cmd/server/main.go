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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ml-punto-tech/sentiment-api/internal/api"
	"github.com/ml-punto-tech/sentiment-api/internal/batch"
	"github.com/ml-punto-tech/sentiment-api/internal/config"
	"github.com/ml-punto-tech/sentiment-api/internal/logging"
	"github.com/ml-punto-tech/sentiment-api/internal/parser"
	"github.com/ml-punto-tech/sentiment-api/internal/predictor"
	"github.com/ml-punto-tech/sentiment-api/internal/stats"
	"github.com/ml-punto-tech/sentiment-api/internal/storage"
	"github.com/ml-punto-tech/sentiment-api/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)

	if err := run(cfg, configPath, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, configPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	client := predictor.NewClient(predictor.Options{
		BaseURL:           cfg.Model.URL,
		PredictPath:       cfg.Model.PredictPath,
		HealthPath:        cfg.Model.HealthPath,
		Timeout:           cfg.ModelTimeout(),
		MaxRetries:        cfg.Model.MaxRetries,
		RequestsPerSecond: cfg.Model.RequestsPerSecond,
		Burst:             cfg.Model.Burst,
	}, logger)
	recorder := predictor.NewRecorder(client, store, logger)

	validator := upload.NewValidator(upload.Limits{
		MaxFileSize:        cfg.MaxFileSizeBytes(),
		Extensions:         cfg.Batch.Extensions,
		ContentTypes:       cfg.Batch.ContentTypes,
		EnforceContentType: cfg.Batch.EnforceContentType,
	}, logger)
	extractors := parser.NewRegistry(parser.Options{MinTextLength: cfg.Batch.MinTextLength}, logger)
	orchestrator := batch.NewOrchestrator(recorder, batch.Options{
		Workers:     cfg.Batch.Workers,
		ItemTimeout: cfg.ItemTimeout(),
	}, logger)
	batchSvc := batch.NewService(validator, extractors, orchestrator, logger)

	// Background jobs outlive their request but stop on shutdown
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	jobs := batch.NewJobManager(jobCtx, batchSvc, logger)

	// Start background job cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Batch.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := jobs.CleanupOldJobs(time.Duration(cfg.Batch.JobRetentionMinutes) * time.Minute); n > 0 {
					logger.Debug("removed finished batch jobs", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		EnableCORS:           cfg.Server.EnableCORS,
		AllowOrigins:         cfg.Server.AllowOrigins,
		CORSMaxAge:           cfg.Server.CORSMaxAgeSeconds,
		MaxRequestBytes:      cfg.MaxRequestSizeBytes(),
		EnableCompression:    cfg.Server.EnableCompression,
		CompressionLevel:     cfg.Server.CompressionLevel,
		EnableRequestLogging: cfg.Advanced.EnableRequestLogging,
	}, logger)

	handlers := api.NewHandlers(&api.Dependencies{
		Predictor:     recorder,
		Batch:         batchSvc,
		Jobs:          jobs,
		Stats:         stats.NewService(store),
		Model:         client,
		Store:         store,
		MinTextLength: cfg.Batch.MinTextLength,
		Version:       Version,
	})
	api.RegisterRoutes(e, handlers)

	// Configure server with settings from the YAML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	logger.Info("sentiment api starting",
		"version", Version,
		"build_time", BuildTime,
		"config", configPath,
		"listen", cfg.GetServerAddr(),
		"model_url", cfg.Model.URL,
		"storage", cfg.Storage.Driver,
		"workers", cfg.Batch.Workers)

	errCh := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancelJobs()
		jobs.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	return shutdown(shutdownCtx, e, cancelJobs, jobs)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type waiter interface {
	Wait()
}

// shutdown stops the HTTP server, then cancels background jobs and waits
// for them, even when the server did not stop cleanly.
func shutdown(ctx context.Context, srv shutdowner, cancelJobs context.CancelFunc, jobs waiter) error {
	err := srv.Shutdown(ctx)
	cancelJobs()
	jobs.Wait()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
