// Package storage persists the prediction log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ml-punto-tech/sentiment-api/internal/config"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store defines the interface for the prediction log.
type Store interface {
	// Append persists entry and sets its ID.
	Append(ctx context.Context, entry *models.PredictionLog) error
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.PredictionLog, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverDuckDB:
		logger.Info("opening duckdb prediction log", "path", cfg.DuckDBPath)
		return NewDuckStore(ctx, DuckOptions{
			Path:        cfg.DuckDBPath,
			Threads:     cfg.DuckDBThreads,
			MemoryLimit: cfg.DuckDBMemoryLimit,
		})
	case config.DriverPostgres:
		logger.Info("opening postgres prediction log")
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case config.DriverMemory:
		logger.Warn("using in-memory prediction log; entries are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
