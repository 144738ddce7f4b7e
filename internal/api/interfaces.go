// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/ml-punto-tech/sentiment-api/internal/batch"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
	"github.com/ml-punto-tech/sentiment-api/internal/predictor"
)

// SentimentHandler handles single-text predictions
type SentimentHandler interface {
	HandlePredict(c echo.Context) error
}

// BatchHandler handles file batches, synchronous and asynchronous
type BatchHandler interface {
	HandleBatch(c echo.Context) error
	HandleStartJob(c echo.Context) error
	HandleGetJob(c echo.Context) error
}

// StatsHandler handles recency-window statistics
type StatsHandler interface {
	HandleStats(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// BatchProcessor validates, extracts and runs uploaded files.
type BatchProcessor interface {
	Prepare(file *models.UploadedFile) ([]models.CandidateText, error)
	ProcessFile(ctx context.Context, file *models.UploadedFile) (*models.BatchResult, error)
}

// JobQueue runs prepared batches in the background.
type JobQueue interface {
	Start(fileName string, texts []models.CandidateText) *batch.Job
	Get(id string) (batch.Job, bool)
}

// StatsProvider returns a recency-window snapshot.
type StatsProvider interface {
	Snapshot(ctx context.Context, limit int) (models.StatsSnapshot, error)
}

// ModelChecker probes the prediction model.
type ModelChecker interface {
	Health(ctx context.Context) (predictor.HealthStatus, error)
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}
