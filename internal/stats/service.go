package stats

import (
	"context"
	"fmt"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Bounds for the recency window size.
const (
	MinWindow     = 5
	MaxWindow     = 100
	DefaultWindow = 10
)

// RecentReader reads the newest prediction log entries.
type RecentReader interface {
	Recent(ctx context.Context, limit int) ([]models.PredictionLog, error)
}

// Service serves recency-window statistics.
type Service struct {
	store RecentReader
}

func NewService(store RecentReader) *Service {
	return &Service{store: store}
}

// Snapshot performs one bounded read of the newest limit entries and
// aggregates them.
func (s *Service) Snapshot(ctx context.Context, limit int) (models.StatsSnapshot, error) {
	window, err := s.store.Recent(ctx, limit)
	if err != nil {
		return models.StatsSnapshot{}, fmt.Errorf("reading recent predictions: %w", err)
	}
	return SummarizeWindow(window, limit), nil
}
