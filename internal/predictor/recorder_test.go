package predictor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ml-punto-tech/sentiment-api/internal/logging"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Func adapts a plain function to the Predictor interface.
type Func func(ctx context.Context, text string) (models.Prediction, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, text string) (models.Prediction, error) {
	return f(ctx, text)
}

type captureStore struct {
	mu      sync.Mutex
	entries []*models.PredictionLog
	err     error
}

func (s *captureStore) Append(ctx context.Context, entry *models.PredictionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestRecorder_PersistsSuccessfulPredictions(t *testing.T) {
	store := &captureStore{}
	next := Func(func(ctx context.Context, text string) (models.Prediction, error) {
		return models.Prediction{Label: "positivo", Probability: 0.8}, nil
	})

	pred, err := NewRecorder(next, store, logging.Discard()).Predict(context.Background(), "great service")
	require.NoError(t, err)
	assert.Equal(t, "positivo", pred.Label)

	require.Len(t, store.entries, 1)
	assert.Equal(t, "great service", store.entries[0].Text)
	assert.Equal(t, 0.8, store.entries[0].Probability)
	assert.False(t, store.entries[0].CreatedAt.IsZero())
}

func TestRecorder_SkipsFailures(t *testing.T) {
	store := &captureStore{}
	next := Func(func(ctx context.Context, text string) (models.Prediction, error) {
		return models.Prediction{}, ErrUnavailable
	})

	_, err := NewRecorder(next, store, logging.Discard()).Predict(context.Background(), "any")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, store.entries)
}

func TestRecorder_StoreFailureIsNotFatal(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	next := Func(func(ctx context.Context, text string) (models.Prediction, error) {
		return models.Prediction{Label: "negativo", Probability: 0.6}, nil
	})

	pred, err := NewRecorder(next, store, logging.Discard()).Predict(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, "negativo", pred.Label)
}

func TestRecorder_PersistsAfterCallerCancels(t *testing.T) {
	store := &captureStore{}
	ctx, cancel := context.WithCancel(context.Background())
	next := Func(func(_ context.Context, text string) (models.Prediction, error) {
		cancel()
		return models.Prediction{Label: "neutral", Probability: 0.4}, nil
	})

	_, err := NewRecorder(next, store, logging.Discard()).Predict(ctx, "any")
	require.NoError(t, err)
	assert.Len(t, store.entries, 1)
}
