package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

func success(label string) models.BatchItemResult {
	return models.BatchItemResult{Outcome: models.Success(models.Prediction{Label: label, Probability: 0.9})}
}

func failure() models.BatchItemResult {
	return models.BatchItemResult{Outcome: models.Failure("model unavailable")}
}

func window(labels ...string) []models.PredictionLog {
	out := make([]models.PredictionLog, len(labels))
	for i, l := range labels {
		out[i] = models.PredictionLog{ID: int64(len(labels) - i), Label: l, CreatedAt: time.Now()}
	}
	return out
}

func TestSummarizeBatch(t *testing.T) {
	tests := []struct {
		name    string
		results []models.BatchItemResult
		want    models.BatchSummary
	}{
		{
			name: "empty",
			want: models.BatchSummary{},
		},
		{
			name: "one failure in five",
			results: []models.BatchItemResult{
				success("positivo"), success("negativo"), failure(), success("neutral"), success("Positivo"),
			},
			want: models.BatchSummary{TotalProcessed: 5, Successful: 4, Failed: 1, Positives: 2, Neutrals: 1, Negatives: 1},
		},
		{
			name:    "unrecognized label is successful but unbucketed",
			results: []models.BatchItemResult{success("mixed"), success("negative")},
			want:    models.BatchSummary{TotalProcessed: 2, Successful: 2, Negatives: 1},
		},
		{
			name:    "all failed",
			results: []models.BatchItemResult{failure(), failure()},
			want:    models.BatchSummary{TotalProcessed: 2, Failed: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeBatch(tt.results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.TotalProcessed, got.Successful+got.Failed)
			assert.LessOrEqual(t, got.Positives+got.Neutrals+got.Negatives, got.Successful)
		})
	}
}

func TestSummarizeWindow(t *testing.T) {
	t.Run("six two two", func(t *testing.T) {
		w := window("positivo", "positivo", "positivo", "positivo", "positivo", "positivo",
			"neutral", "neutral", "negativo", "negativo")

		snap := SummarizeWindow(w, 10)
		assert.Equal(t, 10, snap.Total)
		assert.Equal(t, 6, snap.Positive)
		assert.InDelta(t, 60.0, snap.PositivePercentage, 1e-9)
		assert.InDelta(t, 20.0, snap.NeutralPercentage, 1e-9)
		assert.InDelta(t, 20.0, snap.NegativePercentage, 1e-9)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Equal(t, models.StatsSnapshot{}, SummarizeWindow(nil, 10))
	})

	t.Run("limit truncates", func(t *testing.T) {
		w := window("negativo", "negativo", "positivo", "positivo", "positivo")

		snap := SummarizeWindow(w, 2)
		assert.Equal(t, 2, snap.Total)
		assert.Equal(t, 2, snap.Negative)
		assert.InDelta(t, 100.0, snap.NegativePercentage, 1e-9)
	})

	t.Run("unrecognized labels count toward total only", func(t *testing.T) {
		snap := SummarizeWindow(window("positivo", "ERROR", "???", "neutro"), 10)
		assert.Equal(t, 4, snap.Total)
		assert.InDelta(t, 25.0, snap.PositivePercentage, 1e-9)
		assert.InDelta(t, 25.0, snap.NeutralPercentage, 1e-9)
		assert.Zero(t, snap.NegativePercentage)
	})
}

type fakeReader struct {
	entries []models.PredictionLog
	err     error
	limits  []int
}

func (f *fakeReader) Recent(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func TestService_Snapshot(t *testing.T) {
	reader := &fakeReader{entries: window("positivo", "negativo", "positivo", "neutral", "positivo", "negativo")}

	snap, err := NewService(reader).Snapshot(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 3, snap.Positive)
	assert.Equal(t, []int{5}, reader.limits, "exactly one bounded read")
}

func TestService_SnapshotStoreError(t *testing.T) {
	boom := errors.New("db down")

	_, err := NewService(&fakeReader{err: boom}).Snapshot(context.Background(), 10)
	assert.ErrorIs(t, err, boom)
}
