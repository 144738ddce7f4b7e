package predictor

import (
	"context"
	"log/slog"
	"time"

	"github.com/ml-punto-tech/sentiment-api/internal/metrics"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

const appendTimeout = 5 * time.Second

// LogAppender persists predictions.
type LogAppender interface {
	Append(ctx context.Context, entry *models.PredictionLog) error
}

// Recorder persists every successful prediction of the wrapped Predictor.
// Store failures are logged and counted; they never fail the prediction.
type Recorder struct {
	next   Predictor
	store  LogAppender
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder wraps next so its successful predictions are appended to store.
func NewRecorder(next Predictor, store LogAppender, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{next: next, store: store, logger: logger, now: time.Now}
}

func (r *Recorder) Predict(ctx context.Context, text string) (models.Prediction, error) {
	pred, err := r.next.Predict(ctx, text)
	if err != nil {
		return pred, err
	}

	entry := &models.PredictionLog{
		Text:        text,
		Label:       pred.Label,
		Probability: pred.Probability,
		CreatedAt:   r.now().UTC(),
	}

	// The prediction already happened; a cancelled caller must not lose the log row.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()

	if err := r.store.Append(appendCtx, entry); err != nil {
		metrics.RecordStoreError("append")
		r.logger.Error("failed to persist prediction", "error", err, "label", pred.Label)
	}
	return pred, nil
}
