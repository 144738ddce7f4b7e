// Package predictor talks to the external sentiment model.
package predictor

import (
	"context"
	"errors"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

var (
	// ErrUnavailable wraps every failure to obtain a usable prediction.
	ErrUnavailable = errors.New("sentiment model unavailable")
	// ErrMalformedResponse marks a response that decoded but is not a valid prediction.
	ErrMalformedResponse = errors.New("malformed prediction")
)

// Predictor classifies a single text.
type Predictor interface {
	Predict(ctx context.Context, text string) (models.Prediction, error)
}

// CheckPrediction rejects predictions with an empty label or a
// probability outside [0, 1].
func CheckPrediction(p models.Prediction) error {
	if p.Label == "" {
		return errors.New("empty label")
	}
	// NaN fails both comparisons.
	if !(p.Probability >= 0 && p.Probability <= 1) {
		return errors.New("probability out of range")
	}
	return nil
}
