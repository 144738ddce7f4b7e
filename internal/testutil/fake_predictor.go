// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Response scripts the fake's answer for one text.
type Response struct {
	Prediction models.Prediction
	Err        error
	Delay      time.Duration
	Panic      any
}

// FakePredictor implements predictor.Predictor with scripted responses.
// Texts without a script get Default.
type FakePredictor struct {
	Default Response

	mu       sync.Mutex
	byText   map[string]Response
	seen     []string
	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

// NewFakePredictor returns a fake answering "positivo" with probability 0.9.
func NewFakePredictor() *FakePredictor {
	return &FakePredictor{
		Default: Response{Prediction: models.Prediction{Label: "positivo", Probability: 0.9}},
		byText:  make(map[string]Response),
	}
}

// On scripts the response for text.
func (f *FakePredictor) On(text string, r Response) *FakePredictor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byText[text] = r
	return f
}

func (f *FakePredictor) Predict(ctx context.Context, text string) (models.Prediction, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxSeen.Load()
		if current <= peak || f.maxSeen.CompareAndSwap(peak, current) {
			break
		}
	}

	f.mu.Lock()
	f.seen = append(f.seen, text)
	r, ok := f.byText[text]
	f.mu.Unlock()
	if !ok {
		r = f.Default
	}

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return models.Prediction{}, ctx.Err()
		}
	}
	if r.Panic != nil {
		panic(r.Panic)
	}
	if r.Err != nil {
		return models.Prediction{}, r.Err
	}
	return r.Prediction, nil
}

// Calls returns how many predictions were requested.
func (f *FakePredictor) Calls() int {
	return int(f.calls.Load())
}

// MaxConcurrent returns the highest number of simultaneous calls observed.
func (f *FakePredictor) MaxConcurrent() int {
	return int(f.maxSeen.Load())
}

// Seen returns the texts received, in call order.
func (f *FakePredictor) Seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}
