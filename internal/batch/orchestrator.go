// Package batch runs uploaded files through the prediction model.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ml-punto-tech/sentiment-api/internal/metrics"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
	"github.com/ml-punto-tech/sentiment-api/internal/predictor"
)

// ReasonCancelled is the failure reason of items never dispatched
// because the batch was cancelled.
const ReasonCancelled = "batch cancelled before dispatch"

// ProgressFunc is called after each item completes.
type ProgressFunc func(done, total int)

// Options configures the worker pool.
type Options struct {
	Workers     int
	ItemTimeout time.Duration
}

// Orchestrator predicts every text of a batch concurrently.
// A failing item never affects the others.
type Orchestrator struct {
	predictor predictor.Predictor
	opts      Options
	logger    *slog.Logger
}

func NewOrchestrator(p predictor.Predictor, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = 10 * time.Second
	}
	return &Orchestrator{predictor: p, opts: opts, logger: logger}
}

// Process returns one result per text, in input order. The error is
// non-nil only when ctx is cancelled; results are still complete, with
// undispatched items marked as failed.
func (o *Orchestrator) Process(ctx context.Context, texts []models.CandidateText, progress ProgressFunc) ([]models.BatchItemResult, error) {
	results := make([]models.BatchItemResult, len(texts))
	total := len(texts)

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)

	var done atomic.Int64
	dispatched := 0
	for i := range texts {
		if ctx.Err() != nil {
			break
		}
		dispatched++

		i := i
		g.Go(func() error {
			results[i].Text = texts[i]
			if ctx.Err() != nil {
				results[i].Outcome = models.Failure(ReasonCancelled)
				return nil
			}

			results[i].Outcome = o.predictOne(ctx, texts[i])
			if progress != nil {
				progress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := dispatched; i < total; i++ {
		results[i] = models.BatchItemResult{Text: texts[i], Outcome: models.Failure(ReasonCancelled)}
	}

	if err := ctx.Err(); err != nil {
		o.logger.Warn("batch cancelled",
			"completed", done.Load(),
			"total", total)
		return results, err
	}
	return results, nil
}

type predictResult struct {
	pred models.Prediction
	err  error
}

// predictOne runs one prediction in its own goroutine so a misbehaving
// predictor can't outlive the item timeout or crash the batch.
func (o *Orchestrator) predictOne(ctx context.Context, text models.CandidateText) models.Outcome {
	itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.ItemTimeout)
	defer cancel()

	start := time.Now()
	ch := make(chan predictResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("panic during prediction", "line", text.Line, "panic", r)
				ch <- predictResult{err: fmt.Errorf("internal error: %v", r)}
			}
		}()
		pred, err := o.predictor.Predict(itemCtx, text.Text)
		ch <- predictResult{pred: pred, err: err}
	}()

	var res predictResult
	select {
	case res = <-ch:
	case <-itemCtx.Done():
		res = predictResult{err: itemCtx.Err()}
	}

	outcome := toOutcome(res, o.opts.ItemTimeout)
	metrics.RecordPrediction(metrics.PathBatch, outcome.Succeeded(), time.Since(start).Seconds())
	if !outcome.Succeeded() {
		o.logger.Debug("batch item failed", "line", text.Line, "reason", outcome.Reason)
	} else if !outcome.ParsedLabel().Known() {
		o.logger.Warn("unrecognized sentiment label", "line", text.Line, "label", outcome.Label)
	}
	return outcome
}

func toOutcome(res predictResult, timeout time.Duration) models.Outcome {
	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return models.Failure(fmt.Sprintf("prediction timed out after %s", timeout))
		}
		return models.Failure(res.err.Error())
	}
	if err := predictor.CheckPrediction(res.pred); err != nil {
		return models.Failure(fmt.Sprintf("malformed prediction: %v", err))
	}
	return models.Success(res.pred)
}
