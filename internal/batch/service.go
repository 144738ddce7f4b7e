package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ml-punto-tech/sentiment-api/internal/metrics"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
	"github.com/ml-punto-tech/sentiment-api/internal/parser"
	"github.com/ml-punto-tech/sentiment-api/internal/stats"
	"github.com/ml-punto-tech/sentiment-api/internal/upload"
)

// ErrInternal wraps unexpected faults while assembling a batch result.
var ErrInternal = errors.New("internal batch processing error")

// FileValidator checks an upload before it is read.
type FileValidator interface {
	Validate(file *models.UploadedFile) error
}

// Service validates, extracts, predicts and summarizes uploaded files.
type Service struct {
	validator    FileValidator
	extractor    parser.Extractor
	orchestrator *Orchestrator
	logger       *slog.Logger
	summarize    func([]models.BatchItemResult) models.BatchSummary
}

func NewService(v FileValidator, ex parser.Extractor, orch *Orchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		validator:    v,
		extractor:    ex,
		orchestrator: orch,
		logger:       logger,
		summarize:    stats.SummarizeBatch,
	}
}

// Prepare validates the file and extracts its texts. Every client input
// fault is reported here, before any prediction is attempted.
func (s *Service) Prepare(file *models.UploadedFile) ([]models.CandidateText, error) {
	if err := s.validator.Validate(file); err != nil {
		metrics.RecordRejectedUpload(rejectReason(err))
		return nil, err
	}

	texts, err := s.extractor.Extract(file)
	if err != nil {
		metrics.RecordRejectedUpload(rejectReason(err))
		return nil, err
	}
	return texts, nil
}

// Run predicts texts and summarizes the outcomes.
func (s *Service) Run(ctx context.Context, texts []models.CandidateText, progress ProgressFunc) (result *models.BatchResult, err error) {
	id := uuid.New().String()
	start := time.Now()
	logger := s.logger.With("batch_id", id)
	logger.Info("batch started", "texts", len(texts))

	items, err := s.orchestrator.Process(ctx, texts, progress)
	if err != nil {
		metrics.RecordBatch("cancelled", len(texts))
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while summarizing batch", "panic", r)
			metrics.RecordBatch("error", len(texts))
			result, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	summary := s.summarize(items)
	result = &models.BatchResult{
		ID:        id,
		Summary:   summary,
		Items:     items,
		StartedAt: start,
		Duration:  time.Since(start),
	}

	metrics.RecordBatch("complete", len(texts))
	logger.Info("batch completed",
		"total", summary.TotalProcessed,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration", result.Duration)
	return result, nil
}

// ProcessFile runs Prepare and Run.
func (s *Service) ProcessFile(ctx context.Context, file *models.UploadedFile) (*models.BatchResult, error) {
	texts, err := s.Prepare(file)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, texts, nil)
}

func rejectReason(err error) string {
	var (
		empty       *upload.EmptyFileError
		tooLarge    *upload.FileTooLargeError
		badExt      *upload.InvalidExtensionError
		badType     *upload.InvalidContentTypeError
		noTexts     *parser.NoValidTextsError
		readFailure *parser.CsvReadError
	)
	switch {
	case errors.As(err, &empty):
		return "empty_file"
	case errors.As(err, &tooLarge):
		return "file_too_large"
	case errors.As(err, &badExt):
		return "invalid_extension"
	case errors.As(err, &badType):
		return "invalid_content_type"
	case errors.As(err, &noTexts):
		return "no_valid_texts"
	case errors.As(err, &readFailure):
		return "read_error"
	default:
		return "other"
	}
}
