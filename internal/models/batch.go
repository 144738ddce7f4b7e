package models

import (
	"io"
	"time"
)

// UploadedFile is a tabular file received in a batch request.
// Content is consumed once, by extraction.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// CandidateText is a cleaned text extracted from one input line.
// Line is the 1-based source line (or spreadsheet row) for diagnostics.
type CandidateText struct {
	Text string
	Line int
}

// BatchItemResult pairs an extracted text with its prediction outcome.
type BatchItemResult struct {
	Text    CandidateText
	Outcome Outcome
}

// BatchSummary holds exact counts over a batch.
// Successful+Failed == TotalProcessed.
type BatchSummary struct {
	TotalProcessed int `json:"totalProcessed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	Positives      int `json:"totalPositives"`
	Neutrals       int `json:"totalNeutrals"`
	Negatives      int `json:"totalNegatives"`
}

// BatchResult is the outcome of one processed batch.
type BatchResult struct {
	ID        string
	Summary   BatchSummary
	Items     []BatchItemResult
	StartedAt time.Time
	Duration  time.Duration
}

// StatsSnapshot aggregates a recency window of persisted predictions.
type StatsSnapshot struct {
	Total              int     `json:"total" msgpack:"total"`
	Positive           int     `json:"positive" msgpack:"positive"`
	Neutral            int     `json:"neutral" msgpack:"neutral"`
	Negative           int     `json:"negative" msgpack:"negative"`
	PositivePercentage float64 `json:"positivePercentage" msgpack:"positivePercentage"`
	NeutralPercentage  float64 `json:"neutralPercentage" msgpack:"neutralPercentage"`
	NegativePercentage float64 `json:"negativePercentage" msgpack:"negativePercentage"`
}
