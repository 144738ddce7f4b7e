package models

import "time"

// Prediction is what the model returns for a single text.
type Prediction struct {
	Label       string  `json:"label" msgpack:"label"`
	Probability float64 `json:"probability" msgpack:"probability"`
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
)

// Outcome is the result of attempting one prediction: either a success
// carrying a label and probability, or a failure carrying a reason.
type Outcome struct {
	Kind        OutcomeKind
	Label       string
	Probability float64
	Reason      string
}

// Success builds a successful outcome.
func Success(p Prediction) Outcome {
	return Outcome{Kind: OutcomeSuccess, Label: p.Label, Probability: p.Probability}
}

// Failure builds a failed outcome. Failures never carry a probability.
func Failure(reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// ParsedLabel returns the sentiment class of a successful outcome.
func (o Outcome) ParsedLabel() Label {
	if !o.Succeeded() {
		return LabelUnrecognized
	}
	return ParseLabel(o.Label)
}

// PredictionLog is one persisted prediction.
type PredictionLog struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Label       string    `json:"label"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"createdAt"`
}
