// Package models contains domain types for the sentiment API.
package models

import "strings"

// Label is one of the three sentiment classes, or Unrecognized.
type Label int

const (
	LabelUnrecognized Label = iota
	LabelPositive
	LabelNeutral
	LabelNegative
)

// ErrorLabel marks a failed item in batch responses.
const ErrorLabel = "ERROR"

// Known reports whether l is one of the three sentiment classes.
func (l Label) Known() bool {
	return l != LabelUnrecognized
}

// ParseLabel maps a raw label, as returned by the model or stored in the
// prediction log, to a Label. Comparison is trimmed and case-insensitive.
// The model answers in Spanish; English names are accepted too.
func ParseLabel(raw string) Label {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positivo", "positive":
		return LabelPositive
	case "neutral", "neutro":
		return LabelNeutral
	case "negativo", "negative":
		return LabelNegative
	default:
		return LabelUnrecognized
	}
}
