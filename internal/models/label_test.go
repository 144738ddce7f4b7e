package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want Label
	}{
		{"positivo", LabelPositive},
		{"POSITIVO", LabelPositive},
		{"  Positive ", LabelPositive},
		{"neutral", LabelNeutral},
		{"Neutro", LabelNeutral},
		{"negativo", LabelNegative},
		{"NEGATIVE", LabelNegative},
		{"", LabelUnrecognized},
		{"ERROR", LabelUnrecognized},
		{"mixed", LabelUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabel(tt.raw))
		})
	}
}

func TestLabel_Known(t *testing.T) {
	assert.True(t, LabelPositive.Known())
	assert.True(t, LabelNeutral.Known())
	assert.True(t, LabelNegative.Known())
	assert.False(t, LabelUnrecognized.Known())
	assert.False(t, ParseLabel("mixed").Known())
}

func TestOutcome(t *testing.T) {
	ok := Success(Prediction{Label: "Positivo", Probability: 0.8})
	assert.True(t, ok.Succeeded())
	assert.Equal(t, LabelPositive, ok.ParsedLabel())

	failed := Failure("timeout")
	assert.False(t, failed.Succeeded())
	assert.Equal(t, LabelUnrecognized, failed.ParsedLabel())
	assert.Zero(t, failed.Probability)
}
