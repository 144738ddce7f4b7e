// Package stats aggregates prediction outcomes into summary statistics.
package stats

import "github.com/ml-punto-tech/sentiment-api/internal/models"

// SummarizeBatch counts outcomes of a processed batch.
// Successful items with an unrecognized label are counted as successful
// but land in no label bucket.
func SummarizeBatch(results []models.BatchItemResult) models.BatchSummary {
	summary := models.BatchSummary{TotalProcessed: len(results)}

	for _, r := range results {
		if !r.Outcome.Succeeded() {
			summary.Failed++
			continue
		}
		summary.Successful++

		switch r.Outcome.ParsedLabel() {
		case models.LabelPositive:
			summary.Positives++
		case models.LabelNeutral:
			summary.Neutrals++
		case models.LabelNegative:
			summary.Negatives++
		}
	}

	return summary
}

// SummarizeWindow aggregates at most limit entries of a recency window.
// An empty window yields a zero snapshot.
func SummarizeWindow(window []models.PredictionLog, limit int) models.StatsSnapshot {
	if limit >= 0 && len(window) > limit {
		window = window[:limit]
	}
	if len(window) == 0 {
		return models.StatsSnapshot{}
	}

	snap := models.StatsSnapshot{Total: len(window)}
	for _, entry := range window {
		switch models.ParseLabel(entry.Label) {
		case models.LabelPositive:
			snap.Positive++
		case models.LabelNeutral:
			snap.Neutral++
		case models.LabelNegative:
			snap.Negative++
		}
	}

	total := float64(snap.Total)
	snap.PositivePercentage = float64(snap.Positive) * 100.0 / total
	snap.NeutralPercentage = float64(snap.Neutral) * 100.0 / total
	snap.NegativePercentage = float64(snap.Negative) * 100.0 / total
	return snap
}
