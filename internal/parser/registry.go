package parser

import (
	"log/slog"
	"strings"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

var _ Extractor = (*Registry)(nil)

type registration struct {
	ext       string
	extractor Extractor
}

// Registry picks an extractor by file extension.
// Registrations are matched in the order they were added.
type Registry struct {
	entries  []registration
	fallback Extractor
}

// NewRegistry returns a registry with the CSV line extractor as fallback
// and the XLSX extractor registered for ".xlsx".
func NewRegistry(opts Options, logger *slog.Logger) *Registry {
	r := &Registry{fallback: NewCSVExtractor(opts, logger)}
	r.Register(".xlsx", NewXLSXExtractor(opts, logger))
	return r
}

// Register adds an extractor for an extension.
func (r *Registry) Register(ext string, e Extractor) {
	r.entries = append(r.entries, registration{ext: strings.ToLower(ext), extractor: e})
}

// Name identifies the registry as an extractor.
func (r *Registry) Name() string {
	return "registry"
}

// For returns the extractor for the given filename.
func (r *Registry) For(filename string) Extractor {
	lower := strings.ToLower(filename)
	for _, entry := range r.entries {
		if strings.HasSuffix(lower, entry.ext) {
			return entry.extractor
		}
	}
	return r.fallback
}

// Extract dispatches to the extractor matching the file name.
func (r *Registry) Extract(file *models.UploadedFile) ([]models.CandidateText, error) {
	return r.For(file.Name).Extract(file)
}
