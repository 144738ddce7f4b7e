// Package parser extracts candidate texts from uploaded tabular files.
package parser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Extractor turns an uploaded file into an ordered list of candidate texts.
type Extractor interface {
	// Name returns the unique name of the extractor.
	Name() string
	// Extract reads the file content and returns the cleaned texts.
	Extract(file *models.UploadedFile) ([]models.CandidateText, error)
}

// Options holds the extraction settings.
type Options struct {
	MinTextLength int
}

const utf8BOM = "\ufeff"

// headerTokens mark the first line as a column header.
var headerTokens = []string{"texto", "text", "mensaje", "message", "comentario", "comment", "feedback"}

// IsHeader reports whether line looks like a column header.
func IsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, token := range headerTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// CleanText strips one layer of surrounding double quotes, collapses
// escaped quotes and trims the result.
func CleanText(line string) string {
	s := strings.TrimSpace(line)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `""`, `"`)
	return strings.TrimSpace(s)
}

// collector applies the shared line rules: skip blanks, drop a leading
// header, clean, and filter short texts.
type collector struct {
	opts       Options
	logger     *slog.Logger
	source     string
	texts      []models.CandidateText
	seenLine   bool
	shortCount int
}

func newCollector(opts Options, logger *slog.Logger, source string) *collector {
	return &collector{opts: opts, logger: logger, source: source}
}

func (c *collector) add(line string, lineNum int) {
	if lineNum == 1 {
		line = strings.TrimPrefix(line, utf8BOM)
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if !c.seenLine {
		c.seenLine = true
		if IsHeader(trimmed) {
			c.logger.Debug("skipping header line", "file", c.source, "line", lineNum)
			return
		}
	}

	text := CleanText(trimmed)
	if utf8.RuneCountInString(text) < c.opts.MinTextLength {
		c.shortCount++
		c.logger.Warn("text shorter than minimum length, skipping",
			"file", c.source,
			"line", lineNum,
			"length", utf8.RuneCountInString(text),
			"min_length", c.opts.MinTextLength)
		return
	}

	c.texts = append(c.texts, models.CandidateText{Text: text, Line: lineNum})
}

func (c *collector) result() ([]models.CandidateText, error) {
	if len(c.texts) == 0 {
		return nil, &NoValidTextsError{MinLength: c.opts.MinTextLength}
	}
	c.logger.Info("extracted texts",
		"file", c.source,
		"count", len(c.texts),
		"skipped_short", c.shortCount)
	return c.texts, nil
}
