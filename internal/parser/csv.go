package parser

import (
	"bufio"
	"log/slog"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// CSVExtractor treats each line of a text file as one candidate text.
// Commas are not split: a line is a whole comment.
type CSVExtractor struct {
	opts   Options
	logger *slog.Logger
}

func NewCSVExtractor(opts Options, logger *slog.Logger) *CSVExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExtractor{opts: opts, logger: logger}
}

func (p *CSVExtractor) Name() string {
	return "csv"
}

func (p *CSVExtractor) Extract(file *models.UploadedFile) ([]models.CandidateText, error) {
	c := newCollector(p.opts, p.logger, file.Name)

	scanner := bufio.NewScanner(file.Content)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		c.add(scanner.Text(), lineNum)
	}
	if err := scanner.Err(); err != nil {
		return nil, &CsvReadError{Line: lineNum, Err: err}
	}

	return c.result()
}
