package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// XLSXExtractor reads the first worksheet of a workbook. The non-empty
// cells of each row, joined by commas, form one line.
type XLSXExtractor struct {
	opts   Options
	logger *slog.Logger
}

func NewXLSXExtractor(opts Options, logger *slog.Logger) *XLSXExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExtractor{opts: opts, logger: logger}
}

func (p *XLSXExtractor) Name() string {
	return "xlsx"
}

func (p *XLSXExtractor) Extract(file *models.UploadedFile) ([]models.CandidateText, error) {
	wb, err := excelize.OpenReader(file.Content)
	if err != nil {
		return nil, &CsvReadError{Line: 0, Err: err}
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &CsvReadError{Line: 0, Err: errors.New("workbook has no worksheets")}
	}

	rows, err := wb.Rows(sheets[0])
	if err != nil {
		return nil, &CsvReadError{Line: 0, Err: err}
	}
	defer rows.Close()

	c := newCollector(p.opts, p.logger, file.Name)
	rowNum := 0
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns()
		if err != nil {
			return nil, &CsvReadError{Line: rowNum - 1, Err: err}
		}
		c.add(joinCells(cols), rowNum)
	}
	if err := rows.Error(); err != nil {
		return nil, &CsvReadError{Line: rowNum, Err: err}
	}

	return c.result()
}

func joinCells(cols []string) string {
	cells := make([]string, 0, len(cols))
	for _, col := range cols {
		if col = strings.TrimSpace(col); col != "" {
			cells = append(cells, col)
		}
	}
	return strings.Join(cells, ",")
}
