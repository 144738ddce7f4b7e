package parser

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ml-punto-tech/sentiment-api/internal/logging"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

func newFile(name string, r io.Reader) *models.UploadedFile {
	return &models.UploadedFile{Name: name, Size: 1, ContentType: "text/csv", Content: r}
}

func csvUpload(content string) *models.UploadedFile {
	return newFile("reviews.csv", strings.NewReader(content))
}

func textsOf(items []models.CandidateText) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain text`, `plain text`},
		{`  padded  `, `padded`},
		{`"quoted text"`, `quoted text`},
		{`"""hello, world"""`, `"hello, world"`},
		{`he said ""hi""`, `he said "hi"`},
		{`"only leading`, `"only leading`},
		{`" spaced inside "`, `spaced inside`},
		{`""`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("text,category"))
	assert.True(t, IsHeader("Comentario"))
	assert.True(t, IsHeader("USER FEEDBACK"))
	assert.True(t, IsHeader("mensajes"))
	assert.False(t, IsHeader("great product, would buy again"))
}

func TestCSVExtractor_Extract(t *testing.T) {
	ex := NewCSVExtractor(Options{MinTextLength: 10}, logging.Discard())

	t.Run("header and five valid lines", func(t *testing.T) {
		content := "text,category\n" +
			"The product arrived on time\n" +
			"Terrible customer service experience\n" +
			"It was okay, nothing special\n" +
			"I would definitely recommend it\n" +
			"Packaging was damaged on arrival\n"

		items, err := ex.Extract(csvUpload(content))
		require.NoError(t, err)
		require.Len(t, items, 5)
		assert.Equal(t, "The product arrived on time", items[0].Text)
		assert.Equal(t, 2, items[0].Line)
		assert.Equal(t, 6, items[4].Line)
	})

	t.Run("short lines are dropped", func(t *testing.T) {
		content := "comentario\nLong enough comment here\nshort\n"

		items, err := ex.Extract(csvUpload(content))
		require.NoError(t, err)
		assert.Equal(t, []string{"Long enough comment here"}, textsOf(items))
	})

	t.Run("quoted line with embedded comma", func(t *testing.T) {
		items, err := ex.Extract(csvUpload(`"""hello, world"""` + "\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{`"hello, world"`}, textsOf(items))
	})

	t.Run("blank lines skipped before header detection", func(t *testing.T) {
		content := "\n   \nmessage\nA perfectly fine review\n\n"

		items, err := ex.Extract(csvUpload(content))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 4, items[0].Line)
	})

	t.Run("header only checked on first line", func(t *testing.T) {
		content := "First review is great\nthis text mentions feedback\n"

		items, err := ex.Extract(csvUpload(content))
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("BOM is stripped", func(t *testing.T) {
		content := "\ufefftexto\nHola, el servicio fue excelente\n"

		items, err := ex.Extract(csvUpload(content))
		require.NoError(t, err)
		assert.Equal(t, []string{"Hola, el servicio fue excelente"}, textsOf(items))
	})

	t.Run("BOM without header", func(t *testing.T) {
		items, err := ex.Extract(csvUpload("\ufeffGreat value for money\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Great value for money"}, textsOf(items))
	})

	t.Run("min length counts characters not bytes", func(t *testing.T) {
		exact := NewCSVExtractor(Options{MinTextLength: 10}, logging.Discard())
		items, err := exact.Extract(csvUpload("ññññññññññ\n"))
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("CRLF line endings", func(t *testing.T) {
		items, err := ex.Extract(csvUpload("text\r\nWindows line endings here\r\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Windows line endings here"}, textsOf(items))
	})
}

func TestCSVExtractor_NoValidTexts(t *testing.T) {
	ex := NewCSVExtractor(Options{MinTextLength: 10}, logging.Discard())

	for name, content := range map[string]string{
		"empty":       "",
		"header only": "text\n",
		"all short":   "tiny\nsmall\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ex.Extract(csvUpload(content))
			var target *NoValidTextsError
			require.True(t, errors.As(err, &target), "got %v", err)
			assert.Equal(t, 10, target.MinLength)
		})
	}
}

func TestCSVExtractor_ReadError(t *testing.T) {
	boom := errors.New("disk went away")
	ex := NewCSVExtractor(Options{MinTextLength: 1}, logging.Discard())

	r := io.MultiReader(strings.NewReader("first line is fine\n"), iotest.ErrReader(boom))
	_, err := ex.Extract(newFile("reviews.csv", r))

	var readErr *CsvReadError
	require.True(t, errors.As(err, &readErr), "got %v", err)
	assert.ErrorIs(t, err, boom)

	var noTexts *NoValidTextsError
	assert.False(t, errors.As(err, &noTexts))
}

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestXLSXExtractor_Extract(t *testing.T) {
	ex := NewXLSXExtractor(Options{MinTextLength: 10}, logging.Discard())

	t.Run("rows are joined and cleaned", func(t *testing.T) {
		buf := buildWorkbook(t, [][]any{
			{"Comentario"},
			{"Excelente atención al cliente"},
			{"Bad", "delivery, slow"},
			{"short"},
			{`"Quoted cell value"`},
		})

		items, err := ex.Extract(newFile("reviews.xlsx", buf))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Excelente atención al cliente",
			"Bad,delivery, slow",
			"Quoted cell value",
		}, textsOf(items))
		assert.Equal(t, 2, items[0].Line)
	})

	t.Run("no valid texts", func(t *testing.T) {
		buf := buildWorkbook(t, [][]any{{"text"}, {"tiny"}})

		_, err := ex.Extract(newFile("reviews.xlsx", buf))
		var target *NoValidTextsError
		assert.True(t, errors.As(err, &target), "got %v", err)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ex.Extract(newFile("reviews.xlsx", strings.NewReader("definitely not a zip")))
		var target *CsvReadError
		assert.True(t, errors.As(err, &target), "got %v", err)
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{MinTextLength: 5}, logging.Discard())

	assert.Equal(t, "xlsx", r.For("Book.XLSX").Name())
	assert.Equal(t, "csv", r.For("reviews.csv").Name())
	assert.Equal(t, "csv", r.For("notes.txt").Name())

	items, err := r.Extract(csvUpload("text\nhello there\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello there"}, textsOf(items))
}

type stubExtractor struct{ name string }

func (s stubExtractor) Name() string { return s.name }

func (s stubExtractor) Extract(*models.UploadedFile) ([]models.CandidateText, error) {
	return []models.CandidateText{{Text: s.name, Line: 1}}, nil
}

func TestRegistry_IsExtractor(t *testing.T) {
	var ex Extractor = NewRegistry(Options{MinTextLength: 5}, logging.Discard())

	assert.Equal(t, "registry", ex.Name())
	items, err := ex.Extract(csvUpload("hello there\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello there"}, textsOf(items))
}

func TestRegistry_OverlappingSuffixes(t *testing.T) {
	r := NewRegistry(Options{MinTextLength: 5}, logging.Discard())
	r.Register(".tar.gz", stubExtractor{name: "tarball"})
	r.Register(".gz", stubExtractor{name: "gzip"})

	for i := 0; i < 20; i++ {
		assert.Equal(t, "tarball", r.For("dump.tar.gz").Name())
		assert.Equal(t, "gzip", r.For("dump.gz").Name())
	}

	items, err := r.Extract(newFile("dump.TAR.GZ", strings.NewReader("")))
	require.NoError(t, err)
	assert.Equal(t, []string{"tarball"}, textsOf(items))
}
