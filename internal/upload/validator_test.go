package upload

import (
	"errors"
	"strings"
	"testing"

	"github.com/ml-punto-tech/sentiment-api/internal/logging"
	"github.com/ml-punto-tech/sentiment-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxSize = 1024

func newTestValidator(enforce bool) *Validator {
	return NewValidator(Limits{
		MaxFileSize:        testMaxSize,
		Extensions:         []string{".csv", "XLSX"},
		ContentTypes:       []string{"text/csv", "application/octet-stream"},
		EnforceContentType: enforce,
	}, logging.Discard())
}

func csvFile(name string, size int64) *models.UploadedFile {
	return &models.UploadedFile{
		Name:        name,
		Size:        size,
		ContentType: "text/csv",
		Content:     strings.NewReader("ignored"),
	}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		file    *models.UploadedFile
		wantErr any
	}{
		{name: "valid csv", file: csvFile("reviews.csv", 100)},
		{name: "exactly at limit", file: csvFile("reviews.csv", testMaxSize)},
		{name: "upper-case extension", file: csvFile("REVIEWS.CSV", 10)},
		{name: "extension normalised from config", file: csvFile("book.xlsx", 10)},
		{name: "nil file", file: nil, wantErr: &EmptyFileError{}},
		{name: "zero size", file: csvFile("reviews.csv", 0), wantErr: &EmptyFileError{}},
		{name: "one byte over limit", file: csvFile("reviews.csv", testMaxSize+1), wantErr: &FileTooLargeError{}},
		{name: "wrong extension", file: csvFile("reviews.txt", 10), wantErr: &InvalidExtensionError{}},
		{name: "missing filename", file: csvFile("", 10), wantErr: &InvalidExtensionError{}},
		{name: "extension only in the middle", file: csvFile("reviews.csv.exe", 10), wantErr: &InvalidExtensionError{}},
	}

	v := newTestValidator(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.file)
			switch want := tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *EmptyFileError:
				var target *EmptyFileError
				assert.True(t, errors.As(err, &target), "got %v", err)
			case *FileTooLargeError:
				var target *FileTooLargeError
				require.True(t, errors.As(err, &target), "got %v", err)
				assert.Equal(t, int64(testMaxSize), target.Limit)
			case *InvalidExtensionError:
				var target *InvalidExtensionError
				require.True(t, errors.As(err, &target), "got %v", err)
				assert.Equal(t, []string{".csv", ".xlsx"}, target.Allowed)
			default:
				t.Fatalf("unexpected want type %T", want)
			}
		})
	}
}

func TestValidator_FileTooLargeMessageCarriesLimit(t *testing.T) {
	v := NewValidator(Limits{MaxFileSize: 10 << 20, Extensions: []string{".csv"}}, logging.Discard())

	err := v.Validate(csvFile("big.csv", 10<<20+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10MB")
}

func TestValidator_ContentType(t *testing.T) {
	file := csvFile("reviews.csv", 10)
	file.ContentType = "application/json"

	t.Run("hint only by default", func(t *testing.T) {
		assert.NoError(t, newTestValidator(false).Validate(file))
	})

	t.Run("rejected when enforced", func(t *testing.T) {
		err := newTestValidator(true).Validate(file)
		var target *InvalidContentTypeError
		require.True(t, errors.As(err, &target), "got %v", err)
		assert.Equal(t, "application/json", target.ContentType)
	})

	t.Run("parameters are ignored", func(t *testing.T) {
		withCharset := csvFile("reviews.csv", 10)
		withCharset.ContentType = "text/csv; charset=utf-8"
		assert.NoError(t, newTestValidator(true).Validate(withCharset))
	})
}

func TestValidator_LimitsIsACopy(t *testing.T) {
	v := newTestValidator(false)
	limits := v.Limits()
	limits.Extensions[0] = ".exe"

	assert.Equal(t, ".csv", v.Limits().Extensions[0])
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "10MB", FormatSize(10<<20))
	assert.Equal(t, "2GB", FormatSize(2<<30))
	assert.Equal(t, "512KB", FormatSize(512<<10))
	assert.Equal(t, "1.5MB", FormatSize(3<<19))
	assert.Equal(t, "100 bytes", FormatSize(100))
}
