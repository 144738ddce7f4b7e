package upload

import (
	"fmt"
	"strings"
)

// EmptyFileError is returned when no file, or a zero-byte file, was uploaded.
type EmptyFileError struct{}

func (e *EmptyFileError) Error() string {
	return "the uploaded file is empty"
}

// FileTooLargeError is returned when the declared size exceeds the limit.
type FileTooLargeError struct {
	Limit int64
	Size  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("the file must not exceed %s (got %s)", FormatSize(e.Limit), FormatSize(e.Size))
}

// InvalidExtensionError is returned when the filename suffix is not allowed.
type InvalidExtensionError struct {
	Filename string
	Allowed  []string
}

func (e *InvalidExtensionError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("the file has no name; allowed extensions: %s", strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("file %q must have one of these extensions: %s", e.Filename, strings.Join(e.Allowed, ", "))
}

// InvalidContentTypeError is returned, when content types are enforced,
// for a declared content type outside the allow-list.
type InvalidContentTypeError struct {
	ContentType string
	Allowed     []string
}

func (e *InvalidContentTypeError) Error() string {
	return fmt.Sprintf("content type %q is not accepted; allowed: %s", e.ContentType, strings.Join(e.Allowed, ", "))
}

// FormatSize renders a byte count in binary units, e.g. "10MB".
func FormatSize(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit*unit && n%(unit*unit*unit) == 0:
		return fmt.Sprintf("%dGB", n/(unit*unit*unit))
	case n >= unit*unit && n%(unit*unit) == 0:
		return fmt.Sprintf("%dMB", n/(unit*unit))
	case n >= unit*unit:
		return fmt.Sprintf("%.1fMB", float64(n)/(unit*unit))
	case n >= unit && n%unit == 0:
		return fmt.Sprintf("%dKB", n/unit)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
