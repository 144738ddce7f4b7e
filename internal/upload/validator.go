package upload

import (
	"log/slog"
	"mime"
	"strings"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Limits holds the constraints an uploaded file must satisfy.
type Limits struct {
	MaxFileSize        int64
	Extensions         []string
	ContentTypes       []string
	EnforceContentType bool
}

// Validator gatekeeps uploaded files before any processing starts.
// It only looks at declared metadata, never at the content.
type Validator struct {
	limits Limits
	logger *slog.Logger
}

// NewValidator creates a validator. Extensions and content types are
// normalised to lower case and copied.
func NewValidator(limits Limits, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	normalized := Limits{
		MaxFileSize:        limits.MaxFileSize,
		EnforceContentType: limits.EnforceContentType,
	}
	for _, ext := range limits.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized.Extensions = append(normalized.Extensions, ext)
	}
	for _, ct := range limits.ContentTypes {
		if ct = strings.ToLower(strings.TrimSpace(ct)); ct != "" {
			normalized.ContentTypes = append(normalized.ContentTypes, ct)
		}
	}

	return &Validator{limits: normalized, logger: logger}
}

// Limits returns a copy of the configured limits.
func (v *Validator) Limits() Limits {
	l := v.limits
	l.Extensions = append([]string(nil), v.limits.Extensions...)
	l.ContentTypes = append([]string(nil), v.limits.ContentTypes...)
	return l
}

// Validate checks the file against the configured limits.
func (v *Validator) Validate(file *models.UploadedFile) error {
	if file == nil || file.Size <= 0 {
		return &EmptyFileError{}
	}

	if file.Size > v.limits.MaxFileSize {
		return &FileTooLargeError{Limit: v.limits.MaxFileSize, Size: file.Size}
	}

	if !v.hasAllowedExtension(file.Name) {
		return &InvalidExtensionError{Filename: file.Name, Allowed: v.Limits().Extensions}
	}

	if !v.hasAllowedContentType(file.ContentType) {
		if v.limits.EnforceContentType {
			return &InvalidContentTypeError{ContentType: file.ContentType, Allowed: v.Limits().ContentTypes}
		}
		v.logger.Warn("unexpected content type for upload",
			"file", file.Name,
			"content_type", file.ContentType)
	}

	return nil
}

func (v *Validator) hasAllowedExtension(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, ext := range v.limits.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (v *Validator) hasAllowedContentType(contentType string) bool {
	if len(v.limits.ContentTypes) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	for _, ct := range v.limits.ContentTypes {
		if mediaType == ct {
			return true
		}
	}
	return false
}
