package validator

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
)

const (
	MinQuestionLength = 5
	MaxQuestionLength = 500
	MaxFilenameLength = 255
)

// Validator checks inbound requests before they reach a use case
type Validator struct {
	cfg config.FileUploadConfig
}

func New(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateQuery trims the question in place and applies the default level.
func (v *Validator) ValidateQuery(req *entity.QueryRequest) error {
	req.Question = strings.TrimSpace(req.Question)
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.Normalize()

	if req.Question == "" {
		return fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrEmptyQuestion)
	}

	if n := utf8.RuneCountInString(req.Question); n < MinQuestionLength || n > MaxQuestionLength {
		return fmt.Errorf("%w: %w: must be %d-%d characters, got %d",
			entity.ErrValidation, entity.ErrQuestionLength, MinQuestionLength, MaxQuestionLength, n)
	}

	if !req.Level.IsValid() {
		return fmt.Errorf("%w: %w: %q", entity.ErrValidation, entity.ErrInvalidLevel, req.Level)
	}

	return nil
}

// ValidateUpload checks name, extension and size of an uploaded file
func (v *Validator) ValidateUpload(filename string, size int64) error {
	if filename == "" || len(filename) > MaxFilenameLength {
		return fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrInvalidFilename)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !slices.Contains(v.cfg.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %w: %q (allowed: %s)",
			entity.ErrValidation, entity.ErrInvalidExtension, ext, strings.Join(v.cfg.AllowedExtensions, ", "))
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: %w: %d bytes (max %d)", entity.ErrValidation, entity.ErrFileTooLarge, size, v.cfg.MaxFileSize)
	}

	if size == 0 {
		return fmt.Errorf("%w: %w: empty file", entity.ErrValidation, entity.ErrInvalidFile)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for use in response headers
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"\"", "",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
