package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	minTextLength  = 50
	wordsPerMinute = 200
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-"']`)
)

// Extractor turns uploaded file bytes into cleaned plain text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*entity.ExtractedText, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	var (
		raw     string
		docType string
		err     error
	)

	switch ext {
	case "txt":
		raw, docType = decodeText(content), "text file"
	case "md":
		raw, docType = decodeText(content), "markdown file"
	case "pdf":
		raw, err = extractPDF(ctx, content)
		docType = "pdf file"
	case "docx":
		raw, err = extractDOCX(content)
		docType = "docx file"
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", entity.ErrInvalidExtension, ext)
	}
	if err != nil {
		ctxzap.Error(ctx, "text extraction failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrExtractionFailed, filename, err)
	}

	text := CleanText(raw)
	if utf8.RuneCountInString(text) < minTextLength {
		return nil, fmt.Errorf("%w: %s", entity.ErrDocumentTooShort, filename)
	}

	words := len(strings.Fields(text))

	return &entity.ExtractedText{
		Text:           text,
		DocType:        docType,
		WordCount:      words,
		CharCount:      utf8.RuneCountInString(text),
		ReadingMinutes: max(1, words/wordsPerMinute),
	}, nil
}

// CleanText collapses whitespace and drops characters other than letters,
// digits and basic punctuation.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
