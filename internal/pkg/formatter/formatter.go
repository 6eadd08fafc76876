package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/explainer-backend/internal/entity"
)

const baseTitle = "Explanation"

// Explanation is the exportable view of an answered question.
type Explanation struct {
	Question string
	Level    string
	Answer   string
	Sources  []entity.SourceInfo
}

type Formatter interface {
	Format(e Explanation) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidFormat, format)
	}
}

func sourceLine(s entity.SourceInfo) string {
	line := fmt.Sprintf("%s, chunk %d, similarity %.3f", s.Filename, s.ChunkIndex, s.SimilarityScore)
	if s.Partial {
		line += " (partial)"
	}
	return line
}

// paragraphs splits an answer on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
