package formatter

import (
	"bytes"
	"fmt"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(e Explanation) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", baseTitle)
	fmt.Fprintf(&buf, "**Question:** %s\n\n", e.Question)
	fmt.Fprintf(&buf, "**Level:** %s\n\n", e.Level)
	fmt.Fprintf(&buf, "%s\n", e.Answer)

	if len(e.Sources) > 0 {
		buf.WriteString("\n## Sources\n\n")
		for _, s := range e.Sources {
			fmt.Fprintf(&buf, "- %s\n", sourceLine(s))
		}
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
