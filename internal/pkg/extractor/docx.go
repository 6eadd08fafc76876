package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
)

var errNoDOCXText = errors.New("no text can be extracted from DOCX")

// extractDOCX collects paragraph text and then table rows with cells joined by " | ".
func extractDOCX(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var parts []string
	for _, para := range doc.Paragraphs() {
		if text := paragraphText(para); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var cellText []string
				for _, para := range cell.Paragraphs() {
					cellText = append(cellText, paragraphText(para))
				}
				if text := strings.Join(cellText, " "); strings.TrimSpace(text) != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " | "))
			}
		}
	}

	if len(parts) == 0 {
		return "", errNoDOCXText
	}
	return strings.Join(parts, "\n"), nil
}

func paragraphText(para document.Paragraph) string {
	var sb strings.Builder
	for _, run := range para.Runs() {
		sb.WriteString(run.Text())
	}
	return sb.String()
}
