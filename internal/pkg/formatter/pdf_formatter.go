package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In the container image fonts live next to the binary.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path for `go run` from the repo root.
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(e Explanation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Arial"
	tr := func(s string) string { return s }
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	} else {
		// core fonts are cp1252
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, tr(baseTitle))
	pdf.Ln(14)

	pdf.SetFont(fontName, "B", 12)
	_, lineHeight := pdf.GetFontSize()
	pdf.MultiCell(0, lineHeight*1.5, tr("Question: "+e.Question), "", "", false)
	pdf.MultiCell(0, lineHeight*1.5, tr("Level: "+e.Level), "", "", false)
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 12)
	for _, p := range paragraphs(e.Answer) {
		pdf.MultiCell(0, lineHeight*1.5, tr(p), "", "", false)
		pdf.Ln(2)
	}

	if len(e.Sources) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, tr("Sources"))
		pdf.Ln(10)
		pdf.SetFont(fontName, "", 10)
		for _, s := range e.Sources {
			pdf.MultiCell(0, lineHeight*1.2, tr("- "+sourceLine(s)), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
