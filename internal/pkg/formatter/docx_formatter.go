package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(e Explanation) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	heading(doc, "Heading1", baseTitle)

	labelled(doc, "Question: ", e.Question)
	labelled(doc, "Level: ", e.Level)
	doc.AddParagraph()

	for _, p := range paragraphs(e.Answer) {
		doc.AddParagraph().AddRun().AddText(p)
	}

	if len(e.Sources) > 0 {
		heading(doc, "Heading2", "Sources")
		for _, s := range e.Sources {
			doc.AddParagraph().AddRun().AddText("• " + sourceLine(s))
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

func heading(doc *document.Document, style, text string) {
	par := doc.AddParagraph()
	par.SetStyle(style)
	par.AddRun().AddText(text)
}

func labelled(doc *document.Document, label, value string) {
	par := doc.AddParagraph()
	run := par.AddRun()
	run.Properties().SetBold(true)
	run.AddText(label)
	par.AddRun().AddText(value)
}
