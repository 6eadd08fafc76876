package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var errNoPDFText = errors.New("no text can be extracted from PDF")

// extractPDF reads pages one at a time. A page that fails is logged and
// skipped; only an empty aggregate is an error.
func extractPDF(ctx context.Context, content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pageText(reader, i)
		if err != nil {
			ctxzap.Warn(ctx, "skipping unreadable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s\n", i, text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", errNoPDFText
	}
	return sb.String(), nil
}

// pageText converts parser panics on malformed pages into errors.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse page %d: %v", num, r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
