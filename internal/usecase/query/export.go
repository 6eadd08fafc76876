package query

import (
	"context"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/pkg/formatter"
)

// ExportFile is a rendered explanation ready to be downloaded.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
	Result      *entity.QueryResult
}

// Export answers the question and renders the answer in the requested format.
func (uc *QueryUsecase) Export(ctx context.Context, req *entity.QueryRequest, format entity.ResultFormat) (*ExportFile, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	result, err := uc.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(formatter.Explanation{
		Question: req.Question,
		Level:    result.Level,
		Answer:   result.Answer,
		Sources:  result.Sources,
	})
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Content:     content,
		ContentType: f.ContentType(),
		Filename:    "explanation_" + result.Level + f.FileExtension(),
		Result:      result,
	}, nil
}
