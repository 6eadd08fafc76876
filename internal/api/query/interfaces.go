package query

import (
	"context"
	"iter"

	"github.com/futig/explainer-backend/internal/entity"
	queryuc "github.com/futig/explainer-backend/internal/usecase/query"
)

type QueryUsecase interface {
	Query(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error)
	StreamQuery(ctx context.Context, req *entity.QueryRequest) iter.Seq[entity.StreamFrame]
	Export(ctx context.Context, req *entity.QueryRequest, format entity.ResultFormat) (*queryuc.ExportFile, error)
}

type QueryValidator interface {
	ValidateQuery(req *entity.QueryRequest) error
}
