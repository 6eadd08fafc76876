package document

import (
	"context"

	"github.com/futig/explainer-backend/internal/entity"
)

type DocumentUsecase interface {
	Ingest(ctx context.Context, filename string, content []byte) (*entity.ProcessingResult, error)
	GetDocumentInfo(ctx context.Context, documentID string) (*entity.DocumentInfo, error)
	DeleteDocument(ctx context.Context, documentID string) (*entity.DeleteDocumentResponse, error)
	ListDocuments(ctx context.Context) (*entity.ListDocumentsResponse, error)
}
