package repository

import (
	"context"

	"github.com/futig/explainer-backend/internal/entity"
)

// DocumentRepository is the registry of ingested documents.
// Get returns entity.ErrDocumentNotFound for unknown ids; Delete reports
// whether a record existed.
type DocumentRepository interface {
	Save(ctx context.Context, doc *entity.Document) error
	Get(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ DocumentRepository = &DocumentPostgres{}
	_ DocumentRepository = &DocumentBolt{}
)
