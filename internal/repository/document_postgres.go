package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, original_filename, file_type, file_size, chunk_count,
	chunk_ids, word_count, char_count, status, created_at`

// DocumentPostgres implements DocumentRepository using PostgreSQL
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

// Save inserts the document or replaces an existing record with the same id.
func (r *DocumentPostgres) Save(ctx context.Context, doc *entity.Document) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			original_filename = EXCLUDED.original_filename,
			file_type         = EXCLUDED.file_type,
			file_size         = EXCLUDED.file_size,
			chunk_count       = EXCLUDED.chunk_count,
			chunk_ids         = EXCLUDED.chunk_ids,
			word_count        = EXCLUDED.word_count,
			char_count        = EXCLUDED.char_count,
			status            = EXCLUDED.status`,
		doc.ID, doc.OriginalFilename, doc.FileType, doc.FileSize, doc.ChunkCount,
		nonNil(doc.ChunkIDs), doc.WordCount, doc.CharCount, doc.Status, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *DocumentPostgres) Get(ctx context.Context, id string) (*entity.Document, error) {
	row := r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns documents newest first.
func (r *DocumentPostgres) List(ctx context.Context) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*entity.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentPostgres) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DocumentPostgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Close is a no-op; the pool is owned by the builder.
func (r *DocumentPostgres) Close() error {
	return nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var doc entity.Document
	err := row.Scan(
		&doc.ID,
		&doc.OriginalFilename,
		&doc.FileType,
		&doc.FileSize,
		&doc.ChunkCount,
		&doc.ChunkIDs,
		&doc.WordCount,
		&doc.CharCount,
		&doc.Status,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
