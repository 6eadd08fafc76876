package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/futig/explainer-backend/internal/cache"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/pkg/logger"
	pkgRetry "github.com/futig/explainer-backend/internal/pkg/retry"
	"github.com/futig/explainer-backend/internal/pkg/validator"
	"github.com/futig/explainer-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const processingOperation = "processing"

// DocumentUsecase implements document ingestion and lifecycle
type DocumentUsecase struct {
	files     FileStore
	extractor TextExtractor
	splitter  Splitter
	indexer   Indexer
	repo      repository.DocumentRepository
	cache     Cache
	validator *validator.Validator
	cfg       config.IngestConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewUsecase creates a new document use case
func NewUsecase(
	files FileStore,
	extractor TextExtractor,
	splitter Splitter,
	indexer Indexer,
	repo repository.DocumentRepository,
	cache Cache,
	validator *validator.Validator,
	cfg config.IngestConfig,
	logger *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		files:     files,
		extractor: extractor,
		splitter:  splitter,
		indexer:   indexer,
		repo:      repo,
		cache:     cache,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// Ingest stores, extracts, chunks and indexes an uploaded file. Nothing is
// written when validation fails; the stored blob is removed when a later
// step fails.
func (uc *DocumentUsecase) Ingest(ctx context.Context, filename string, content []byte) (*entity.ProcessingResult, error) {
	if err := uc.validator.ValidateUpload(filename, int64(len(content))); err != nil {
		return nil, err
	}

	documentID, err := uc.files.Save(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDocument(ctx, documentID)

	extracted, err := uc.extractor.Extract(ctx, filename, content)
	if err != nil {
		uc.discard(ctx, documentID, false)
		return nil, err
	}

	pieces := uc.splitter.Split(extracted.Text)
	if len(pieces) == 0 {
		uc.discard(ctx, documentID, false)
		return nil, fmt.Errorf("%w: %s", entity.ErrDocumentTooShort, filename)
	}
	ctxzap.Info(ctx, "document split into chunks", zap.Int("chunks", len(pieces)))

	fileType := fileType(filename)
	chunks := uc.prepareChunks(documentID, filename, fileType, extracted, pieces)

	var chunkIDs []string
	err = pkgRetry.Do(ctx, uc.cfg.Retry, "index document", func(ctx context.Context) error {
		var err error
		chunkIDs, err = uc.indexer.Index(ctx, chunks)
		return err
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to index document", zap.Error(err))
		uc.discard(ctx, documentID, false)
		return nil, fmt.Errorf("%w: %w", entity.ErrIndexingFailed, err)
	}

	doc := &entity.Document{
		ID:               documentID,
		OriginalFilename: filename,
		FileType:         fileType,
		FileSize:         int64(len(content)),
		ChunkCount:       len(chunks),
		ChunkIDs:         chunkIDs,
		WordCount:        extracted.WordCount,
		CharCount:        extracted.CharCount,
		Status:           entity.ProcessingStatusCompleted,
		CreatedAt:        uc.now().UTC(),
	}
	if err := uc.repo.Save(ctx, doc); err != nil {
		ctxzap.Error(ctx, "failed to register document", zap.Error(err))
		uc.discard(ctx, documentID, true)
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
	}

	result := &entity.ProcessingResult{
		DocumentID:       documentID,
		OriginalFilename: filename,
		FileSize:         doc.FileSize,
		ChunksCreated:    len(chunks),
		TotalWords:       extracted.WordCount,
		TotalChars:       extracted.CharCount,
		FileType:         fileType,
		ProcessingStatus: entity.ProcessingStatusCompleted,
		ChunkIDs:         chunkIDs,
	}
	uc.cache.Set(ctx, cache.DocumentKey(documentID, processingOperation), result, uc.cfg.StatusTTL)

	ctxzap.Info(ctx, "document processed",
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
		zap.Int("words", extracted.WordCount),
	)
	return result, nil
}

// GetDocumentInfo reads the cached processing result, then the registry,
// and completes the answer from the blob store.
func (uc *DocumentUsecase) GetDocumentInfo(ctx context.Context, documentID string) (*entity.DocumentInfo, error) {
	info := &entity.DocumentInfo{DocumentID: documentID}
	known := false

	var cached entity.ProcessingResult
	if uc.cache.Get(ctx, cache.DocumentKey(documentID, processingOperation), &cached) {
		info.Filename = cached.OriginalFilename
		info.FileSize = cached.FileSize
		info.ChunkCount = cached.ChunksCreated
		info.ProcessingStatus = cached.ProcessingStatus
		known = true
	}

	doc, err := uc.repo.Get(ctx, documentID)
	switch {
	case err == nil:
		info.Filename = doc.OriginalFilename
		info.FileSize = doc.FileSize
		info.ChunkCount = doc.ChunkCount
		info.ProcessingStatus = doc.Status
		info.CreatedAt = doc.CreatedAt
		known = true
	case !errors.Is(err, entity.ErrDocumentNotFound):
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
	}

	fileInfo, err := uc.files.Info(ctx, documentID)
	switch {
	case err == nil:
		modified := fileInfo.ModifiedAt
		info.ModifiedAt = &modified
		info.FileSize = fileInfo.Size
		if info.CreatedAt.IsZero() {
			info.CreatedAt = fileInfo.CreatedAt
		}
		if info.Filename == "" {
			info.Filename = fileInfo.Filename
		}
		if info.ProcessingStatus == "" {
			info.ProcessingStatus = "stored"
		}
	case errors.Is(err, entity.ErrDocumentNotFound):
		if !known {
			return nil, entity.ErrDocumentNotFound
		}
	default:
		return nil, err
	}

	return info, nil
}

// DeleteDocument removes the blob, the indexed chunks, the registry record
// and the document's cache entries, including answers scoped to it.
func (uc *DocumentUsecase) DeleteDocument(ctx context.Context, documentID string) (*entity.DeleteDocumentResponse, error) {
	ctx = logger.WithDocument(ctx, documentID)

	fileDeleted, err := uc.files.Delete(ctx, documentID)
	if err != nil {
		return nil, err
	}

	removed, err := uc.indexer.DeleteDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrIndexingFailed, err)
	}

	recordDeleted, err := uc.repo.Delete(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
	}

	if !fileDeleted && !recordDeleted && removed == 0 {
		return nil, entity.ErrDocumentNotFound
	}

	cleared := 0
	for _, pattern := range cache.DocumentPatterns(documentID) {
		cleared += uc.cache.ClearPattern(ctx, pattern)
	}

	ctxzap.Info(ctx, "document deleted",
		zap.Bool("file_deleted", fileDeleted),
		zap.Int("chunks_removed", removed),
		zap.Int("cache_cleared", cleared),
	)

	return &entity.DeleteDocumentResponse{
		DocumentID:    documentID,
		Status:        "deleted",
		ChunksRemoved: removed,
		CacheCleared:  cleared,
	}, nil
}

// MarkUnindexed flags completed registry records as unindexed when the
// vector index holds no chunks at all. It returns how many were flagged.
func (uc *DocumentUsecase) MarkUnindexed(ctx context.Context) (int, error) {
	stats, err := uc.indexer.Stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", entity.ErrIndexingFailed, err)
	}
	if stats.TotalChunks > 0 {
		return 0, nil
	}

	docs, err := uc.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
	}

	marked := 0
	for _, d := range docs {
		if d.Status != entity.ProcessingStatusCompleted || d.ChunkCount == 0 {
			continue
		}
		d.Status = entity.ProcessingStatusUnindexed
		if err := uc.repo.Save(ctx, d); err != nil {
			return marked, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
		}
		marked++
	}

	if marked > 0 {
		ctxzap.Warn(ctx, "registered documents have no indexed chunks, re-upload them to query their content",
			zap.Int("documents", marked),
			zap.String("index", stats.Backend),
		)
	}
	return marked, nil
}

// ListDocuments returns registered documents, newest first.
func (uc *DocumentUsecase) ListDocuments(ctx context.Context) (*entity.ListDocumentsResponse, error) {
	docs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageFailure, err)
	}

	out := make([]*entity.DocumentInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, &entity.DocumentInfo{
			DocumentID:       d.ID,
			Filename:         d.OriginalFilename,
			FileSize:         d.FileSize,
			CreatedAt:        d.CreatedAt,
			ChunkCount:       d.ChunkCount,
			ProcessingStatus: d.Status,
		})
	}

	return &entity.ListDocumentsResponse{Documents: out}, nil
}

func (uc *DocumentUsecase) prepareChunks(
	documentID, filename, fileType string,
	extracted *entity.ExtractedText,
	pieces []string,
) []entity.IndexChunk {
	processedAt := uc.now().UTC().Format(time.RFC3339)

	chunks := make([]entity.IndexChunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = entity.IndexChunk{
			DocumentID: documentID,
			Index:      i,
			Content:    text,
			Metadata: map[string]any{
				"document_id":     documentID,
				"filename":        filename,
				"chunk_index":     i,
				"chunk_count":     len(pieces),
				"processing_time": processedAt,
				"file_type":       fileType,
				"doc_type":        extracted.DocType,
			},
		}
	}
	return chunks
}

// discard rolls back a partially ingested document.
func (uc *DocumentUsecase) discard(ctx context.Context, documentID string, indexed bool) {
	if indexed {
		if _, err := uc.indexer.DeleteDocument(ctx, documentID); err != nil {
			ctxzap.Error(ctx, "failed to remove indexed chunks", zap.Error(err))
		}
	}
	if _, err := uc.files.Delete(ctx, documentID); err != nil {
		ctxzap.Error(ctx, "failed to remove stored file", zap.Error(err))
	}
}

func fileType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
