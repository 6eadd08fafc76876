package document

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/futig/explainer-backend/internal/cache"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/integration/embedding"
	"github.com/futig/explainer-backend/internal/integration/llm"
	"github.com/futig/explainer-backend/internal/integration/rag"
	"github.com/futig/explainer-backend/internal/integration/vectorstore"
	"github.com/futig/explainer-backend/internal/pkg/chunker"
	"github.com/futig/explainer-backend/internal/pkg/extractor"
	"github.com/futig/explainer-backend/internal/pkg/formatter"
	pkgRetry "github.com/futig/explainer-backend/internal/pkg/retry"
	"github.com/futig/explainer-backend/internal/pkg/validator"
	"github.com/futig/explainer-backend/internal/repository"
	"github.com/futig/explainer-backend/internal/storage"
	"github.com/futig/explainer-backend/internal/usecase/query"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleText = `Photosynthesis is the process plants use to turn light into chemical energy.
Chlorophyll in the leaves absorbs sunlight, and the plant combines carbon dioxide with water
to produce glucose and oxygen. The glucose feeds the plant while the oxygen is released.`

type fixture struct {
	uc        *DocumentUsecase
	fs        afero.Fs
	files     *storage.FileManager
	store     *vectorstore.Memory
	retriever *rag.Connector
	repo      *repository.DocumentBolt
	cache     *cache.Manager
}

func newFixture(t *testing.T, indexer func(*rag.Connector) Indexer) *fixture {
	t.Helper()
	logger := zap.NewNop()

	fs := afero.NewMemMapFs()
	files, err := storage.NewFileManager(fs, "/uploads", logger)
	require.NoError(t, err)

	store := vectorstore.NewMemory("documents")
	connector := rag.NewConnector(embedding.NewHashingEmbedder(64), store, logger)

	repo, err := repository.NewDocumentBolt(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	manager := cache.NewManager(cache.NewMemoryBackend(time.Hour, time.Minute), time.Hour, logger)

	var idx Indexer = connector
	if indexer != nil {
		idx = indexer(connector)
	}

	uc := NewUsecase(
		files,
		extractor.New(),
		chunker.New(120, 20),
		idx,
		repo,
		manager,
		validator.New(config.FileUploadConfig{
			MaxFileSize:       1 << 20,
			AllowedExtensions: []string{"txt", "md", "pdf", "docx"},
		}),
		config.IngestConfig{
			StatusTTL: time.Hour,
			Retry:     pkgRetry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond},
		},
		logger,
	)

	return &fixture{uc: uc, fs: fs, files: files, store: store, retriever: connector, repo: repo, cache: manager}
}

type failingIndexer struct {
	*rag.Connector
	calls int
}

func (f *failingIndexer) Index(context.Context, []entity.IndexChunk) ([]string, error) {
	f.calls++
	return nil, errors.New("vector store unavailable")
}

func storedFiles(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, "/uploads")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestIngest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.DocumentID, "_notes.txt"))
	assert.Equal(t, "notes.txt", res.OriginalFilename)
	assert.Equal(t, "txt", res.FileType)
	assert.Equal(t, entity.ProcessingStatusCompleted, res.ProcessingStatus)
	assert.Greater(t, res.ChunksCreated, 1)
	assert.Len(t, res.ChunkIDs, res.ChunksCreated)
	for i, id := range res.ChunkIDs {
		assert.True(t, strings.HasPrefix(id, res.DocumentID+"_"), "chunk %d id %q", i, id)
	}

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.ChunksCreated, n)

	doc, err := f.repo.Get(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, res.ChunkIDs, doc.ChunkIDs)

	var cached entity.ProcessingResult
	require.True(t, f.cache.Get(ctx, cache.DocumentKey(res.DocumentID, processingOperation), &cached))
	assert.Equal(t, res.DocumentID, cached.DocumentID)

	matches, err := f.store.Search(ctx, mustEmbed(t, "chlorophyll sunlight"), 10, res.DocumentID)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	md := matches[0].Metadata
	assert.Equal(t, "notes.txt", md["filename"])
	assert.Equal(t, "text file", md["doc_type"])
	assert.Equal(t, "txt", md["file_type"])
	assert.Contains(t, md, "processing_time")
	assert.Contains(t, md, "chunk_count")
}

func mustEmbed(t *testing.T, text string) []float64 {
	t.Helper()
	vecs, err := embedding.NewHashingEmbedder(64).Embed(context.Background(), []string{text})
	require.NoError(t, err)
	return vecs[0]
}

func TestIngestRejectsInvalidUpload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.uc.Ingest(ctx, "script.exe", []byte(sampleText))
	require.ErrorIs(t, err, entity.ErrInvalidExtension)

	_, err = f.uc.Ingest(ctx, "empty.txt", nil)
	require.ErrorIs(t, err, entity.ErrInvalidFile)

	assert.Empty(t, storedFiles(t, f.fs))
}

func TestIngestDiscardsBlobWhenTextTooShort(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.uc.Ingest(context.Background(), "short.txt", []byte("too short"))
	require.ErrorIs(t, err, entity.ErrDocumentTooShort)
	assert.Empty(t, storedFiles(t, f.fs))
}

func TestIngestIndexingFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var failing *failingIndexer
	f := newFixture(t, func(c *rag.Connector) Indexer {
		failing = &failingIndexer{Connector: c}
		return failing
	})

	_, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.ErrorIs(t, err, entity.ErrIndexingFailed)
	assert.Equal(t, 2, failing.calls)

	assert.Empty(t, storedFiles(t, f.fs))
	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetDocumentInfo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)

	info, err := f.uc.GetDocumentInfo(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", info.Filename)
	assert.Equal(t, res.ChunksCreated, info.ChunkCount)
	assert.Equal(t, int64(len(sampleText)), info.FileSize)
	assert.Equal(t, entity.ProcessingStatusCompleted, info.ProcessingStatus)
	assert.NotNil(t, info.ModifiedAt)

	_, err = f.uc.GetDocumentInfo(ctx, "20240101_000000_abcd1234_missing.txt")
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestGetDocumentInfoRejectsTraversal(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.uc.GetDocumentInfo(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, entity.ErrInvalidFilename)
}

func TestDeleteDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)
	other, err := f.uc.Ingest(ctx, "other.md", []byte(sampleText))
	require.NoError(t, err)

	resp, err := f.uc.DeleteDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "deleted", resp.Status)
	assert.Equal(t, res.ChunksCreated, resp.ChunksRemoved)
	assert.Equal(t, 1, resp.CacheCleared)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, other.ChunksCreated, n)

	_, err = f.repo.Get(ctx, res.DocumentID)
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
	assert.Equal(t, []string{other.DocumentID}, storedFiles(t, f.fs))

	_, err = f.uc.GetDocumentInfo(ctx, res.DocumentID)
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)

	_, err = f.uc.DeleteDocument(ctx, res.DocumentID)
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestDeleteDocumentDropsScopedAnswers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	queries := query.NewUsecase(
		f.retriever,
		llm.NewMockConnector(zap.NewNop()),
		f.cache,
		f.files,
		f.repo,
		formatter.NewFactory(),
		config.QueryConfig{MaxContextLength: 3000, ResultCount: 5},
		zap.NewNop(),
	)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)

	req := &entity.QueryRequest{Question: "What is photosynthesis?", Level: entity.LevelChild, DocumentID: res.DocumentID}

	first, err := queries.Query(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Positive(t, first.SourceDocuments)

	again, err := queries.Query(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.Cached)

	resp, err := f.uc.DeleteDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CacheCleared)

	after, err := queries.Query(ctx, req)
	require.NoError(t, err)
	assert.False(t, after.Cached)
	assert.Zero(t, after.SourceDocuments)
}

func TestDeleteDocumentWildcardIDKeepsCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)
	require.True(t, f.cache.Set(ctx, "explanation:unrelated", "answer", 0))

	for _, id := range []string{"*", "?*", "[a-z]*"} {
		_, err = f.uc.DeleteDocument(ctx, id)
		assert.ErrorIs(t, err, entity.ErrDocumentNotFound, id)
	}

	var status entity.ProcessingResult
	assert.True(t, f.cache.Get(ctx, cache.DocumentKey(res.DocumentID, processingOperation), &status))
	var answer string
	assert.True(t, f.cache.Get(ctx, "explanation:unrelated", &answer))
}

func TestMarkUnindexed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.uc.Ingest(ctx, "notes.txt", []byte(sampleText))
	require.NoError(t, err)

	marked, err := f.uc.MarkUnindexed(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked)

	_, err = f.store.DeleteByDocument(ctx, res.DocumentID)
	require.NoError(t, err)

	marked, err = f.uc.MarkUnindexed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	doc, err := f.repo.Get(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcessingStatusUnindexed, doc.Status)

	list, err := f.uc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, entity.ProcessingStatusUnindexed, list.Documents[0].ProcessingStatus)

	marked, err = f.uc.MarkUnindexed(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestListDocuments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	tick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	first, err := f.uc.Ingest(ctx, "first.txt", []byte(sampleText))
	require.NoError(t, err)
	second, err := f.uc.Ingest(ctx, "second.txt", []byte(sampleText))
	require.NoError(t, err)

	list, err := f.uc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, list.Documents, 2)
	assert.Equal(t, second.DocumentID, list.Documents[0].DocumentID)
	assert.Equal(t, first.DocumentID, list.Documents[1].DocumentID)
	assert.Equal(t, "first.txt", list.Documents[1].Filename)
}
