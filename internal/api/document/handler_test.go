package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct {
	filename string
	content  []byte
	err      error
	deleted  string
}

func (f *fakeUsecase) Ingest(_ context.Context, filename string, content []byte) (*entity.ProcessingResult, error) {
	f.filename, f.content = filename, content
	if f.err != nil {
		return nil, f.err
	}
	return &entity.ProcessingResult{
		DocumentID:       "20240101_000000_abcd1234_notes.txt",
		OriginalFilename: filename,
		FileSize:         int64(len(content)),
		FileType:         "txt",
		ChunksCreated:    3,
		ProcessingStatus: entity.ProcessingStatusCompleted,
	}, nil
}

func (f *fakeUsecase) GetDocumentInfo(_ context.Context, id string) (*entity.DocumentInfo, error) {
	if id != "known.txt" {
		return nil, entity.ErrDocumentNotFound
	}
	return &entity.DocumentInfo{DocumentID: id, Filename: "known.txt", ChunkCount: 2}, nil
}

func (f *fakeUsecase) DeleteDocument(_ context.Context, id string) (*entity.DeleteDocumentResponse, error) {
	if id != "known.txt" {
		return nil, entity.ErrDocumentNotFound
	}
	f.deleted = id
	return &entity.DeleteDocumentResponse{DocumentID: id, Status: "deleted", ChunksRemoved: 2}, nil
}

func (f *fakeUsecase) ListDocuments(context.Context) (*entity.ListDocumentsResponse, error) {
	return &entity.ListDocumentsResponse{Documents: []*entity.DocumentInfo{{DocumentID: "known.txt"}}}, nil
}

func newServer(uc *fakeUsecase, maxSize int64) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, config.FileUploadConfig{MaxFileSize: maxSize}))
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	t.Parallel()

	uc := &fakeUsecase{}
	body, contentType := multipartBody(t, "file", "notes.txt", []byte("some text"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newServer(uc, 1<<20).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp entity.DocumentUploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.ChunksCreated)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "notes.txt", uc.filename)
	assert.Equal(t, []byte("some text"), uc.content)
}

func TestUploadMissingFile(t *testing.T) {
	t.Parallel()

	body, contentType := multipartBody(t, "attachment", "notes.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newServer(&fakeUsecase{}, 1<<20).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMapsUsecaseErrors(t *testing.T) {
	t.Parallel()

	cases := map[error]int{
		fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrInvalidExtension): http.StatusBadRequest,
		fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrFileTooLarge):     http.StatusRequestEntityTooLarge,
		fmt.Errorf("%w: qdrant down", entity.ErrIndexingFailed):                 http.StatusBadGateway,
	}
	for err, status := range cases {
		body, contentType := multipartBody(t, "file", "notes.txt", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newServer(&fakeUsecase{err: err}, 1<<20).ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, err.Error())
	}
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()

	uc := &fakeUsecase{}
	h := newServer(uc, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/known.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info entity.DocumentInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, 2, info.ChunkCount)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/known.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "known.txt", uc.deleted)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newServer(&fakeUsecase{}, 1<<20).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.ListDocumentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Documents, 1)
}
