package document

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/pkg/logger"
	"github.com/futig/explainer-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// room for multipart boundaries and headers on top of the file itself
const multipartOverhead = 1 << 20

type Handler struct {
	usecase DocumentUsecase
	cfg     config.FileUploadConfig
}

func NewHandler(usecase DocumentUsecase, cfg config.FileUploadConfig) *Handler {
	return &Handler{
		usecase: usecase,
		cfg:     cfg,
	}
}

// Upload handles POST /documents
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")
	requestID := uuid.NewString()
	ctx = logger.AddFields(ctx, zap.String("upload_id", requestID))

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.UsecaseError(ctx, w, fmt.Errorf("%w: %w: max %d bytes",
				entity.ErrValidation, entity.ErrFileTooLarge, h.cfg.MaxFileSize))
			return
		}
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.ErrorDetail(w, http.StatusBadRequest, "invalid form data", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.UsecaseError(ctx, w, fmt.Errorf("%w: %w: file", entity.ErrValidation, entity.ErrMissingField))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read uploaded file", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", header.Filename),
		zap.Int("size", len(content)),
	)

	result, err := h.usecase.Ingest(ctx, header.Filename, content)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, &entity.DocumentUploadResponse{
		DocumentID:       result.DocumentID,
		OriginalFilename: result.OriginalFilename,
		FileSize:         result.FileSize,
		FileType:         result.FileType,
		ChunksCreated:    result.ChunksCreated,
		ProcessingStatus: result.ProcessingStatus,
		Message:          fmt.Sprintf("Document processed successfully into %d chunks", result.ChunksCreated),
		RequestID:        requestID,
	})
}

// List handles GET /documents
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	docs, err := h.usecase.ListDocuments(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "documents listed", zap.Int("count", len(docs.Documents)))
	response.Success(w, docs)
}

// Get handles GET /documents/{document_id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")
	ctx := logger.WithDocument(logger.WithAction(r.Context(), "GetDocument"), documentID)

	info, err := h.usecase.GetDocumentInfo(ctx, documentID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, info)
}

// Delete handles DELETE /documents/{document_id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")
	ctx := logger.WithDocument(logger.WithAction(r.Context(), "DeleteDocument"), documentID)

	resp, err := h.usecase.DeleteDocument(ctx, documentID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}
