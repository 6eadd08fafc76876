package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type errorMapping struct {
	targets []error
	status  int
	message string
	// exposed errors put err.Error() into the detail field
	exposed bool
}

var errorMappings = []errorMapping{
	{
		targets: []error{entity.ErrDocumentNotFound},
		status:  http.StatusNotFound,
		message: "document not found",
		exposed: true,
	},
	{
		targets: []error{entity.ErrFileTooLarge},
		status:  http.StatusRequestEntityTooLarge,
		message: "file too large",
		exposed: true,
	},
	{
		targets: []error{
			entity.ErrInvalidFile, entity.ErrInvalidFilename, entity.ErrInvalidExtension,
			entity.ErrDocumentTooShort, entity.ErrExtractionFailed,
		},
		status:  http.StatusBadRequest,
		message: "invalid file",
		exposed: true,
	},
	{
		targets: []error{
			entity.ErrValidation, entity.ErrEmptyQuestion, entity.ErrQuestionLength, entity.ErrInvalidLevel,
			entity.ErrInvalidFormat, entity.ErrMissingField, entity.ErrInvalidParameter,
		},
		status:  http.StatusBadRequest,
		message: "validation failed",
		exposed: true,
	},
	{
		targets: []error{entity.ErrRetrievalFailed},
		status:  http.StatusBadGateway,
		message: "document search is unavailable",
	},
	{
		targets: []error{entity.ErrGenerationFailed},
		status:  http.StatusBadGateway,
		message: "failed to generate explanation",
	},
	{
		targets: []error{entity.ErrIndexingFailed},
		status:  http.StatusBadGateway,
		message: "failed to index document",
	},
}

// StatusFor maps a usecase error to its HTTP status and public message.
func StatusFor(err error) (int, string) {
	if m, ok := lookup(err); ok {
		return m.status, m.message
	}
	return http.StatusInternalServerError, "internal server error"
}

// UsecaseError logs err and writes the matching error response.
// Details of server-side failures are never exposed.
func UsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	m, ok := lookup(err)
	if !ok {
		ctxzap.Error(ctx, "request failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if m.status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, m.message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, m.message, zap.Error(err))
	}

	detail := ""
	if m.exposed {
		detail = err.Error()
	}
	ErrorDetail(w, m.status, m.message, detail)
}

func lookup(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m, true
			}
		}
	}
	return errorMapping{}, false
}
