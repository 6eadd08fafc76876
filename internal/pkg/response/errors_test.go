package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrInvalidLevel), http.StatusBadRequest},
		{entity.ErrDocumentNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 12 MB", entity.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: timeout", entity.ErrRetrievalFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: 500", entity.ErrGenerationFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: disk full", entity.ErrStorageFailure), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, _ := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestUsecaseErrorHidesServerDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	UsecaseError(context.Background(), rec, fmt.Errorf("%w: dial tcp 10.0.0.1:6333", entity.ErrRetrievalFailed))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "document search is unavailable", body.Error)
	assert.Empty(t, body.Detail)
}

func TestUsecaseErrorExposesValidationDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	UsecaseError(context.Background(), rec, fmt.Errorf("%w: %w", entity.ErrValidation, entity.ErrEmptyQuestion))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Detail, "question is empty")
}
