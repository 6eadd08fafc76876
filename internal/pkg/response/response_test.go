package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ErrorDetail(rec, http.StatusNotFound, "document not found", "abc")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "document not found", body.Error)
	assert.Equal(t, "abc", body.Detail)
	assert.False(t, body.Timestamp.IsZero())
}

func TestTooManyRequests(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	TooManyRequests(rec, "rate_limited", "slow down", time.Minute)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 60, body.RetryAfter)
	assert.Equal(t, "rate_limited", body.Error)
}
