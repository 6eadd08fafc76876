package system

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct{}

func (fakeUsecase) Levels() *entity.AvailableLevelsResponse {
	return &entity.AvailableLevelsResponse{
		Levels:       map[string]string{"child": "Simple words"},
		DefaultLevel: entity.LevelUndergraduate,
	}
}

func (fakeUsecase) SystemStats(context.Context) *entity.SystemStats {
	return &entity.SystemStats{Status: "degraded", Documents: 3, Timestamp: time.Now()}
}

func serve(t *testing.T, path string, dest any) {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(fakeUsecase{}, "1.2.3", map[string]string{"cache": "memory"}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dest))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	var body entity.HealthCheck
	serve(t, "/health", &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "memory", body.Services["cache"])
}

func TestLevels(t *testing.T) {
	t.Parallel()

	var body entity.AvailableLevelsResponse
	serve(t, "/levels", &body)
	assert.Equal(t, entity.LevelUndergraduate, body.DefaultLevel)
	assert.Contains(t, body.Levels, "child")
}

func TestStats(t *testing.T) {
	t.Parallel()

	var body entity.SystemStats
	serve(t, "/stats", &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, 3, body.Documents)
}
