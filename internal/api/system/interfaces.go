package system

import (
	"context"

	"github.com/futig/explainer-backend/internal/entity"
)

type SystemUsecase interface {
	Levels() *entity.AvailableLevelsResponse
	SystemStats(ctx context.Context) *entity.SystemStats
}
