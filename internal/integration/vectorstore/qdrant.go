package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/integration/common"
	pkghttp "github.com/futig/explainer-backend/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Qdrant stores points in a Qdrant collection over its REST API.
// The collection uses cosine distance and is created on Init when missing.
type Qdrant struct {
	config    config.VectorStoreConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewQdrant(cfg config.VectorStoreConfig, logger *zap.Logger) *Qdrant {
	return &Qdrant{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKey("api-key", cfg.Token)),
		config:    cfg,
		logger:    logger,
	}
}

func (q *Qdrant) Name() string {
	return "qdrant"
}

func (q *Qdrant) Collection() string {
	return q.config.Collection
}

func (q *Qdrant) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}

	err := q.connector.DoRequest(ctx, http.MethodGet, q.path(""), nil, nil)
	if err == nil {
		return nil
	}

	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check collection: %w", err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := q.connector.DoRequest(ctx, http.MethodPut, q.path(""), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	ctxzap.Info(ctx, "qdrant collection created",
		zap.String("collection", q.config.Collection),
		zap.Int("dimension", dimension),
	)
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	items := make([]map[string]any, len(points))
	for i, p := range points {
		payload := maps.Clone(p.Metadata)
		if payload == nil {
			payload = make(map[string]any, 2)
		}
		payload[PayloadContent] = p.Content
		payload[PayloadChunkID] = p.ID

		items[i] = map[string]any{
			"id":      pointID(p.ID),
			"vector":  p.Vector,
			"payload": payload,
		}
	}

	body := map[string]any{"points": items}
	if err := q.connector.DoRequest(ctx, http.MethodPut, q.path("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, vector []float64, limit int, documentID string) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if documentID != "" {
		body["filter"] = documentFilter(documentID)
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.connector.DoRequest(ctx, http.MethodPost, q.path("/points/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		content, _ := r.Payload[PayloadContent].(string)
		id, _ := r.Payload[PayloadChunkID].(string)
		delete(r.Payload, PayloadContent)
		delete(r.Payload, PayloadChunkID)

		matches = append(matches, Match{
			ID:       id,
			Content:  content,
			Metadata: r.Payload,
			Score:    r.Score,
		})
	}
	return matches, nil
}

func (q *Qdrant) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	filter := documentFilter(documentID)

	count, err := q.count(ctx, filter)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	body := map[string]any{"filter": filter}
	if err := q.connector.DoRequest(ctx, http.MethodPost, q.path("/points/delete?wait=true"), body, nil); err != nil {
		return 0, fmt.Errorf("delete points: %w", err)
	}
	return count, nil
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	return q.count(ctx, nil)
}

func (q *Qdrant) count(ctx context.Context, filter map[string]any) (int, error) {
	body := map[string]any{"exact": true}
	if filter != nil {
		body["filter"] = filter
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := q.connector.DoRequest(ctx, http.MethodPost, q.path("/points/count"), body, &resp); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return resp.Result.Count, nil
}

func (q *Qdrant) path(suffix string) string {
	return "/collections/" + q.config.Collection + suffix
}

func documentFilter(documentID string) map[string]any {
	return map[string]any{
		"must": []map[string]any{{
			"key":   PayloadDocumentID,
			"match": map[string]any{"value": documentID},
		}},
	}
}

// pointID derives a stable uuid from a chunk id.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}
