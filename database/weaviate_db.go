package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "PDFChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class:      CHUNK_CLASS,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "userId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "documentId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "page", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(ctx context.Context, config config.WeaviateConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.HasPrefix(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	exists, err := client.Schema().ClassExistenceChecker().WithClassName(CHUNK_CLASS).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	if !exists {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) UpsertChunks(ctx context.Context, uid string, chunks []types.Chunk) error {
	total := len(chunks)
	now := time.Now().Unix()
	for i := 0; i < total; i += BATCH_SIZE {
		end := min(i+BATCH_SIZE, total)

		batcher := s.client.Batch().ObjectsBatcher()
		for _, c := range chunks[i:end] {
			createdAt := c.CreatedAt
			if createdAt == 0 {
				createdAt = now
			}
			batcher = batcher.WithObjects(&models.Object{
				Class: CHUNK_CLASS,
				ID:    strfmt.UUID(c.ID),
				Properties: map[string]interface{}{
					"content":    c.Content,
					"userId":     uid,
					"documentId": c.DocumentID,
					"page":       c.Page,
					"chunkIndex": c.Index,
					"createdAt":  createdAt,
				},
				Vector: c.Embedding,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert object %s: %s", r.ID, r.Result.Errors.Error[0].Message)
			}
		}
		zap.L().Debug("inserted weaviate batch", zap.Int("from", i), zap.Int("to", end), zap.Int("total", total))
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, uid string, vector []float32, k int) ([]types.ScoredChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "page"},
		{Name: "chunkIndex"},
		{Name: "createdAt"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(userFilter(uid)).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var scored []types.ScoredChunk
	get, _ := result.Data["Get"].(map[string]interface{})
	items, _ := get[CHUNK_CLASS].([]interface{})
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		c := types.Chunk{
			UserID:     uid,
			Content:    stringField(obj, "content"),
			DocumentID: stringField(obj, "documentId"),
			Page:       int(numberField(obj, "page")),
			Index:      int(numberField(obj, "chunkIndex")),
			CreatedAt:  int64(numberField(obj, "createdAt")),
		}
		var score float32
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			c.ID = stringField(additional, "id")
			score = 1 - float32(numberField(additional, "distance"))
		}
		scored = append(scored, types.ScoredChunk{Chunk: c, Score: score})
	}
	return scored, nil
}

func (s *WeaviateStore) DeleteDocument(ctx context.Context, uid, documentID string) error {
	return s.deleteWhere(ctx, documentFilter(uid, documentID))
}

func (s *WeaviateStore) DeleteUser(ctx context.Context, uid string) error {
	return s.deleteWhere(ctx, userFilter(uid))
}

// deleteWhere repeats the batch delete until nothing matches, a single
// request removes at most the server's QUERY_MAXIMUM_RESULTS objects.
func (s *WeaviateStore) deleteWhere(ctx context.Context, where *filters.WhereBuilder) error {
	var total int64
	for {
		resp, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(CHUNK_CLASS).
			WithOutput("minimal").
			WithWhere(where).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if resp == nil || resp.Results == nil || resp.Results.Matches == 0 {
			break
		}
		if resp.Results.Failed > 0 {
			return fmt.Errorf("failed to delete %d objects", resp.Results.Failed)
		}
		if resp.Results.Successful == 0 {
			return fmt.Errorf("batch delete matched %d objects but removed none", resp.Results.Matches)
		}
		total += resp.Results.Successful
	}
	zap.L().Debug("deleted weaviate objects", zap.Int64("deleted", total))
	return nil
}

func (s *WeaviateStore) Close() error {
	return nil
}

func userFilter(uid string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{"userId"}).
		WithOperator(filters.Equal).
		WithValueText(uid)
}

func documentFilter(uid, documentID string) *filters.WhereBuilder {
	docFilter := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)
	return filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{userFilter(uid), docFilter})
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// GraphQL numbers decode as float64.
func numberField(m map[string]interface{}, key string) float64 {
	f, _ := m[key].(float64)
	return f
}
