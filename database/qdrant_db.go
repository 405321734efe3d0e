package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
)

const (
	payloadUserID     = "user_id"
	payloadDocumentID = "document_id"
)

// QdrantStore keeps every user in one collection, separated by a keyword
// indexed user_id payload.
type QdrantStore struct {
	client     *qdrant.Client
	collection string

	mu    sync.Mutex
	ready bool
}

func NewQdrantStore(cfg config.QdrantConfig) (*QdrantStore, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
	}, nil
}

// ensureCollection creates the collection sized to the first vector it sees.
func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if !exists {
		if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		for _, field := range []string{payloadUserID, payloadDocumentID} {
			if _, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
				CollectionName: s.collection,
				FieldName:      field,
				FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
				Wait:           qdrant.PtrOf(true),
			}); err != nil {
				return fmt.Errorf("create %s index: %w", field, err)
			}
		}
	}
	s.ready = true
	return nil
}

func (s *QdrantStore) UpsertChunks(ctx context.Context, uid string, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}

	now := time.Now().Unix()
	pts := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(c.ID),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":            c.Content,
				payloadUserID:     uid,
				payloadDocumentID: c.DocumentID,
				"page":            c.Page,
				"chunk_index":     c.Index,
				"created_at":      createdAt,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         pts,
	})
	return err
}

func (s *QdrantStore) Search(ctx context.Context, uid string, vector []float32, k int) ([]types.ScoredChunk, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	limit := uint64(k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Filter:         qdrantUserFilter(uid),
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.ScoredChunk, 0, len(resp))
	for _, r := range resp {
		c := types.Chunk{
			UserID:     uid,
			Content:    r.Payload["text"].GetStringValue(),
			DocumentID: r.Payload[payloadDocumentID].GetStringValue(),
			Page:       int(r.Payload["page"].GetIntegerValue()),
			Index:      int(r.Payload["chunk_index"].GetIntegerValue()),
			CreatedAt:  r.Payload["created_at"].GetIntegerValue(),
		}
		if r.Id != nil {
			c.ID = r.Id.GetUuid()
		}
		out = append(out, types.ScoredChunk{Chunk: c, Score: r.Score})
	}
	return out, nil
}

func (s *QdrantStore) DeleteDocument(ctx context.Context, uid, documentID string) error {
	return s.deleteByFilter(ctx, qdrantDocumentFilter(uid, documentID))
}

func (s *QdrantStore) DeleteUser(ctx context.Context, uid string) error {
	return s.deleteByFilter(ctx, qdrantUserFilter(uid))
}

func (s *QdrantStore) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil || !exists {
		return err
	}
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	return err
}

func qdrantUserFilter(uid string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(payloadUserID, uid)},
	}
}

func qdrantDocumentFilter(uid, documentID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(payloadUserID, uid),
			qdrant.NewMatch(payloadDocumentID, documentID),
		},
	}
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
