// Package database holds the per-user vector index and the client
// constructors shared with the history repositories.
package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
)

// VectorDatabase stores chunk embeddings. Every call is scoped by uid and
// a search never returns a chunk owned by another user.
type VectorDatabase interface {
	UpsertChunks(ctx context.Context, uid string, chunks []types.Chunk) error
	Search(ctx context.Context, uid string, vector []float32, k int) ([]types.ScoredChunk, error)
	DeleteDocument(ctx context.Context, uid, documentID string) error
	DeleteUser(ctx context.Context, uid string) error
	Close() error
}

func NewVectorDatabase(ctx context.Context, cfg config.VectorStoreConfig) (VectorDatabase, error) {
	switch cfg.Type {
	case config.VectorStoreLocal, "":
		return NewLocalStore(cfg.LocalPath)
	case config.VectorStoreWeaviate:
		return NewWeaviateStore(ctx, cfg.Weaviate)
	case config.VectorStoreQdrant:
		return NewQdrantStore(cfg.Qdrant)
	}
	return nil, fmt.Errorf("unsupported vector store: %s", cfg.Type)
}

// ChunkID derives a stable UUID for a chunk so re-indexing a document
// overwrites its previous vectors.
func ChunkID(uid, documentID string, index int) string {
	name := uid + "/" + documentID + "/" + strconv.Itoa(index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
