package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func chunk(uid, doc string, idx int, vec ...float32) types.Chunk {
	return types.Chunk{
		ID:         ChunkID(uid, doc, idx),
		DocumentID: doc,
		Page:       1,
		Index:      idx,
		Content:    doc,
		Embedding:  vec,
	}
}

func TestLocalStoreSearchIsUserScoped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertChunks(ctx, "alice", []types.Chunk{
		chunk("alice", "a1.pdf", 0, 1, 0),
		chunk("alice", "a2.pdf", 0, 0.7, 0.7),
	}))
	require.NoError(t, s.UpsertChunks(ctx, "bob", []types.Chunk{
		chunk("bob", "b1.pdf", 0, 1, 0),
	}))

	got, err := s.Search(ctx, "alice", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1.pdf", got[0].DocumentID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, "a2.pdf", got[1].DocumentID)
	for _, c := range got {
		assert.Equal(t, "alice", c.UserID)
	}

	got, err = s.Search(ctx, "carol", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertChunks(ctx, "alice", []types.Chunk{chunk("alice", "a.pdf", 0, 1, 0)}))
	updated := chunk("alice", "a.pdf", 0, 0, 1)
	updated.Content = "new"
	require.NoError(t, s.UpsertChunks(ctx, "alice", []types.Chunk{updated}))

	n, err := s.CountChunks(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Search(ctx, "alice", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Content)
}

func TestLocalStoreDeletes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertChunks(ctx, "alice", []types.Chunk{
		chunk("alice", "a1.pdf", 0, 1, 0),
		chunk("alice", "a1.pdf", 1, 1, 0),
		chunk("alice", "a2.pdf", 0, 1, 0),
	}))
	require.NoError(t, s.UpsertChunks(ctx, "bob", []types.Chunk{chunk("bob", "a1.pdf", 0, 1, 0)}))

	require.NoError(t, s.DeleteDocument(ctx, "alice", "a1.pdf"))
	n, err := s.CountChunks(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountChunks(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "same document id under another user must survive")

	require.NoError(t, s.DeleteUser(ctx, "alice"))
	n, err = s.CountChunks(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)
}
