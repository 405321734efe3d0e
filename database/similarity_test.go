package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-6)
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1}, []float32{1, 1}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
}

func TestVectorEncoding(t *testing.T) {
	v := []float32{0.5, -1.25, 3e-8, 0}
	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestTopK(t *testing.T) {
	scored := []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, Score: 0.1},
		{Chunk: types.Chunk{ID: "b"}, Score: 0.9},
		{Chunk: types.Chunk{ID: "c"}, Score: 0.5},
	}
	got := topK(scored, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	assert.Len(t, topK(got, 10), 2)
}

func TestChunkIDIsStable(t *testing.T) {
	assert.Equal(t, ChunkID("u", "doc.pdf", 1), ChunkID("u", "doc.pdf", 1))
	assert.NotEqual(t, ChunkID("u", "doc.pdf", 1), ChunkID("u", "doc.pdf", 2))
	assert.NotEqual(t, ChunkID("u", "doc.pdf", 1), ChunkID("v", "doc.pdf", 1))
}
