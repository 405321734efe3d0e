package database

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keywordMatches(t *testing.T, f *qdrant.Filter) map[string]string {
	t.Helper()
	require.NotNil(t, f)
	assert.Empty(t, f.GetShould())
	assert.Empty(t, f.GetMustNot())
	out := map[string]string{}
	for _, c := range f.GetMust() {
		field := c.GetField()
		require.NotNil(t, field)
		out[field.GetKey()] = field.GetMatch().GetKeyword()
	}
	return out
}

func TestQdrantUserFilter(t *testing.T) {
	assert.Equal(t, map[string]string{payloadUserID: "alice"},
		keywordMatches(t, qdrantUserFilter("alice")))
}

func TestQdrantDocumentFilterIsUserScoped(t *testing.T) {
	assert.Equal(t, map[string]string{
		payloadUserID:     "alice",
		payloadDocumentID: "a.pdf",
	}, keywordMatches(t, qdrantDocumentFilter("alice", "a.pdf")))
}
