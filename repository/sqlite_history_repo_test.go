package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/types"
)

func newSQLiteRepo(t *testing.T) HistoryRepo {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo, err := NewSQLiteHistoryRepo(db)
	require.NoError(t, err)
	return repo
}

func TestSQLiteHistoryRecentIsChronological(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, "alice", types.Message{
			Role:      types.RoleUser,
			Content:   fmt.Sprintf("q%d", i),
			CreatedAt: 1000,
		}))
	}
	require.NoError(t, repo.Append(ctx, "bob", types.Message{Role: types.RoleUser, Content: "other"}))

	msgs, err := repo.Recent(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "q2", msgs[0].Content)
	assert.Equal(t, "q3", msgs[1].Content)
	assert.Equal(t, "q4", msgs[2].Content)

	msgs, err = repo.Recent(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSQLiteHistoryClear(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.Append(ctx, "alice", types.Message{Role: types.RoleUser, Content: "hi"}))
	require.NoError(t, repo.Append(ctx, "bob", types.Message{Role: types.RoleUser, Content: "hey"}))
	require.NoError(t, repo.Clear(ctx, "alice"))

	msgs, err := repo.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = repo.Recent(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NotZero(t, msgs[0].CreatedAt)
}

func TestNoopHistoryRepo(t *testing.T) {
	repo := NewNoopHistoryRepo()
	require.NoError(t, repo.Append(context.Background(), "a", types.Message{Content: "x"}))
	msgs, err := repo.Recent(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
