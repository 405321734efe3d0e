package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.SaveFile(ctx, "users/u1/a.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "users/u1/a.pdf", key)

	rc, err := s.GetFile(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	meta, err := s.GetFileMetadata(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(13), meta.Size)
	assert.False(t, meta.ModifiedAt.IsZero())

	deleted, err := s.DeleteFile(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteFile(ctx, key)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.GetFile(ctx, key)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.GetFileMetadata(ctx, key)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLocalStorageListFiles(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := s.ListFiles(ctx, "users/nobody/")
	require.NoError(t, err)
	assert.Empty(t, files)

	for _, k := range []string{"users/u1/a.pdf", "users/u1/sub/b.pdf", "users/u2/c.pdf"} {
		_, err := s.SaveFile(ctx, k, strings.NewReader("x"))
		require.NoError(t, err)
	}

	files, err = s.ListFiles(ctx, "users/u1/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users/u1/a.pdf", "users/u1/sub/b.pdf"}, files)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveFile(ctx, "../outside.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, types.ErrInvalidPath)
	_, err = s.GetFile(ctx, "users/../../etc/passwd")
	assert.ErrorIs(t, err, types.ErrInvalidPath)
	_, err = s.ListFiles(ctx, "..")
	assert.ErrorIs(t, err, types.ErrInvalidPath)
}
