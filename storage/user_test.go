package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func TestUserStorageIsolation(t *testing.T) {
	ctx := context.Background()
	base, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	alice, err := NewUserStorage(base, "alice")
	require.NoError(t, err)
	bob, err := NewUserStorage(base, "bob")
	require.NoError(t, err)

	key, err := alice.SaveFile(ctx, "report.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", key)
	_, err = bob.SaveFile(ctx, "other.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	files, err := alice.ListFiles(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, files)

	_, err = bob.GetFile(ctx, "report.pdf")
	assert.ErrorIs(t, err, types.ErrNotFound)

	meta, err := alice.GetFileMetadata(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", meta.Path)

	all, err := base.ListFiles(ctx, "users/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users/alice/report.pdf", "users/bob/other.pdf"}, all)
}

func TestUserStorageRejectsBadInput(t *testing.T) {
	base, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, uid := range []string{"", "..", "a/b"} {
		_, err := NewUserStorage(base, uid)
		assert.ErrorIs(t, err, types.ErrInvalidPath, uid)
	}

	u, err := NewUserStorage(base, "alice")
	require.NoError(t, err)
	for _, name := range []string{"", "../bob/x.pdf", "/etc/passwd", ".", "./", "sub/", "sub/.."} {
		_, err := u.GetFile(context.Background(), name)
		assert.ErrorIs(t, err, types.ErrInvalidPath, name)
		_, err = u.GetFileMetadata(context.Background(), name)
		assert.ErrorIs(t, err, types.ErrInvalidPath, name)
		_, err = u.DeleteFile(context.Background(), name)
		assert.ErrorIs(t, err, types.ErrInvalidPath, name)
	}
}

func TestUserStorageDirectoryIsNotAFile(t *testing.T) {
	ctx := context.Background()
	base, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	u, err := NewUserStorage(base, "alice")
	require.NoError(t, err)
	_, err = u.SaveFile(ctx, "sub/report.pdf", strings.NewReader("a"))
	require.NoError(t, err)

	_, err = u.GetFile(ctx, "sub")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = u.GetFileMetadata(ctx, "sub")
	assert.ErrorIs(t, err, types.ErrNotFound)
	deleted, err := u.DeleteFile(ctx, "sub")
	require.NoError(t, err)
	assert.False(t, deleted)

	files, err := u.ListFiles(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/report.pdf"}, files)
}

func TestUserStoragePrefixDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	base, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = base.SaveFile(ctx, "users/al/x.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = base.SaveFile(ctx, "users/alice/y.pdf", strings.NewReader("y"))
	require.NoError(t, err)

	al, err := NewUserStorage(base, "al")
	require.NoError(t, err)
	files, err := al.ListFiles(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.pdf"}, files)
}
