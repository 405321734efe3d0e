package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/database"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `port: "0"
model_provider: ollama
storage:
  type: local
  local_path: ` + filepath.Join(dir, "files") + `
vector_store:
  type: local
  local_path: ` + filepath.Join(dir, "vectors.db") + `
history:
  type: sqlite
  limit: 5
  sqlite_path: ` + filepath.Join(dir, "history.db") + `
auth:
  provider: jwt
  jwt_secret: test-secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })
	return dir
}

func TestWithAppReleasesDependenciesOnError(t *testing.T) {
	dir := writeTestConfig(t)
	boom := errors.New("command failed")

	var seen *app
	err := withApp(context.Background(), func(a *app) error {
		seen = a
		require.NotNil(t, a.documents)
		require.NotNil(t, a.qa)
		require.NotNil(t, a.users)
		assert.NotEmpty(t, a.closers)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, seen)
	assert.Empty(t, seen.closers)

	// The vector store was closed, so it can be opened again cleanly.
	store, err := database.NewLocalStore(filepath.Join(dir, "vectors.db"))
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestWithAppReportsConfigErrors(t *testing.T) {
	prev := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { cfgFile = prev })

	called := false
	err := withApp(context.Background(), func(*app) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
