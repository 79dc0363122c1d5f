package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// WriteModules writes docs, keyed by slash-separated path relative to dir,
// creating parent directories as needed.
func WriteModules(t testing.TB, dir string, docs map[string]string) {
	t.Helper()
	for name, content := range docs {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), name)
	}
}

// NewModuleRepo initializes a Loam repository in a fresh temporary directory
// and writes docs into it. It returns the absolute directory and the
// repository.
func NewModuleRepo(t testing.TB, docs map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "init module repository")

	WriteModules(t, dir, docs)
	return dir, repo
}
