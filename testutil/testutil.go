// Package testutil provides helpers shared by the livetune test suites.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteParams creates a parameter file in dir and returns its path.
func WriteParams(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Rewrite atomically replaces the contents of path the way an editor that
// saves via rename does: write a temp file, then rename over the target.
func Rewrite(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, path))
}

// Touch bumps the modification time of path without changing its contents.
func Touch(t *testing.T, path string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now.Add(time.Second)))
}

// AfterCacheWindow sleeps just past the freshness-cache validity window so
// the next check performs a real read.
func AfterCacheWindow() {
	time.Sleep(15 * time.Millisecond)
}
