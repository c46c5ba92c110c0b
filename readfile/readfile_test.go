package readfile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lterrors "github.com/grovetools/livetune/errors"
)

func fastRetry(retries int) RetryConfig {
	return RetryConfig{MaxRetries: retries, Delay: time.Millisecond, Backoff: 1.0}
}

func TestReadSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, os.WriteFile(path, []byte("speed=2.5\n"), 0644))

	data, err := Read(path, DefaultRetryConfig())
	require.Nil(t, err)
	assert.Equal(t, "speed=2.5\n", string(data))
}

func TestReadMissingFileReportsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	data, err := Read(path, fastRetry(1))
	assert.Nil(t, data)
	require.True(t, err.IsError())
	assert.Equal(t, lterrors.KindNotFound, err.Kind)
	assert.Equal(t, path, err.Path)
}

func TestReadEmptyFileReportsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Read(path, fastRetry(1))
	require.True(t, err.IsError())
	assert.Equal(t, lterrors.KindEmpty, err.Kind)
}

// A file that becomes readable during the retry window should succeed, the
// way an editor save settles mid-read.
func TestReadRetriesUntilWriterFinishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		_ = os.WriteFile(path, []byte("42\n"), 0644)
	}()

	data, err := Read(path, RetryConfig{MaxRetries: 20, Delay: 2 * time.Millisecond, Backoff: 1.2})
	wg.Wait()
	require.Nil(t, err)
	assert.Equal(t, "42\n", string(data))
}

// With a retry budget smaller than the failure streak, the last failure
// kind wins.
func TestReadExhaustedBudgetReturnsLastFailure(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "never.txt")

	start := time.Now()
	_, err := Read(missing, RetryConfig{MaxRetries: 3, Delay: 2 * time.Millisecond, Backoff: 1.5})
	elapsed := time.Since(start)

	require.True(t, err.IsError())
	assert.Equal(t, lterrors.KindNotFound, err.Kind)
	// 2 + 3 + 4.5 ms of sleeps at minimum
	assert.GreaterOrEqual(t, elapsed, 9*time.Millisecond)
}

func TestRetryConfigNormalization(t *testing.T) {
	c := RetryConfig{MaxRetries: -1, Delay: 0, Backoff: 0}.normalized()
	assert.Equal(t, 0, c.MaxRetries)
	assert.Equal(t, 5*time.Millisecond, c.Delay)
	assert.Equal(t, 1.0, c.Backoff)
}
