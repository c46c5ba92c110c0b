package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewTarget(t *testing.T) {
	target := NewTarget("/tmp/sub/params.txt")
	assert.Equal(t, "/tmp/sub/params.txt", target.Path)
	assert.Equal(t, "/tmp/sub", target.Dir)
	assert.Equal(t, "params.txt", target.Name)
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	writeFile(t, path, "a=1\n")

	w := New()
	require.NoError(t, w.Start(path, nil))
	defer w.Stop()
	require.True(t, w.Running())

	// Drain anything raised during startup.
	for w.Wait(0) {
	}

	writeFile(t, path, "a=2\n")
	assert.True(t, w.Wait(2*time.Second), "expected a change signal after write")
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	writeFile(t, path, "a=1\n")

	w := New()
	require.NoError(t, w.Start(path, nil))
	defer w.Stop()
	for w.Wait(0) {
	}

	writeFile(t, filepath.Join(dir, "other.txt"), "noise\n")
	assert.False(t, w.Wait(150*time.Millisecond), "sibling file writes must be filtered out")
}

func TestWatcherCallbackFires(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	writeFile(t, path, "a=1\n")

	var fired atomic.Int32
	w := New()
	require.NoError(t, w.Start(path, func() { fired.Add(1) }))
	defer w.Stop()

	writeFile(t, path, "a=2\n")
	require.Eventually(t, func() bool { return fired.Load() > 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestWatcherStopIsIdempotentAndJoins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	writeFile(t, path, "a=1\n")

	w := New()
	require.NoError(t, w.Start(path, nil))
	w.Stop()
	w.Stop()
	assert.False(t, w.Running())

	// No callback may fire after Stop returns.
	writeFile(t, path, "a=2\n")
	time.Sleep(100 * time.Millisecond)
	assert.False(t, w.Wait(0) && w.Wait(0), "no further signals after stop settles")
}

func TestWatcherRestartMovesToNewPath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	writeFile(t, first, "1\n")
	writeFile(t, second, "2\n")

	w := New()
	require.NoError(t, w.Start(first, nil))
	require.NoError(t, w.Start(second, nil))
	defer w.Stop()

	assert.Equal(t, "second.txt", w.Target().Name)
	for w.Wait(0) {
	}

	writeFile(t, second, "22\n")
	assert.True(t, w.Wait(2*time.Second))
}

func TestWaitZeroTimeoutIsNonBlocking(t *testing.T) {
	w := New()
	start := time.Now()
	assert.False(t, w.Wait(0))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	w.TriggerChange()
	assert.True(t, w.Wait(0))
	assert.False(t, w.Wait(0), "signal is edge-triggered, consumed by the first wait")
}

func TestTriggerChangeWakesWaiter(t *testing.T) {
	w := New()
	done := make(chan bool, 1)
	go func() { done <- w.Wait(2 * time.Second) }()

	time.Sleep(20 * time.Millisecond)
	w.TriggerChange()
	select {
	case got := <-done:
		assert.True(t, got)
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestHasNativeSupport(t *testing.T) {
	// On all CI platforms fsnotify should be creatable.
	assert.True(t, HasNativeSupport())
}
