package tune

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	lterrors "github.com/grovetools/livetune/errors"
	"github.com/grovetools/livetune/logging"
	"github.com/grovetools/livetune/parse"
	"github.com/grovetools/livetune/readfile"
	"github.com/grovetools/livetune/watch"
)

const (
	// Sleep between attempts when the tuner runs without a watcher.
	tunerPollInterval = 100 * time.Millisecond
	// Upper bound on a single blocking wait so context cancellation and
	// deadlines are observed promptly.
	tunerWaitSlice = 100 * time.Millisecond
)

// Tuner reads a single unnamed value from a file: the first non-comment
// line. It is the low-level counterpart of Params for quick experiments
// ("tweak one number while the program runs").
//
// Unlike the Params change callback, the callback passed to GetAsyncFunc
// runs on a background goroutine, not the caller's, and must not touch
// thread-affine resources without external synchronization.
type Tuner struct {
	mu          sync.Mutex
	path        string
	retry       readfile.RetryConfig
	cache       freshness
	eventDriven bool
	lastErr     *lterrors.Error
	log         *logrus.Entry
}

// NewTuner creates a tuner for the given file.
func NewTuner(path string) *Tuner {
	return &Tuner{
		path:        path,
		retry:       readfile.DefaultRetryConfig(),
		cache:       newFreshness(),
		eventDriven: true,
		log:         logging.NewLogger("tuner"),
	}
}

// TryGet attempts one non-blocking read into slot. It returns true when a
// valid value was read; false when the file is unchanged, unreadable, or
// holds no parseable value (see LastError).
func (t *Tuner) TryGet(slot Slot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tryGetLocked(slot)
}

func (t *Tuner) tryGetLocked(slot Slot) bool {
	now := time.Now()

	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.lastErr = lterrors.NotFound(t.path)
			t.createPlaceholder()
			t.cache.invalidate()
		} else {
			t.lastErr = lterrors.AccessDenied(t.path, err)
		}
		return false
	}

	modTime := info.ModTime()
	if !t.cache.shouldRead(modTime, now) {
		return false
	}

	data, readErr := readfile.Read(t.path, t.retry)
	t.cache.record(modTime, now)
	if readErr != nil {
		t.lastErr = readErr
		return false
	}

	token, ok := parse.FirstToken(data)
	if !ok {
		t.lastErr = lterrors.ParseFailed(t.path, "no value found in file")
		return false
	}
	if err := slot.set(token); err != nil {
		t.lastErr = lterrors.ParseFailed(t.path, err.Error())
		t.log.WithField("path", t.path).Debugf("value not parseable: %v", err)
		return false
	}

	t.lastErr = nil
	return true
}

// Get blocks until a valid value is read into slot or ctx is done. Intended
// for debugging and experiments; production loops should prefer TryGet.
func (t *Tuner) Get(ctx context.Context, slot Slot) error {
	return t.waitForValue(ctx, slot, 0)
}

// GetTimeout blocks up to timeout for a valid value. It returns false and
// records a timeout error once the deadline elapses, never before. A zero
// timeout is equivalent to TryGet.
func (t *Tuner) GetTimeout(slot Slot, timeout time.Duration) bool {
	if timeout <= 0 {
		return t.TryGet(slot)
	}
	err := t.waitForValue(context.Background(), slot, timeout)
	return err == nil
}

// GetAsync runs a blocking Get on a background goroutine and delivers its
// result on the returned channel.
func (t *Tuner) GetAsync(ctx context.Context, slot Slot) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- t.Get(ctx, slot)
	}()
	return result
}

// GetAsyncFunc runs a blocking Get on a background goroutine and invokes
// callback with the result. The callback runs on that goroutine.
func (t *Tuner) GetAsyncFunc(ctx context.Context, slot Slot, callback func(error)) {
	go func() {
		callback(t.Get(ctx, slot))
	}()
}

// waitForValue is the shared blocking loop. A zero timeout means no
// deadline beyond ctx.
func (t *Tuner) waitForValue(ctx context.Context, slot Slot, timeout time.Duration) error {
	t.mu.Lock()
	path := t.path
	eventDriven := t.eventDriven
	t.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	var watcher *watch.Watcher
	if eventDriven {
		watcher = watch.New()
		if err := watcher.Start(path, nil); err != nil {
			t.mu.Lock()
			t.lastErr = lterrors.WatcherFailed(path, err)
			t.mu.Unlock()
			t.log.WithField("path", path).Warnf("file watch unavailable: %v", err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	for {
		if t.TryGet(slot) {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return t.recordTimeout(path, timeout, err)
		}
		remaining := tunerWaitSlice
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return t.recordTimeout(path, timeout, nil)
			}
			if remaining > tunerWaitSlice {
				remaining = tunerWaitSlice
			}
		}

		if watcher != nil {
			watcher.Wait(remaining)
		} else {
			sleep := tunerPollInterval
			if remaining < sleep {
				sleep = remaining
			}
			time.Sleep(sleep)
		}
	}
}

func (t *Tuner) recordTimeout(path string, timeout time.Duration, cause error) error {
	err := lterrors.Timeout(path, timeout)
	if cause != nil {
		err.Cause = cause
	}
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
	return err
}

func (t *Tuner) createPlaceholder() {
	template := "# livetune value (edit and save)\n# lines starting with # are comments\n"
	if err := os.WriteFile(t.path, []byte(template), 0644); err != nil {
		t.log.WithField("path", t.path).Debugf("could not create placeholder: %v", err)
	}
}

// SetFile changes the watched file and discards cached state.
func (t *Tuner) SetFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = path
	t.cache.invalidate()
}

// File returns the watched file path.
func (t *Tuner) File() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// SetEventDriven selects between native change notification and plain
// sleep-polling for the blocking modes. Event-driven is the default.
func (t *Tuner) SetEventDriven(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eventDriven = enabled
}

// EventDriven reports whether blocking modes use change notification.
func (t *Tuner) EventDriven() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eventDriven
}

// InvalidateCache forces the next TryGet to read the file.
func (t *Tuner) InvalidateCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.invalidate()
}

// Reset discards cached state but keeps the configured file path.
func (t *Tuner) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.invalidate()
	t.lastErr = nil
}

// SetRetryConfig replaces the read retry policy.
func (t *Tuner) SetRetryConfig(cfg readfile.RetryConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retry = cfg
}

// RetryConfig returns the current read retry policy.
func (t *Tuner) RetryConfig() readfile.RetryConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retry
}

// LastError returns the most recent error, or nil after a successful read.
func (t *Tuner) LastError() *lterrors.Error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// HasError reports whether the last operation recorded an error.
func (t *Tuner) HasError() bool {
	return t.LastError().IsError()
}

// ClearError discards the recorded error.
func (t *Tuner) ClearError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = nil
}
