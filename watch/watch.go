// Package watch delivers an edge-triggered signal when a single file's
// content changes. It prefers the platform's native change notification
// (via fsnotify) and degrades to adaptive mtime polling when the native
// backend cannot be started, so a watch never hard-fails.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/livetune/logging"
)

// Target identifies the watched file. The backends watch the containing
// directory and filter by filename, since the native APIs operate at
// directory granularity.
type Target struct {
	Path string
	Dir  string
	Name string
}

// NewTarget builds a Target from a file path.
func NewTarget(path string) Target {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Target{
		Path: abs,
		Dir:  filepath.Dir(abs),
		Name: filepath.Base(abs),
	}
}

// newNativeNotifier constructs the platform-native backend. Tests swap it
// out to exercise the polling fallback path.
var newNativeNotifier = func() notifier { return newFsnotifyNotifier() }

// notifier is one change-detection backend. Exactly one backend is active
// per running Watcher: the fsnotify backend or the polling fallback.
type notifier interface {
	// start begins delivering change signals for the target, invoking
	// onChange from a background goroutine on every detected change.
	start(target Target, onChange func()) error
	// stop unblocks any pending wait, joins the background goroutine and
	// releases backend resources. No onChange fires after stop returns.
	stop()
}

// Watcher watches exactly one file and raises an edge-triggered "changed"
// condition. Zero or one background goroutine exists per Watcher.
type Watcher struct {
	mu      sync.Mutex
	backend notifier
	target  Target
	running bool
	polling bool

	changed  chan struct{}
	callback func()
	log      *logrus.Entry
}

// New creates a stopped Watcher.
func New() *Watcher {
	return &Watcher{
		changed: make(chan struct{}, 1),
		log:     logging.NewLogger("watch"),
	}
}

// Start begins watching path. The callback, if non-nil, is invoked from a
// background goroutine on every detected change; most callers instead just
// use Wait or poll a dirty flag set by the callback. Starting a running
// watcher restarts it on the new path.
//
// If the native backend cannot be acquired the watcher logs a warning and
// falls back to timestamp polling rather than failing.
func (w *Watcher) Start(path string, callback func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		w.stopLocked()
	}

	w.target = NewTarget(path)
	w.callback = callback

	onChange := func() {
		w.signal()
		if callback != nil {
			callback()
		}
	}

	native := newNativeNotifier()
	if err := native.start(w.target, onChange); err != nil {
		w.log.WithField("path", w.target.Path).
			Warnf("native file watch unavailable, falling back to polling: %v", err)
		poller := newPollNotifier()
		if perr := poller.start(w.target, onChange); perr != nil {
			return perr
		}
		w.backend = poller
		w.polling = true
	} else {
		w.backend = native
		w.polling = false
	}

	w.running = true
	return nil
}

// Stop halts watching. Any goroutine blocked in Wait is released and the
// backend goroutine is joined before Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if !w.running {
		return
	}
	w.backend.stop()
	w.backend = nil
	w.running = false
	// Wake any Wait so it can observe the stop.
	w.signal()
}

// Running reports whether a watch session is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Polling reports whether the active session is using the polling fallback.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running && w.polling
}

// Target returns the watched target of the current or last session.
func (w *Watcher) Target() Target {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// Wait blocks until a change has been signaled since the last Wait, or the
// timeout elapses. A zero or negative timeout is a non-blocking check of
// the change condition. Returns true if a change was pending or arrived.
func (w *Watcher) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-w.changed:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.changed:
		return true
	case <-timer.C:
		return false
	}
}

// TriggerChange raises the change condition by hand. Useful for forcing an
// initial read through code paths that wait for the condition.
func (w *Watcher) TriggerChange() {
	w.signal()
	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// signal sets the edge-triggered change condition without blocking.
func (w *Watcher) signal() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

// HasNativeSupport reports whether the platform-native notification backend
// can be created at all on this system.
func HasNativeSupport() bool {
	n := newFsnotifyNotifier()
	if err := n.probe(); err != nil {
		return false
	}
	return true
}
