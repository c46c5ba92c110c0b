// Package tune binds in-memory variables to keys in a human-edited file
// and applies new values while the process runs. The hot path is a cheap,
// non-blocking check meant for main-loop call sites; an optional background
// watcher turns the check into an event-driven no-op on idle files.
package tune

import (
	"maps"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	lterrors "github.com/grovetools/livetune/errors"
	"github.com/grovetools/livetune/logging"
	"github.com/grovetools/livetune/parse"
	"github.com/grovetools/livetune/readfile"
	"github.com/grovetools/livetune/watch"
)

// Params manages named parameters bound to one file.
//
// Update must be called from one consistent goroutine (typically the main
// loop); the registered change callback always runs synchronously on that
// same goroutine, so thread-affine resources such as rendering contexts are
// safe to touch from it. The background watcher, if started, only raises a
// dirty flag and never touches bound variables.
type Params struct {
	mu       sync.Mutex
	path     string
	format   parse.Format
	retry    readfile.RetryConfig
	bindings map[string]Slot
	current  map[string]string
	cache    freshness
	watcher  *watch.Watcher
	onChange func()
	lastErr  *lterrors.Error

	dirty      atomic.Bool
	inCallback atomic.Bool
	log        *logrus.Entry
}

// NewParams creates a store for the given file, detecting the format from
// its extension.
func NewParams(path string) *Params {
	return NewParamsFormat(path, parse.Auto)
}

// NewParamsFormat creates a store with an explicit file format.
func NewParamsFormat(path string, format parse.Format) *Params {
	if format == parse.Auto {
		format = parse.Detect(path)
	}
	return &Params{
		path:     path,
		format:   format,
		retry:    readfile.DefaultRetryConfig(),
		bindings: make(map[string]Slot),
		cache:    newFreshness(),
		log:      logging.NewLogger("params"),
	}
}

// Bind associates name with a slot. The slot's default is applied
// immediately so the variable is never left uninitialized. Rebinding a
// name replaces the previous binding.
func (p *Params) Bind(name string, slot Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings[name] = slot
	slot.reset()
}

// Unbind removes one binding. The variable keeps its current value.
func (p *Params) Unbind(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.bindings, name)
}

// UnbindAll removes every binding. Refused during callback execution.
func (p *Params) UnbindAll() {
	if p.guarded("UnbindAll") {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings = make(map[string]Slot)
}

// Update reads the file if warranted and applies changed values to every
// bound variable. It returns true only when something changed. Errors are
// never raised across this boundary; query LastError instead.
func (p *Params) Update() bool {
	// A callback calling back into Update would recurse forever.
	if p.inCallback.Load() {
		p.log.Debug("Update called from inside the change callback, skipped")
		return false
	}

	p.mu.Lock()
	updated := p.reload()
	var cb func()
	if updated && p.onChange != nil {
		cb = p.onChange
	}
	p.mu.Unlock()

	if cb != nil {
		p.invokeCallback(cb)
	}
	return updated
}

// invokeCallback runs cb under the reentrancy guard. The guard is released
// on every exit path, including a panicking callback.
func (p *Params) invokeCallback(cb func()) {
	p.inCallback.Store(true)
	defer p.inCallback.Store(false)
	cb()
}

// reload is the core check pipeline. Caller holds p.mu.
func (p *Params) reload() bool {
	now := time.Now()

	info, err := os.Stat(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.lastErr = lterrors.NotFound(p.path)
			p.createPlaceholder()
			p.cache.invalidate()
		} else {
			p.lastErr = lterrors.AccessDenied(p.path, err)
		}
		return false
	}

	modTime := info.ModTime()
	if !p.cache.shouldRead(modTime, now) {
		return false
	}

	data, readErr := readfile.Read(p.path, p.retry)
	p.cache.record(modTime, now)
	if readErr != nil {
		p.lastErr = readErr
		return false
	}

	values, parseErr := parse.Values(data, p.format)
	if len(values) == 0 {
		// A partial parse that yielded at least one entry is accepted;
		// zero entries means the document is unusable.
		reason := "no parameters found"
		if parseErr != nil {
			reason = parseErr.Error()
		}
		p.lastErr = lterrors.ParseFailed(p.path, reason)
		return false
	}

	if maps.Equal(values, p.current) {
		return false
	}
	p.current = values

	// Every binding is either set from the file or reset to its default;
	// there is no leave-unchanged outcome, so state after a reload is
	// deterministic.
	for name, slot := range p.bindings {
		raw, ok := values[name]
		if !ok {
			slot.reset()
			continue
		}
		if err := slot.set(raw); err != nil {
			p.log.WithField("path", p.path).
				Warnf("parameter %q kept its previous value: %v", name, err)
		}
	}

	p.lastErr = nil
	return true
}

// createPlaceholder writes a commented template so the user has a file to
// edit. Caller holds p.mu.
func (p *Params) createPlaceholder() {
	var template string
	switch p.format {
	case parse.JSON:
		template = "{}\n"
	case parse.YAML:
		template = "# livetune parameters\n---\n"
	default:
		template = "# livetune parameters\n# format: key = value\n"
	}
	if err := os.WriteFile(p.path, []byte(template), 0644); err != nil {
		p.log.WithField("path", p.path).Debugf("could not create placeholder: %v", err)
	}
}

// StartWatching begins event-driven change detection in the background.
// Combine with Poll in the main loop. Refused during callback execution.
func (p *Params) StartWatching() error {
	if p.guarded("StartWatching") {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil && p.watcher.Running() {
		return nil
	}
	if p.watcher == nil {
		p.watcher = watch.New()
	}
	p.dirty.Store(true) // force the initial read
	return p.watcher.Start(p.path, func() {
		p.dirty.Store(true)
	})
}

// StopWatching halts background change detection. Refused during callback
// execution.
func (p *Params) StopWatching() {
	if p.guarded("StopWatching") {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher != nil {
		p.watcher.Stop()
	}
}

// Watching reports whether the background watcher is running.
func (p *Params) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watcher != nil && p.watcher.Running()
}

// Poll applies pending changes detected by the background watcher. Without
// an active watcher it is equivalent to Update. Returns true when values
// changed.
func (p *Params) Poll() bool {
	p.mu.Lock()
	watching := p.watcher != nil && p.watcher.Running()
	p.mu.Unlock()

	if watching && !p.dirty.Swap(false) {
		return false
	}
	return p.Update()
}

// OnChange registers the change callback, replacing any previous one. The
// callback runs synchronously on the goroutine that calls Update/Poll, at
// most once per reload. Pass nil to remove it.
func (p *Params) OnChange(callback func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = callback
}

// Get returns the raw string value of a parameter from the last reload.
func (p *Params) Get(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.current[name]
	return v, ok
}

// GetOr returns the raw value or def when absent.
func (p *Params) GetOr(name, def string) string {
	if v, ok := p.Get(name); ok {
		return v
	}
	return def
}

// Has reports whether the last reload contained name.
func (p *Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Values returns a snapshot of all values from the last reload.
func (p *Params) Values() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.current))
	maps.Copy(out, p.current)
	return out
}

// BoundNames returns the names of all current bindings.
func (p *Params) BoundNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.bindings))
	for name := range p.bindings {
		names = append(names, name)
	}
	return names
}

// SetFile changes the watched file. A running watch restarts on the new
// path. Refused during callback execution.
func (p *Params) SetFile(path string, format parse.Format) {
	if p.guarded("SetFile") {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.path = path
	if format == parse.Auto {
		format = parse.Detect(path)
	}
	p.format = format
	p.cache.invalidate()
	p.current = nil

	if p.watcher != nil && p.watcher.Running() {
		if err := p.watcher.Start(path, func() { p.dirty.Store(true) }); err != nil {
			p.log.WithField("path", path).Warnf("failed to move watch: %v", err)
		}
		p.dirty.Store(true)
	}
}

// File returns the watched file path.
func (p *Params) File() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// InvalidateCache discards the freshness cache and the last-known values so
// the next Update performs a full read. Refused during callback execution.
func (p *Params) InvalidateCache() {
	if p.guarded("InvalidateCache") {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.invalidate()
	p.current = nil
}

// ResetToDefaults applies every binding's default value. Refused during
// callback execution.
func (p *Params) ResetToDefaults() {
	if p.guarded("ResetToDefaults") {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, slot := range p.bindings {
		slot.reset()
	}
}

// SetRetryConfig replaces the read retry policy.
func (p *Params) SetRetryConfig(cfg readfile.RetryConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retry = cfg
}

// RetryConfig returns the current read retry policy.
func (p *Params) RetryConfig() readfile.RetryConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retry
}

// LastError returns the most recent error, or nil when the last check
// succeeded.
func (p *Params) LastError() *lterrors.Error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// HasError reports whether the last check recorded an error.
func (p *Params) HasError() bool {
	return p.LastError().IsError()
}

// ClearError discards the recorded error.
func (p *Params) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = nil
}

// guarded reports whether op must be refused because the change callback
// is currently executing. The guard protects against self-recursion from
// the callback only; concurrent calls from other goroutines still need the
// caller's own serialization.
func (p *Params) guarded(op string) bool {
	if p.inCallback.Load() {
		p.log.Warnf("%s called from inside the change callback, skipped", op)
		return true
	}
	return false
}
