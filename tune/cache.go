package tune

import "time"

// cacheWindow is how long a freshness observation stays valid. Within the
// window, an unchanged modification time skips the read entirely, bounding
// I/O under tight polling loops without losing correctness: a genuinely
// changed file has a different timestamp once the window lapses.
const cacheWindow = 10 * time.Millisecond

// freshness is the change-deduplication cache for one file.
type freshness struct {
	modTime   time.Time
	checkedAt time.Time
	valid     bool
	window    time.Duration
}

func newFreshness() freshness {
	return freshness{window: cacheWindow}
}

// shouldRead reports whether a content read is warranted. It is false only
// when a previous successful check exists, the window has not elapsed, and
// the modification time is unchanged.
func (f *freshness) shouldRead(modTime, now time.Time) bool {
	if !f.valid {
		return true
	}
	if now.Sub(f.checkedAt) >= f.window {
		return true
	}
	return !modTime.Equal(f.modTime)
}

// record stores a successful check.
func (f *freshness) record(modTime, now time.Time) {
	f.modTime = modTime
	f.checkedAt = now
	f.valid = true
}

// invalidate forces the next shouldRead to return true.
func (f *freshness) invalidate() {
	*f = freshness{window: f.window}
}
