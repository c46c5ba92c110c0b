package tune

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreshnessFirstCheckAlwaysReads(t *testing.T) {
	f := newFreshness()
	assert.True(t, f.shouldRead(time.Now(), time.Now()))
}

func TestFreshnessSkipsWithinWindow(t *testing.T) {
	f := newFreshness()
	mod := time.Unix(1000, 0)
	now := time.Unix(2000, 0)

	f.record(mod, now)
	assert.False(t, f.shouldRead(mod, now.Add(5*time.Millisecond)))
}

func TestFreshnessReadsAfterWindow(t *testing.T) {
	f := newFreshness()
	mod := time.Unix(1000, 0)
	now := time.Unix(2000, 0)

	f.record(mod, now)
	assert.True(t, f.shouldRead(mod, now.Add(cacheWindow)))
}

func TestFreshnessReadsOnMtimeChange(t *testing.T) {
	f := newFreshness()
	mod := time.Unix(1000, 0)
	now := time.Unix(2000, 0)

	f.record(mod, now)
	assert.True(t, f.shouldRead(mod.Add(time.Second), now.Add(time.Millisecond)))
}

func TestFreshnessInvalidate(t *testing.T) {
	f := newFreshness()
	mod := time.Unix(1000, 0)
	now := time.Unix(2000, 0)

	f.record(mod, now)
	f.invalidate()
	assert.True(t, f.shouldRead(mod, now.Add(time.Millisecond)))
}
