package tune

import "sync"

// Process-wide default instances for quick experiments. Libraries and
// larger applications should construct their own Params/Tuner; the default
// is never the only access path, and tests can swap in isolated instances.

const (
	// DefaultTunerFile is the file the default tuner watches.
	DefaultTunerFile = "params.txt"
	// DefaultParamsFile is the file the default params store watches.
	DefaultParamsFile = "params.json"
)

var (
	globalMu     sync.Mutex
	globalTuner  *Tuner
	globalParams *Params
)

// DefaultTuner returns the lazily-initialized process-wide Tuner watching
// DefaultTunerFile.
func DefaultTuner() *Tuner {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalTuner == nil {
		globalTuner = NewTuner(DefaultTunerFile)
	}
	return globalTuner
}

// DefaultParams returns the lazily-initialized process-wide Params store
// watching DefaultParamsFile.
func DefaultParams() *Params {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalParams == nil {
		globalParams = NewParams(DefaultParamsFile)
	}
	return globalParams
}

// SetDefaultTuner replaces the process-wide Tuner. Tests use this to
// inject an isolated instance; pass nil to fall back to lazy creation on
// the next DefaultTuner call.
func SetDefaultTuner(t *Tuner) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalTuner = t
}

// SetDefaultParams replaces the process-wide Params store.
func SetDefaultParams(p *Params) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalParams = p
}

// TryGet reads the single value of the default tuner into slot.
func TryGet(slot Slot) bool {
	return DefaultTuner().TryGet(slot)
}

// Update checks the default params store for changes.
func Update() bool {
	return DefaultParams().Update()
}

// Bind binds a name on the default params store.
func Bind(name string, slot Slot) {
	DefaultParams().Bind(name, slot)
}
