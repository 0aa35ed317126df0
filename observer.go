package soundpool

import (
	"log"

	"github.com/google/uuid"
)

// Observer receives diagnostic events from the manager and pool.
// All methods are fire-and-forget: implementations must not block
// and must be safe for concurrent use. A nil observer is valid and
// costs nothing.
type Observer interface {
	// EmptyCatalog fires when a catalog build ends with no playable variants
	EmptyCatalog()

	// VariantSkipped fires when a variant is dropped during catalog build
	VariantSkipped(v SoundVariant, reason error)

	// MissingSounds reports known sound types with no variants assigned
	MissingSounds(sounds []SoundType)

	// LateInit fires when a play request arrives before explicit Init
	LateInit()

	// RequestRejected fires when a play request fails
	RequestRejected(sound SoundType, reason error)

	// PoolExhausted fires when a request finds no idle handle,
	// before any growth attempt
	PoolExhausted(sound SoundType)

	// PoolGrown fires after growth under pressure, with the new total size
	PoolGrown(size int)

	// ExtraWait fires each time a handle outlives its expected duration
	// and the release poll has to go another round
	ExtraWait(sound SoundType, handle uuid.UUID)
}

// LogObserver writes every event to a standard library logger
type LogObserver struct {
	Logger *log.Logger // nil means log.Default()
}

func (o *LogObserver) logf(format string, args ...any) {
	l := o.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("sound: "+format, args...)
}

func (o *LogObserver) EmptyCatalog() {
	o.logf("catalog build produced no playable variants")
}

func (o *LogObserver) VariantSkipped(v SoundVariant, reason error) {
	o.logf("variant for %q skipped: %v", v.Sound, reason)
}

func (o *LogObserver) MissingSounds(sounds []SoundType) {
	o.logf("no variants assigned for: %v", sounds)
}

func (o *LogObserver) LateInit() {
	o.logf("play requested before Init, initializing now")
}

func (o *LogObserver) RequestRejected(sound SoundType, reason error) {
	o.logf("request for %q rejected: %v", sound, reason)
}

func (o *LogObserver) PoolExhausted(sound SoundType) {
	o.logf("pool exhausted on request for %q", sound)
}

func (o *LogObserver) PoolGrown(size int) {
	o.logf("pool grown under pressure, new size %d", size)
}

func (o *LogObserver) ExtraWait(sound SoundType, handle uuid.UUID) {
	o.logf("handle %s still playing %q past expected duration, waiting", handle, sound)
}

// NopObserver discards every event. Embed it to implement Observer
// partially.
type NopObserver struct{}

func (NopObserver) EmptyCatalog()                      {}
func (NopObserver) VariantSkipped(SoundVariant, error) {}
func (NopObserver) MissingSounds([]SoundType)          {}
func (NopObserver) LateInit()                          {}
func (NopObserver) RequestRejected(SoundType, error)   {}
func (NopObserver) PoolExhausted(SoundType)            {}
func (NopObserver) PoolGrown(int)                      {}
func (NopObserver) ExtraWait(SoundType, uuid.UUID)     {}

// compile-time interface checks
var (
	_ Observer = (*LogObserver)(nil)
	_ Observer = NopObserver{}
)
