package soundpool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/baratgabor/soundpool/spatial"
)

// fakeClip reports a fixed duration and carries no audio data
type fakeClip struct {
	d time.Duration
}

func (c fakeClip) Duration() time.Duration { return c.d }

// fakeSource records every call and lets tests script how long the
// source keeps reporting playback past the expected duration.
type fakeSource struct {
	mu       sync.Mutex
	plays    int
	stops    int
	overlaps int
	polls    int
	pending  int // IsPlaying answers true this many more times
	active   bool
	clip     Clip
	pitch    float64
	volume   float64
	pos      spatial.Vec3
	posCh    chan spatial.Vec3
}

func (s *fakeSource) Configure(clip Clip, pitch, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clip = clip
	s.pitch = pitch
	s.volume = volume
}

func (s *fakeSource) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.overlaps++
	}
	s.active = true
	s.plays++
}

func (s *fakeSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.stops++
}

func (s *fakeSource) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.pending > 0 {
		s.pending--
		return true
	}
	s.active = false
	return false
}

func (s *fakeSource) Position() spatial.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *fakeSource) SetPosition(pos spatial.Vec3) {
	s.mu.Lock()
	s.pos = pos
	ch := s.posCh
	s.mu.Unlock()
	if ch != nil {
		ch <- pos
	}
}

// holdFor makes the next n release polls find the source still playing
func (s *fakeSource) holdFor(n int) {
	s.mu.Lock()
	s.pending = n
	s.mu.Unlock()
}

// notifyPositions mirrors every SetPosition into ch; pass nil to stop
func (s *fakeSource) notifyPositions(ch chan spatial.Vec3) {
	s.mu.Lock()
	s.posCh = ch
	s.mu.Unlock()
}

func (s *fakeSource) counts() (plays, stops, overlaps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays, s.stops, s.overlaps
}

func (s *fakeSource) config() (pitch, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch, s.volume
}

var errSourceLimit = errors.New("source limit reached")

// fakeFactory hands out fake sources and can be capped to force
// growth failures
type fakeFactory struct {
	mu      sync.Mutex
	sources []*fakeSource
	limit   int // 0 means unlimited
}

func (f *fakeFactory) NewSource() (Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit > 0 && len(f.sources) >= f.limit {
		return nil, errSourceLimit
	}
	s := &fakeSource{}
	f.sources = append(f.sources, s)
	return s, nil
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

func (f *fakeFactory) source(i int) *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sources[i]
}

func (f *fakeFactory) totalOverlaps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, s := range f.sources {
		total += s.overlaps
	}
	return total
}

// fakeTarget is a movable position for follow-mode tests
type fakeTarget struct {
	mu  sync.Mutex
	pos spatial.Vec3
}

func (t *fakeTarget) Position() spatial.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *fakeTarget) moveTo(pos spatial.Vec3) {
	t.mu.Lock()
	t.pos = pos
	t.mu.Unlock()
}

// recordingObserver counts every diagnostic event for assertions
type recordingObserver struct {
	mu           sync.Mutex
	emptyCatalog int
	skipped      []SoundVariant
	missing      [][]SoundType
	lateInit     int
	rejected     []SoundType
	exhausted    []SoundType
	grown        []int
	extraWaits   int
}

func (o *recordingObserver) EmptyCatalog() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emptyCatalog++
}

func (o *recordingObserver) VariantSkipped(v SoundVariant, reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped = append(o.skipped, v)
}

func (o *recordingObserver) MissingSounds(sounds []SoundType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.missing = append(o.missing, sounds)
}

func (o *recordingObserver) LateInit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lateInit++
}

func (o *recordingObserver) RequestRejected(sound SoundType, reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, sound)
}

func (o *recordingObserver) PoolExhausted(sound SoundType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exhausted = append(o.exhausted, sound)
}

func (o *recordingObserver) PoolGrown(size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.grown = append(o.grown, size)
}

func (o *recordingObserver) ExtraWait(sound SoundType, handle uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extraWaits++
}

// observerSnapshot is a lock-free copy of the recorded events
type observerSnapshot struct {
	emptyCatalog int
	skipped      []SoundVariant
	missing      [][]SoundType
	lateInit     int
	rejected     []SoundType
	exhausted    []SoundType
	grown        []int
	extraWaits   int
}

func (o *recordingObserver) snapshot() observerSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return observerSnapshot{
		emptyCatalog: o.emptyCatalog,
		skipped:      append([]SoundVariant(nil), o.skipped...),
		missing:      append([][]SoundType(nil), o.missing...),
		lateInit:     o.lateInit,
		rejected:     append([]SoundType(nil), o.rejected...),
		exhausted:    append([]SoundType(nil), o.exhausted...),
		grown:        append([]int(nil), o.grown...),
		extraWaits:   o.extraWaits,
	}
}

// waitFor polls a condition until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
