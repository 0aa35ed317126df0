package soundpool

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baratgabor/soundpool/spatial"
)

// handleState tracks a handle through its playback cycle
type handleState int32

const (
	handleIdle handleState = iota
	handleReserved
	handlePlaying
	handleFinishing
)

// trackMode selects the spatial behavior of one cycle
type trackMode int

const (
	trackNone trackMode = iota
	trackFixed
	trackFollow
)

// Handle wraps one Source and carries it through the reserve, play,
// finish, release cycle. Handles are created by pool growth and
// reused indefinitely; release is never speculative, a handle only
// returns to the pool once its source confirms playback stopped.
type Handle struct {
	id   uuid.UUID
	src  Source
	pool *Pool

	mu         sync.Mutex
	state      handleState
	sound      SoundType
	mode       trackMode
	origin     spatial.Vec3
	onComplete func(SoundType)
	cancel     chan struct{}
	stopFollow chan struct{}
	followDone chan struct{}
}

func newHandle(p *Pool, src Source) *Handle {
	return &Handle{
		id:   uuid.New(),
		src:  src,
		pool: p,
	}
}

// ID returns the handle's stable identity
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Busy reports whether the handle is anywhere in an active cycle
func (h *Handle) Busy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state != handleIdle
}

// Sound returns the sound type this handle is playing, or SoundNone
// when idle
func (h *Handle) Sound() SoundType {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sound
}

// cycleParams carries everything one play cycle needs
type cycleParams struct {
	sound      SoundType
	clip       Clip
	volume     float64
	pitch      float64
	mode       trackMode
	at         spatial.Vec3
	follow     Target
	onComplete func(SoundType)
}

// begin configures the source and starts the playback cycle. The
// handle must come fresh from a pool reservation.
func (h *Handle) begin(params cycleParams) {
	h.mu.Lock()
	if h.state != handleIdle {
		h.mu.Unlock()
		panic(fmt.Sprintf("soundpool: reserved handle %s is not idle", h.id))
	}
	h.state = handleReserved
	h.sound = params.sound
	h.mode = params.mode
	h.onComplete = params.onComplete
	h.cancel = make(chan struct{})
	if params.mode != trackNone {
		h.origin = h.src.Position()
	}
	if params.mode == trackFollow {
		h.stopFollow = make(chan struct{})
		h.followDone = make(chan struct{})
	}
	cancel := h.cancel
	stopFollow, followDone := h.stopFollow, h.followDone
	h.mu.Unlock()

	h.src.Configure(params.clip, params.pitch, params.volume)
	switch params.mode {
	case trackFixed:
		h.src.SetPosition(params.at)
	case trackFollow:
		h.src.SetPosition(params.follow.Position())
	}
	h.src.Play()

	h.mu.Lock()
	h.state = handlePlaying
	h.mu.Unlock()

	if params.mode == trackFollow {
		go h.followLoop(params.follow, stopFollow, followDone)
	}
	go h.run(expectedWait(params.clip.Duration(), params.pitch), cancel)
}

// run waits out the expected playback duration plus margin, then
// polls the source until it confirms playback stopped
func (h *Handle) run(expected time.Duration, cancel <-chan struct{}) {
	select {
	case <-h.pool.clock.After(expected + h.pool.cfg.ReleaseMargin):
	case <-cancel:
		return
	}

	h.mu.Lock()
	// The cancel channel identifies the cycle this goroutine belongs
	// to. A Stop can recycle the handle into a new cycle between the
	// timer firing and this lock; only the current cycle's goroutine
	// may move it to Finishing.
	if h.state != handlePlaying || h.cancel != cancel {
		h.mu.Unlock()
		return
	}
	h.state = handleFinishing
	sound := h.sound
	h.mu.Unlock()

	for h.src.IsPlaying() {
		h.pool.stats.extraWaits.Add(1)
		if obs := h.pool.obs; obs != nil {
			obs.ExtraWait(sound, h.id)
		}
		select {
		case <-h.pool.clock.After(h.pool.cfg.RetryInterval):
		case <-cancel:
			return
		}
	}

	h.finishRelease()
}

// followLoop copies the target position to the source every tick
// until the cycle finishes
func (h *Handle) followLoop(target Target, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tick := h.pool.clock.NewTicker(h.pool.cfg.TickInterval)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C():
			h.src.SetPosition(target.Position())
		}
	}
}

// Stop cuts playback short and releases the handle immediately.
// It fails with ErrInvariant when no cycle is active.
func (h *Handle) Stop() error {
	h.mu.Lock()
	if h.state != handlePlaying && h.state != handleFinishing {
		h.mu.Unlock()
		return fmt.Errorf("%w: stop with no active playback", ErrInvariant)
	}
	// Closing cancel claims the cut. A concurrent Stop on the same
	// cycle finds it nil and skips straight to the release.
	if h.cancel != nil {
		close(h.cancel)
		h.cancel = nil
		h.src.Stop()
		h.pool.stats.stopped.Add(1)
	}
	h.state = handleFinishing
	h.mu.Unlock()

	h.finishRelease()
	return nil
}

// finishRelease performs the single Finishing to Idle transition.
// Exactly one caller wins; it tears down position tracking, restores
// the origin position, returns the handle to the pool, and finally
// fires the completion callback.
func (h *Handle) finishRelease() {
	h.mu.Lock()
	if h.state != handleFinishing {
		h.mu.Unlock()
		return
	}
	sound := h.sound
	onComplete := h.onComplete
	origin := h.origin
	mode := h.mode
	stopFollow, followDone := h.stopFollow, h.followDone

	h.state = handleIdle
	h.sound = SoundNone
	h.mode = trackNone
	h.onComplete = nil
	h.cancel = nil
	h.stopFollow = nil
	h.followDone = nil
	h.origin = spatial.Vec3{}
	h.mu.Unlock()

	if stopFollow != nil {
		close(stopFollow)
		<-followDone
	}
	if mode != trackNone {
		h.src.SetPosition(origin)
	}

	h.pool.stats.completed.Add(1)
	h.pool.put(h)

	if onComplete != nil {
		onComplete(sound)
	}
}

// expectedWait converts a clip's nominal duration to wall time at
// the given pitch. Pitch scales playback rate, so duration divides
// by its magnitude; reversed playback takes as long as forward.
// Zero pitch falls back to the nominal duration and lets the release
// poll absorb the difference.
func expectedWait(clipLen time.Duration, pitch float64) time.Duration {
	if pitch == 0 {
		return clipLen
	}
	return time.Duration(math.Abs(float64(clipLen) / pitch))
}
