// Package soundpool schedules fire-and-forget sound effect playback
// over a pool of reusable sources. A catalog maps sound types to
// clip variants with per-play randomization; handles carry one
// playback cycle each and return to the pool only once their source
// confirms it went quiet.
package soundpool

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baratgabor/soundpool/spatial"
)

// Request describes one play request. Only Sound is required.
type Request struct {
	Sound SoundType

	// Volume and Pitch multiply the variant's sampled base values.
	// Zero values mean 1.0.
	Volume float64
	Pitch  float64

	// At places the sound at a fixed position for this cycle
	At *spatial.Vec3

	// Follow keeps the sound glued to a moving target. It takes
	// precedence over At.
	Follow Target

	// OnComplete fires exactly once after the handle is released,
	// on the playback goroutine. It must not block.
	OnComplete func(SoundType)
}

// stats counters shared by manager, pool and handles
type stats struct {
	played     atomic.Uint64
	completed  atomic.Uint64
	rejected   atomic.Uint64
	stopped    atomic.Uint64
	grown      atomic.Uint64
	extraWaits atomic.Uint64
}

// Stats is a point-in-time snapshot of playback counters
type Stats struct {
	Played     uint64 // cycles started
	Completed  uint64 // cycles finished and released
	Rejected   uint64 // requests refused
	Stopped    uint64 // cycles cut short via Stop
	Grown      uint64 // handles added under pressure
	ExtraWaits uint64 // release polls past the expected duration
	PoolSize   int
	IdleCount  int
}

// Manager validates requests, picks variants and drives the pool.
// All methods are safe for concurrent use.
type Manager struct {
	pool *Pool
	cfg  *Config
	obs  Observer

	mu           sync.Mutex // Protects catalog, source, rng, volume
	catalog      *Catalog
	source       []SoundVariant
	rng          *rand.Rand
	masterVolume float64
	initialized  bool

	muted  atomic.Bool
	closed atomic.Bool
}

// New creates a manager over the given source factory and variant
// list. The pool stays empty until Init.
func New(factory SourceFactory, variants []SoundVariant, cfg ...*Config) *Manager {
	c := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}
	return &Manager{
		pool:         NewPool(factory, c),
		cfg:          c,
		source:       variants,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		masterVolume: 1.0,
	}
}

// SetObserver wires diagnostics. Call it before Init; the observer
// must not change once playback starts.
func (m *Manager) SetObserver(o Observer) {
	m.obs = o
	m.pool.setObserver(o)
}

func (m *Manager) setClock(c Clock) {
	m.pool.setClock(c)
}

// Init builds the catalog and creates the initial pool. Calling it
// again is a no-op.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

func (m *Manager) initLocked() error {
	if m.initialized {
		return nil
	}
	m.catalog = BuildCatalog(m.source, m.obs)
	m.reportMissingLocked()
	if err := m.pool.Grow(m.cfg.InitialSize); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	m.initialized = true
	return nil
}

func (m *Manager) reportMissingLocked() {
	if len(m.cfg.KnownSounds) == 0 || m.obs == nil {
		return
	}
	if missing := m.catalog.Missing(m.cfg.KnownSounds); len(missing) > 0 {
		m.obs.MissingSounds(missing)
	}
}

// Play validates the request, reserves a handle and starts a
// playback cycle. The handle stays owned by the pool; callers may
// keep it only to Stop the cycle early.
func (m *Manager) Play(req Request) (*Handle, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	m.mu.Lock()
	if !m.initialized {
		if m.obs != nil {
			m.obs.LateInit()
		}
		if err := m.initLocked(); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}
	if req.Sound == SoundNone {
		m.mu.Unlock()
		return nil, m.reject(req.Sound, ErrInvalidSoundType)
	}
	variants := m.catalog.Variants(req.Sound)
	if len(variants) == 0 {
		m.mu.Unlock()
		return nil, m.reject(req.Sound, ErrUnknownSoundType)
	}
	v := pickVariant(m.rng, variants)
	volume, pitch := v.derive(m.rng, orOne(req.Volume), orOne(req.Pitch))
	volume *= m.masterVolume
	m.mu.Unlock()

	if m.muted.Load() {
		volume = 0
	}

	h, grew, err := m.pool.reserveGrow()
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) && m.obs != nil {
			m.obs.PoolExhausted(req.Sound)
		}
		return nil, m.reject(req.Sound, err)
	}
	if grew {
		m.pool.stats.grown.Add(1)
		if m.obs != nil {
			m.obs.PoolExhausted(req.Sound)
			m.obs.PoolGrown(m.pool.Size())
		}
	}

	params := cycleParams{
		sound:      req.Sound,
		clip:       v.Clip,
		volume:     volume,
		pitch:      pitch,
		onComplete: req.OnComplete,
	}
	switch {
	case req.Follow != nil:
		params.mode = trackFollow
		params.follow = req.Follow
	case req.At != nil:
		params.mode = trackFixed
		params.at = *req.At
	}

	h.begin(params)
	m.pool.stats.played.Add(1)
	return h, nil
}

// reject records and reports a failed request
func (m *Manager) reject(sound SoundType, reason error) error {
	m.pool.stats.rejected.Add(1)
	if m.obs != nil {
		m.obs.RequestRejected(sound, reason)
	}
	return reason
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Rebuild replaces the variant list and rebuilds the catalog from
// scratch. In-flight playback keeps its already-selected clips.
func (m *Manager) Rebuild(variants []SoundVariant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.source = variants
	if !m.initialized {
		return
	}
	m.catalog = BuildCatalog(m.source, m.obs)
	m.reportMissingLocked()
}

// Sounds returns every sound type currently assigned in the catalog
func (m *Manager) Sounds() []SoundType {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.catalog == nil {
		return BuildCatalog(m.source, nil).Sounds()
	}
	return m.catalog.Sounds()
}

// MissingSounds returns which of the given sound types have no
// variants assigned
func (m *Manager) MissingSounds(known ...SoundType) []SoundType {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.catalog
	if c == nil {
		c = BuildCatalog(m.source, nil)
	}
	return c.Missing(known)
}

// SetMasterVolume scales every subsequent play (0.0-1.0)
func (m *Manager) SetMasterVolume(vol float64) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}

	m.mu.Lock()
	m.masterVolume = vol
	m.mu.Unlock()
}

// MasterVolume returns the current master volume
func (m *Manager) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

// ToggleMute toggles mute state, returns true if sound is now enabled
func (m *Manager) ToggleMute() bool {
	for {
		muted := m.muted.Load()
		if m.muted.CompareAndSwap(muted, !muted) {
			return muted
		}
	}
}

// IsMuted returns current mute state
func (m *Manager) IsMuted() bool {
	return m.muted.Load()
}

// Pool exposes the underlying handle pool
func (m *Manager) Pool() *Pool {
	return m.pool
}

// Close rejects further requests and force-releases every busy
// handle. Safe to call more than once.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.pool.stopAll()
}

// Stats returns a snapshot of playback counters
func (m *Manager) Stats() Stats {
	s := m.pool.stats
	return Stats{
		Played:     s.played.Load(),
		Completed:  s.completed.Load(),
		Rejected:   s.rejected.Load(),
		Stopped:    s.stopped.Load(),
		Grown:      s.grown.Load(),
		ExtraWaits: s.extraWaits.Load(),
		PoolSize:   m.pool.Size(),
		IdleCount:  m.pool.IdleCount(),
	}
}
