package soundpool

import (
	"fmt"
	"sync"
)

// Pool owns every handle and tracks which are idle. Handles are
// created during growth and never destroyed; they cycle between the
// idle set and active playback.
type Pool struct {
	factory SourceFactory
	cfg     *Config
	clock   Clock
	obs     Observer
	stats   *stats

	mu   sync.Mutex
	idle []*Handle
	all  []*Handle
}

// NewPool creates an empty pool. Call Grow to create handles.
func NewPool(factory SourceFactory, cfg ...*Config) *Pool {
	c := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}
	return &Pool{
		factory: factory,
		cfg:     c,
		clock:   SystemClock(),
		stats:   &stats{},
	}
}

func (p *Pool) setClock(c Clock) {
	p.clock = c
}

func (p *Pool) setObserver(o Observer) {
	p.obs = o
}

// Grow adds n handles to the pool. On factory error the handles
// created so far are kept.
func (p *Pool) Grow(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.growLocked(n)
}

func (p *Pool) growLocked(n int) error {
	for i := 0; i < n; i++ {
		src, err := p.factory.NewSource()
		if err != nil {
			return fmt.Errorf("pool grow: %w", err)
		}
		h := newHandle(p, src)
		p.all = append(p.all, h)
		p.idle = append(p.idle, h)
	}
	return nil
}

// Reserve pops an idle handle without growing
func (p *Pool) Reserve() (*Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.popLocked()
}

// reserveGrow pops an idle handle, growing by one inside the same
// critical section when the pool is empty and growth is allowed.
// Growing before reserving keeps concurrent requests from stealing
// the fresh handle.
func (p *Pool) reserveGrow() (h *Handle, grew bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.popLocked(); ok {
		return h, false, nil
	}
	if !p.cfg.GrowOnDemand {
		return nil, false, ErrPoolExhausted
	}
	if err := p.growLocked(1); err != nil {
		return nil, false, err
	}
	h, _ = p.popLocked()
	return h, true, nil
}

// popLocked takes the most recently released handle
func (p *Pool) popLocked() (*Handle, bool) {
	n := len(p.idle)
	if n == 0 {
		return nil, false
	}
	h := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	return h, true
}

// put returns a finished handle to the idle set
func (p *Pool) put(h *Handle) {
	p.mu.Lock()
	p.idle = append(p.idle, h)
	p.mu.Unlock()
}

// Size returns the total number of handles ever created
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// IdleCount returns the number of handles available for reservation
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// BusyCount returns the number of handles currently reserved or playing
func (p *Pool) BusyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all) - len(p.idle)
}

// stopAll force-releases every busy handle
func (p *Pool) stopAll() {
	p.mu.Lock()
	all := make([]*Handle, len(p.all))
	copy(all, p.all)
	p.mu.Unlock()

	for _, h := range all {
		_ = h.Stop()
	}
}
