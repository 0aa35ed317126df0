package soundpool

import (
	"sync"
	"time"
)

// ManualClock is a controllable Clock for testing. Time only moves
// when Advance is called, and pending waits fire in chronological
// order as the clock passes them.
type ManualClock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	waiters []*manualWaiter
	tickers []*manualTicker
}

type manualWaiter struct {
	at time.Time
	ch chan time.Time
}

type manualTicker struct {
	clock   *ManualClock
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

// NewManualClock creates a manual clock starting at the given time
func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{now: start}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that fires once the clock has been
// advanced past the given duration. Non-positive durations fire
// immediately.
func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, &manualWaiter{at: c.now.Add(d), ch: ch})
	c.cond.Broadcast()
	return ch
}

// NewTicker returns a ticker driven by Advance. Ticks coalesce when
// the receiver lags, matching time.Ticker behavior.
func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTicker{
		clock:  c,
		period: d,
		next:   c.now.Add(d),
		ch:     make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, t)
	c.cond.Broadcast()
	return t
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	for i, tk := range c.tickers {
		if tk == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			break
		}
	}
}

// Advance moves the clock forward by d, firing due waiters and
// tickers in chronological order
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.now.Add(d)
	for {
		at, ok := c.nextEventBefore(target)
		if !ok {
			break
		}
		c.now = at
		c.fireDue()
	}
	c.now = target
}

// nextEventBefore finds the earliest pending event at or before target
func (c *ManualClock) nextEventBefore(target time.Time) (time.Time, bool) {
	var at time.Time
	found := false
	for _, w := range c.waiters {
		if !w.at.After(target) && (!found || w.at.Before(at)) {
			at = w.at
			found = true
		}
	}
	for _, t := range c.tickers {
		if !t.next.After(target) && (!found || t.next.Before(at)) {
			at = t.next
			found = true
		}
	}
	return at, found
}

// fireDue delivers every waiter and tick due at or before c.now
func (c *ManualClock) fireDue() {
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at.After(c.now) {
			kept = append(kept, w)
			continue
		}
		w.ch <- c.now
	}
	c.waiters = kept

	for _, t := range c.tickers {
		for !t.next.After(c.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

// BlockUntil waits until at least n waits are pending on the clock.
// Tests use it to synchronize with goroutines before advancing time.
func (c *ManualClock) BlockUntil(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters)+len(c.tickers) < n {
		c.cond.Wait()
	}
}
