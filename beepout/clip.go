package beepout

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/baratgabor/soundpool"
)

// Clip is a fully buffered, decoded sound at the output sample rate.
// Clips are immutable and shared; each play streams a fresh window
// over the same buffer.
type Clip struct {
	buf *beep.Buffer
}

// Duration returns the clip length at normal pitch
func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// Buffer exposes the underlying sample buffer
func (c *Clip) Buffer() *beep.Buffer {
	return c.buf
}

var _ soundpool.Clip = (*Clip)(nil)
