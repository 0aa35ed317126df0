package beepout

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/baratgabor/soundpool"
	"github.com/baratgabor/soundpool/spatial"
)

// Source streams one clip at a time through the shared speaker.
// Playback completion is detected via a callback appended to the
// stream, so IsPlaying flips to false only once the speaker has
// actually drained the clip.
//
// Position is carried as state for callers that spatialize upstream;
// the rendering itself is non-positional.
type Source struct {
	quality int

	mu     sync.Mutex
	clip   *Clip
	pitch  float64
	volume float64
	pos    spatial.Vec3
	ctrl   *beep.Ctrl

	playing atomic.Bool
}

// Configure loads a clip and sets pitch and volume for the next
// Play. Clips from a different renderer are ignored and the next
// Play degrades to silence.
func (s *Source) Configure(clip soundpool.Clip, pitch, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := clip.(*Clip)
	s.clip = c
	s.pitch = pitch
	s.volume = volume
}

// Play starts streaming the configured clip
func (s *Source) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clip == nil {
		return
	}

	var str beep.Streamer = s.clip.buf.Streamer(0, s.clip.buf.Len())
	if ratio := effectiveRatio(s.pitch); ratio != 1 {
		str = beep.ResampleRatio(s.quality, ratio, str)
	}
	str = newVolume(str, s.volume)

	ctrl := &beep.Ctrl{Streamer: str}
	s.ctrl = ctrl
	s.playing.Store(true)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		s.playing.Store(false)
	})))
}

// Stop cuts the current stream. The speaker drains the detached
// control on its next pull.
func (s *Source) Stop() {
	s.mu.Lock()
	ctrl := s.ctrl
	s.ctrl = nil
	s.mu.Unlock()

	if ctrl != nil {
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
	}
	s.playing.Store(false)
}

// IsPlaying reports whether the speaker is still rendering the clip
func (s *Source) IsPlaying() bool {
	return s.playing.Load()
}

// Position returns the source's current position
func (s *Source) Position() spatial.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition moves the source
func (s *Source) SetPosition(pos spatial.Vec3) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
}

// effectiveRatio maps a request pitch to a positive playback rate.
// Reversed playback is not supported by the renderer, so negative
// pitch plays forward at the same speed. Zero and NaN play at 1.
func effectiveRatio(pitch float64) float64 {
	r := math.Abs(pitch)
	if r == 0 || math.IsNaN(r) {
		return 1
	}
	return r
}

// newVolume wraps a streamer with a volume effect.
// math.Log2(0) is -Inf, so zero and negative volume become silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

var _ soundpool.Source = (*Source)(nil)
