package beepout

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ToneClip synthesizes a sine tone clip. Handy as placeholder
// content and for running without asset files.
func (f *Factory) ToneClip(freq float64, d time.Duration) *Clip {
	osc := newSineOsc(f.sr, freq, d)
	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  f.sr,
		NumChannels: 2,
		Precision:   4,
	})
	buffer.Append(osc)
	return &Clip{buf: buffer}
}

// sineOsc is a finite sine streamer with linear attack and release
// shaping to avoid edge clicks
type sineOsc struct {
	rate    beep.SampleRate
	freq    float64
	phase   float64
	pos     int
	total   int
	attack  int
	release int
}

func newSineOsc(rate beep.SampleRate, freq float64, d time.Duration) *sineOsc {
	total := rate.N(d)
	attack := rate.N(2 * time.Millisecond)
	release := rate.N(10 * time.Millisecond)
	if attack+release > total {
		attack = total / 4
		release = total / 4
	}
	return &sineOsc{
		rate:    rate,
		freq:    freq,
		total:   total,
		attack:  attack,
		release: release,
	}
}

func (o *sineOsc) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.total {
			return i, false
		}

		val := math.Sin(2 * math.Pi * o.phase)

		vol := 1.0
		if o.attack > 0 && o.pos < o.attack {
			vol = float64(o.pos) / float64(o.attack)
		}
		if remaining := o.total - o.pos; o.release > 0 && remaining < o.release {
			vol = float64(remaining) / float64(o.release)
		}

		samples[i][0] = val * vol
		samples[i][1] = val * vol

		// Advance phase
		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.pos++
	}
	return len(samples), true
}

func (o *sineOsc) Err() error { return nil }
