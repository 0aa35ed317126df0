// Package beepout renders soundpool playback through the beep
// library and the system speaker. One Factory owns the speaker; the
// sources it creates stream shared clip buffers with per-play pitch
// and volume applied.
package beepout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/baratgabor/soundpool"
)

// Config tunes the output device
type Config struct {
	// SampleRate is the output rate in Hz; clips are resampled to it
	// at load time
	SampleRate int

	// Quality is the resampling quality passed to beep (1-64)
	Quality int

	// Buffer is the speaker buffer length. Larger values survive
	// scheduling hiccups, smaller values cut latency.
	Buffer time.Duration
}

// DefaultConfig returns the standard output tuning
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 48000,
		Quality:    4,
		Buffer:     100 * time.Millisecond,
	}
}

// Factory creates speaker-backed sources and loads clips at the
// output sample rate. The speaker is initialized once, lazily.
type Factory struct {
	sr      beep.SampleRate
	quality int
	buffer  time.Duration

	initOnce sync.Once
	initErr  error
}

// NewFactory creates a factory. The speaker stays untouched until
// Init or the first NewSource call.
func NewFactory(cfg ...*Config) *Factory {
	c := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}
	return &Factory{
		sr:      beep.SampleRate(c.SampleRate),
		quality: c.Quality,
		buffer:  c.Buffer,
	}
}

// Init opens the system speaker. Calling it again returns the first
// result.
func (f *Factory) Init() error {
	f.initOnce.Do(func() {
		f.initErr = speaker.Init(f.sr, f.sr.N(f.buffer))
	})
	return f.initErr
}

// NewSource creates one playback source. The speaker is initialized
// on first use.
func (f *Factory) NewSource() (soundpool.Source, error) {
	if err := f.Init(); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	return &Source{quality: f.quality}, nil
}

// SampleRate returns the output sample rate
func (f *Factory) SampleRate() beep.SampleRate {
	return f.sr
}

// LoadClipFile decodes a .wav or .mp3 file into a clip. Decoding
// does not touch the speaker, so clips can be loaded and validated
// on machines with no audio device.
func (f *Factory) LoadClipFile(path string) (soundpool.Clip, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open clip: %w", err)
	}
	defer file.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	default:
		return nil, fmt.Errorf("unsupported clip format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode clip: %w", err)
	}
	defer streamer.Close()

	return f.bufferClip(streamer, format), nil
}

// NewClip buffers a finite streamer into a clip, resampling from the
// given format to the output rate
func (f *Factory) NewClip(format beep.Format, s beep.Streamer) *Clip {
	return f.bufferClip(s, format)
}

func (f *Factory) bufferClip(s beep.Streamer, format beep.Format) *Clip {
	var resampled beep.Streamer = s
	if format.SampleRate != f.sr {
		resampled = beep.Resample(f.quality, format.SampleRate, f.sr, s)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  f.sr,
		NumChannels: 2,
		Precision:   4,
	})
	buffer.Append(resampled)
	return &Clip{buf: buffer}
}
