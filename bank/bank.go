// Package bank loads sound definitions from YAML bank files and
// turns them into soundpool variants, decoding clip files through a
// pluggable loader and caching decoded clips across reloads.
package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/spf13/viper"

	"github.com/baratgabor/soundpool"
)

// Entry defines one variant in a bank file
type Entry struct {
	Sound string `mapstructure:"sound"`
	File  string `mapstructure:"file"`

	// Volume and Pitch take one element to pin a value or two for a
	// [low, high] randomization range. Empty means 1.0.
	Volume []float64 `mapstructure:"volume"`
	Pitch  []float64 `mapstructure:"pitch"`
}

// PoolSettings tunes the playback pool from the bank file
type PoolSettings struct {
	InitialSize  int      `mapstructure:"initial_size"`
	GrowOnDemand bool     `mapstructure:"grow_on_demand"`
	KnownSounds  []string `mapstructure:"known_sounds"`
}

// File is the parsed shape of a bank file
type File struct {
	Pool   PoolSettings `mapstructure:"pool"`
	Sounds []Entry      `mapstructure:"sounds"`
}

// Bank is a loaded sound bank ready to hand to the manager
type Bank struct {
	Variants []soundpool.SoundVariant
	Config   *soundpool.Config
	Path     string

	// Errors collects non-fatal per-entry load failures. The
	// affected variants carry nil clips and are skipped at catalog
	// build.
	Errors []error
}

// LoadClipFunc decodes one audio file into a clip
type LoadClipFunc func(path string) (soundpool.Clip, error)

// Decoded clips are kept per path and modification time, so a
// reload after editing only the bank file re-decodes nothing.
const (
	clipTTL   = 10 * time.Minute
	clipSweep = time.Minute
)

// Loader loads bank files, caching decoded clips across reloads
type Loader struct {
	loadClip LoadClipFunc
	clips    *cache.Cache
}

// NewLoader creates a loader around a clip decoder, typically
// beepout's Factory.LoadClipFile
func NewLoader(loadClip LoadClipFunc) *Loader {
	return &Loader{
		loadClip: loadClip,
		clips:    cache.New(clipTTL, clipSweep),
	}
}

// Load parses a bank file and decodes its clips. Entry failures are
// non-fatal: the variant is kept with a nil clip and collected in
// Bank.Errors. Relative clip paths resolve against the bank file's
// directory.
func (l *Loader) Load(path string) (*Bank, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	base := soundpool.DefaultConfig()
	f := File{
		Pool: PoolSettings{
			InitialSize:  base.InitialSize,
			GrowOnDemand: base.GrowOnDemand,
		},
	}
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}

	b := &Bank{Path: path}
	dir := filepath.Dir(path)
	for _, e := range f.Sounds {
		clip, err := l.clipFor(resolvePath(dir, e.File))
		if err != nil {
			b.Errors = append(b.Errors, fmt.Errorf("%s: %w", e.File, err))
		}
		b.Variants = append(b.Variants, soundpool.SoundVariant{
			Sound:  soundpool.SoundType(e.Sound),
			Clip:   clip,
			Volume: rangeOf(e.Volume),
			Pitch:  rangeOf(e.Pitch),
		})
	}

	cfg := base
	cfg.InitialSize = f.Pool.InitialSize
	cfg.GrowOnDemand = f.Pool.GrowOnDemand
	for _, s := range f.Pool.KnownSounds {
		cfg.KnownSounds = append(cfg.KnownSounds, soundpool.SoundType(s))
	}
	b.Config = cfg

	return b, nil
}

// clipFor returns a cached decode when the file is unchanged since
// the last load
func (l *Loader) clipFor(path string) (soundpool.Clip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())
	if cached, ok := l.clips.Get(key); ok {
		return cached.(soundpool.Clip), nil
	}

	clip, err := l.loadClip(path)
	if err != nil {
		return nil, err
	}
	l.clips.Set(key, clip, cache.DefaultExpiration)
	return clip, nil
}

func resolvePath(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// rangeOf maps a YAML range list to a soundpool range
func rangeOf(vals []float64) soundpool.Range {
	switch len(vals) {
	case 0:
		return soundpool.Range{}
	case 1:
		return soundpool.FixedRange(vals[0])
	default:
		return soundpool.Range{Low: vals[0], High: vals[1]}
	}
}
