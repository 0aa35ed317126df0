package soundpool

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config tunes pool sizing and release scheduling
type Config struct {
	// InitialSize is the number of handles created at Init
	InitialSize int

	// GrowOnDemand lets the pool add one handle when a request finds
	// no idle handle. When false such requests fail with
	// ErrPoolExhausted.
	GrowOnDemand bool

	// ReleaseMargin is added to the expected clip duration before the
	// first release check
	ReleaseMargin time.Duration

	// RetryInterval spaces release checks while a source reports it
	// is still playing
	RetryInterval time.Duration

	// TickInterval spaces position updates in follow mode
	TickInterval time.Duration

	// KnownSounds optionally lists every sound type the application
	// uses. Init warns through the observer about listed types with
	// no variants assigned.
	KnownSounds []SoundType
}

// DefaultConfig returns the standard tuning
func DefaultConfig() *Config {
	return &Config{
		InitialSize:   8,
		GrowOnDemand:  true,
		ReleaseMargin: 100 * time.Millisecond,
		RetryInterval: 50 * time.Millisecond,
		TickInterval:  16 * time.Millisecond,
	}
}

// ConfigFromEnv loads configuration from environment variables,
// keeping defaults for anything unset or unparsable
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if size := os.Getenv("SOUNDPOOL_INITIAL_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val >= 0 {
			cfg.InitialSize = val
		}
	}

	if grow := os.Getenv("SOUNDPOOL_GROW_ON_DEMAND"); grow != "" {
		if val, err := strconv.ParseBool(grow); err == nil {
			cfg.GrowOnDemand = val
		}
	}

	if ms := os.Getenv("SOUNDPOOL_RELEASE_MARGIN_MS"); ms != "" {
		if val, err := strconv.Atoi(ms); err == nil && val >= 0 {
			cfg.ReleaseMargin = time.Duration(val) * time.Millisecond
		}
	}

	if ms := os.Getenv("SOUNDPOOL_RETRY_INTERVAL_MS"); ms != "" {
		if val, err := strconv.Atoi(ms); err == nil && val > 0 {
			cfg.RetryInterval = time.Duration(val) * time.Millisecond
		}
	}

	if ms := os.Getenv("SOUNDPOOL_TICK_INTERVAL_MS"); ms != "" {
		if val, err := strconv.Atoi(ms); err == nil && val > 0 {
			cfg.TickInterval = time.Duration(val) * time.Millisecond
		}
	}

	if known := os.Getenv("SOUNDPOOL_KNOWN_SOUNDS"); known != "" {
		for _, name := range strings.Split(known, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.KnownSounds = append(cfg.KnownSounds, SoundType(name))
			}
		}
	}

	return cfg
}
