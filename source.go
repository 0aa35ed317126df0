package soundpool

import (
	"time"

	"github.com/baratgabor/soundpool/spatial"
)

// Clip is a decoded audio buffer. The pool never reads sample data;
// it only needs the nominal duration to schedule handle release.
type Clip interface {
	Duration() time.Duration
}

// Source is the playback capability owned by a single handle.
// Implementations render audio; the pool drives the lifecycle.
//
// Configure, Play and Stop are called from at most one goroutine at
// a time. IsPlaying, Position and SetPosition may be called
// concurrently with them and must be safe.
type Source interface {
	// Configure loads a clip and sets pitch and volume for the next Play
	Configure(clip Clip, pitch, volume float64)

	Play()
	Stop()

	// IsPlaying reports whether audio is still audibly rendering.
	// The pool polls this after the expected duration elapses and
	// only releases the handle once it returns false.
	IsPlaying() bool

	Position() spatial.Vec3
	SetPosition(pos spatial.Vec3)
}

// SourceFactory creates sources for pool growth
type SourceFactory interface {
	NewSource() (Source, error)
}

// SourceFactoryFunc adapts a function to the SourceFactory interface
type SourceFactoryFunc func() (Source, error)

func (f SourceFactoryFunc) NewSource() (Source, error) {
	return f()
}

// Target exposes a live position for follow-mode playback.
// Position is read once per tracking tick and must be safe for
// concurrent use.
type Target interface {
	Position() spatial.Vec3
}

// TargetFunc adapts a function to the Target interface
type TargetFunc func() spatial.Vec3

func (f TargetFunc) Position() spatial.Vec3 {
	return f()
}
