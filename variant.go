package soundpool

import (
	"math/rand"
)

// SoundType identifies a logical sound effect. Callers typically
// declare their own set as constants:
//
//	const (
//		SoundExplosion = soundpool.SoundType("explosion")
//		SoundCoin      = soundpool.SoundType("coin")
//	)
type SoundType string

// SoundNone is the reserved sentinel for "no sound". Requests for it
// are always rejected.
const SoundNone SoundType = ""

// Range is an inclusive randomization interval. The zero value is
// treated as the fixed value 1.0 so that plain variants need no
// explicit ranges.
type Range struct {
	Low, High float64
}

// FixedRange returns a zero-width range pinned to v
func FixedRange(v float64) Range {
	return Range{Low: v, High: v}
}

// pick draws a uniform value from the range. Reversed bounds are
// tolerated and treated as [High, Low].
func (r Range) pick(rng *rand.Rand) float64 {
	lo, hi := r.Low, r.High
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func (r Range) normalized() Range {
	if r == (Range{}) {
		return Range{Low: 1, High: 1}
	}
	return r
}

// SoundVariant binds one clip to a sound type with per-play
// randomization ranges. Several variants may share a sound type;
// playback picks one uniformly.
type SoundVariant struct {
	Sound SoundType
	Clip  Clip

	// Volume and Pitch are sampled per play and multiplied with the
	// request's modifiers. Zero values mean 1.0.
	Volume Range
	Pitch  Range
}

func (v SoundVariant) validate() error {
	if v.Sound == SoundNone {
		return ErrInvalidSoundType
	}
	if v.Clip == nil {
		return ErrMissingClip
	}
	return nil
}

// derive computes the final volume and pitch for one play cycle
func (v SoundVariant) derive(rng *rand.Rand, volumeMul, pitchMul float64) (volume, pitch float64) {
	volume = v.Volume.pick(rng) * volumeMul
	pitch = v.Pitch.pick(rng) * pitchMul
	return volume, pitch
}

// pickVariant selects one variant uniformly at random
func pickVariant(rng *rand.Rand, variants []SoundVariant) SoundVariant {
	if len(variants) == 1 {
		return variants[0]
	}
	return variants[rng.Intn(len(variants))]
}
