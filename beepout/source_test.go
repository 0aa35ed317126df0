package beepout

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/baratgabor/soundpool/spatial"
)

// otherClip stands in for a clip from a different renderer
type otherClip struct{}

func (otherClip) Duration() time.Duration { return time.Second }

// TestEffectiveRatio verifies pitch maps to a positive playback rate
func TestEffectiveRatio(t *testing.T) {
	testCases := []struct {
		name  string
		pitch float64
		want  float64
	}{
		{"unity", 1.0, 1.0},
		{"double", 2.0, 2.0},
		{"half", 0.5, 0.5},
		{"reversed", -2.0, 2.0},
		{"zero", 0, 1.0},
		{"nan", math.NaN(), 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := effectiveRatio(tc.pitch); got != tc.want {
				t.Errorf("Expected ratio %f for pitch %f, got %f", tc.want, tc.pitch, got)
			}
		})
	}
}

// TestNewVolume verifies the decibel mapping and the silence floor
func TestNewVolume(t *testing.T) {
	base := beep.Silence(16)

	v, ok := newVolume(base, 0.5).(*effects.Volume)
	if !ok {
		t.Fatal("Expected an effects.Volume wrapper")
	}
	if v.Silent {
		t.Error("Expected audible volume at 0.5")
	}
	if v.Volume != math.Log2(0.5) {
		t.Errorf("Expected log2 volume %f, got %f", math.Log2(0.5), v.Volume)
	}

	v = newVolume(base, 1.0).(*effects.Volume)
	if v.Volume != 0 {
		t.Errorf("Expected zero gain at unit volume, got %f", v.Volume)
	}

	v = newVolume(base, 0).(*effects.Volume)
	if !v.Silent {
		t.Error("Expected silence at zero volume")
	}

	v = newVolume(base, -1).(*effects.Volume)
	if !v.Silent {
		t.Error("Expected silence at negative volume")
	}
}

// TestSourceConfigureForeignClip verifies clips from another renderer
// degrade to silence instead of panicking
func TestSourceConfigureForeignClip(t *testing.T) {
	s := &Source{quality: 4}

	s.Configure(otherClip{}, 1.0, 1.0)

	// Play with no usable clip never reaches the speaker
	s.Play()

	if s.IsPlaying() {
		t.Error("Expected source not playing after degraded Play")
	}
}

// TestSourceStopWithoutPlay verifies stopping an idle source is
// harmless
func TestSourceStopWithoutPlay(t *testing.T) {
	s := &Source{quality: 4}

	s.Stop()

	if s.IsPlaying() {
		t.Error("Expected source not playing after Stop")
	}
}

// TestSourcePosition verifies position state roundtrips
func TestSourcePosition(t *testing.T) {
	s := &Source{quality: 4}

	if got := s.Position(); got != (spatial.Vec3{}) {
		t.Errorf("Expected zero position initially, got %+v", got)
	}

	want := spatial.Vec3{X: 1, Y: 2, Z: 3}
	s.SetPosition(want)
	if got := s.Position(); got != want {
		t.Errorf("Expected position %+v, got %+v", want, got)
	}
}
