package transform

import (
	"math"
	"testing"

	"github.com/taigrr/spincube/pkg/math3d"
)

func TestComposedYXWrapsExactly(t *testing.T) {
	r := DefaultRotation()
	var s State
	for i := range 359 {
		r.Advance(&s, 1)
		if s.Degrees != float64(i+1) {
			t.Fatalf("frame %d: degrees = %v, want %d", i+1, s.Degrees, i+1)
		}
	}
	r.Advance(&s, 1)
	if s.Degrees != 0 {
		t.Fatalf("degrees after 360 frames = %v, want exactly 0", s.Degrees)
	}

	// Many laps must not drift.
	for range 360 * 1000 {
		r.Advance(&s, 1)
	}
	if s.Degrees != 0 {
		t.Errorf("degrees after 1000 more laps = %v, want exactly 0", s.Degrees)
	}
	if s.Frame != 360*1001 {
		t.Errorf("frame = %d, want %d", s.Frame, 360*1001)
	}
}

func TestAdvanceSpeed(t *testing.T) {
	r := DefaultRotation()
	var s State
	r.Advance(&s, 0)
	if s.Degrees != 0 || s.Frame != 1 {
		t.Errorf("paused advance = %+v, want degrees 0 frame 1", s)
	}
	r.Advance(&s, 0.5)
	if s.Degrees != 0.5 {
		t.Errorf("half-speed advance = %v, want 0.5", s.Degrees)
	}

	r.Mode = SingleAxis
	s.Reset()
	r.Advance(&s, 1)
	if math.Abs(s.Angle-0.02) > 1e-15 {
		t.Errorf("single-axis angle = %v, want 0.02", s.Angle)
	}
}

func TestRotationPeriodicity(t *testing.T) {
	backends := []Backend{HandMath{}, LibraryMath{}}

	for _, b := range backends {
		t.Run(b.Name()+"/composed-yx", func(t *testing.T) {
			r := DefaultRotation()
			var s State
			start := r.Matrix(b, s)
			for range 360 {
				r.Advance(&s, 1)
			}
			if got := r.Matrix(b, s); !got.ApproxEqual(start, 1e-12) {
				t.Errorf("after 360 frames = %v, want %v", got, start)
			}
		})

		t.Run(b.Name()+"/single-axis", func(t *testing.T) {
			n := 500
			r := Rotation{Mode: SingleAxis, Axis: math3d.V3(1, 1, 0), Step: 2 * math.Pi / float64(n)}
			var s State
			for range n {
				r.Advance(&s, 1)
			}
			if got := r.Matrix(b, s); !got.ApproxEqual(math3d.Identity(), 1e-9) {
				t.Errorf("after %d frames = %v, want identity", n, got)
			}
		})
	}
}

func TestComposedYXOrder(t *testing.T) {
	// Y-then-X means RotY * RotX: X applies to the vertex first.
	r := DefaultRotation()
	s := State{Degrees: 90}
	got := r.Matrix(HandMath{}, s).MulVec3(math3d.V3(0, 1, 0))
	want := math3d.RotateY(math.Pi / 2).MulVec3(math3d.RotateX(math.Pi / 2).MulVec3(math3d.V3(0, 1, 0)))
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("RotY*RotX applied to +Y = %v, want %v", got, want)
	}
}

func TestRotationValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Rotation
		wantErr bool
	}{
		{"default", DefaultRotation(), false},
		{"single axis", Rotation{Mode: SingleAxis, Axis: math3d.V3(1, 1, 0), Step: 0.02}, false},
		{"zero axis", Rotation{Mode: SingleAxis, Step: 0.02}, true},
		{"nan step", Rotation{Mode: SingleAxis, Axis: math3d.V3(0, 1, 0), Step: math.NaN()}, true},
		{"inf degrees", Rotation{Mode: ComposedYX, DegreeStep: math.Inf(1)}, true},
		{"bad mode", Rotation{Mode: RotationMode(9)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.r.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseModes(t *testing.T) {
	for in, want := range map[string]RotationMode{
		"single-axis": SingleAxis,
		"SINGLE_AXIS": SingleAxis,
		"composed-yx": ComposedYX,
		"composed_yx": ComposedYX,
	} {
		got, err := ParseRotationMode(in)
		if err != nil || got != want {
			t.Errorf("ParseRotationMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseRotationMode("spiral"); err == nil {
		t.Error("expected error for unknown rotation mode")
	}

	var cm CameraMode
	if err := cm.UnmarshalText([]byte("look_at")); err != nil || cm != CameraLookAt {
		t.Errorf("UnmarshalText(look_at) = %v, %v", cm, err)
	}
	if _, err := ParseCameraMode("orbit"); err == nil {
		t.Error("expected error for unknown camera mode")
	}
}
