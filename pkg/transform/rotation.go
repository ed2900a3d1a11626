package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/spincube/pkg/math3d"
)

// RotationMode selects how the per-frame model rotation is built.
type RotationMode int

const (
	// SingleAxis rotates about one axis by an angle that grows by a fixed
	// radian step per frame.
	SingleAxis RotationMode = iota
	// ComposedYX rotates about Y and then X by the same angle, driven by a
	// degree counter that wraps at 360.
	ComposedYX
)

func (m RotationMode) String() string {
	switch m {
	case SingleAxis:
		return "single-axis"
	case ComposedYX:
		return "composed-yx"
	default:
		return fmt.Sprintf("RotationMode(%d)", int(m))
	}
}

// ParseRotationMode accepts "single-axis" or "composed-yx"; underscores
// and case are ignored.
func ParseRotationMode(s string) (RotationMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "single-axis", "axis":
		return SingleAxis, nil
	case "composed-yx", "yx":
		return ComposedYX, nil
	}
	return 0, fmt.Errorf("unknown rotation mode %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RotationMode) UnmarshalText(text []byte) error {
	v, err := ParseRotationMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m RotationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Rotation configures the model rotation.
type Rotation struct {
	Mode       RotationMode
	Axis       math3d.Vec3 // SingleAxis only; need not be unit length
	Step       float64     // SingleAxis radians per frame
	DegreeStep float64     // ComposedYX degrees per frame
}

// DefaultRotation is a composed Y/X spin at one degree per frame.
func DefaultRotation() Rotation {
	return Rotation{
		Mode:       ComposedYX,
		Axis:       math3d.V3(1, 1, 0),
		Step:       0.02,
		DegreeStep: 1,
	}
}

// Validate rejects a rotation whose matrix would be undefined.
func (r Rotation) Validate() error {
	switch r.Mode {
	case SingleAxis:
		if r.Axis.LenSq() == 0 || !r.Axis.IsFinite() {
			return &DegenerateError{Op: "rotation", Param: "axis", Value: r.Axis.Len(), Reason: "axis must be a finite non-zero vector"}
		}
		if math.IsNaN(r.Step) || math.IsInf(r.Step, 0) {
			return &DegenerateError{Op: "rotation", Param: "step", Value: r.Step, Reason: "must be finite"}
		}
	case ComposedYX:
		if math.IsNaN(r.DegreeStep) || math.IsInf(r.DegreeStep, 0) {
			return &DegenerateError{Op: "rotation", Param: "degree_step", Value: r.DegreeStep, Reason: "must be finite"}
		}
	default:
		return fmt.Errorf("unknown rotation mode %d", int(r.Mode))
	}
	return nil
}

// State is the per-session render state advanced once per frame. The
// caller owns it; nothing else mutates it.
type State struct {
	Frame   uint64  // Frames advanced since the last reset
	Angle   float64 // SingleAxis accumulated angle in radians, kept in [0, 2π)
	Degrees float64 // ComposedYX counter in degrees, kept in [0, 360)
}

// Reset returns the state to frame zero.
func (s *State) Reset() {
	*s = State{}
}

// Radians returns the composed Y/X angle in radians.
func (s State) Radians() float64 {
	return s.Degrees * math.Pi / 180
}

// Advance steps s by one frame scaled by speed (1 is full speed, 0 holds).
// Whole-degree steps land exactly on 360 and wrap to exactly 0.
func (r Rotation) Advance(s *State, speed float64) {
	s.Frame++
	switch r.Mode {
	case SingleAxis:
		s.Angle = math.Mod(s.Angle+r.Step*speed, 2*math.Pi)
		if s.Angle < 0 {
			s.Angle += 2 * math.Pi
		}
	case ComposedYX:
		s.Degrees = math.Mod(s.Degrees+r.DegreeStep*speed, 360)
		if s.Degrees < 0 {
			s.Degrees += 360
		}
	}
}

// Matrix builds the model rotation for s.
func (r Rotation) Matrix(b Backend, s State) math3d.Mat4 {
	switch r.Mode {
	case SingleAxis:
		return b.Rotate(r.Axis, s.Angle)
	case ComposedYX:
		theta := s.Radians()
		return b.Mul(b.RotateY(theta), b.RotateX(theta))
	}
	return math3d.Identity()
}
