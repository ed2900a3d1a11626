// Package shading evaluates the per-fragment lighting of the cube: a single
// white point light with a constant ambient term and an optional
// inverse-square falloff.
package shading

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/math3d"
)

// DefaultMinDistance bounds the light distance from below so attenuation
// stays finite when a fragment sits on the light.
const DefaultMinDistance = 1e-4

// Light is constant for a session.
type Light struct {
	Ambient  colorful.Color
	Color    colorful.Color
	Position math3d.Vec3 // World space
}

// DefaultLight is green ambient, a white light, and a light at (1, 1, 0).
func DefaultLight() Light {
	return Light{
		Ambient:  colorful.Color{R: 0, G: 0.3, B: 0},
		Color:    colorful.Color{R: 1, G: 1, B: 1},
		Position: math3d.V3(1, 1, 0),
	}
}

// Result breaks a shaded fragment into its terms.
type Result struct {
	Color       colorful.Color // ambient + diffuse, unclamped but never negative
	Alpha       float64        // Always 1
	Brightness  float64        // max(dot(N, L), 0)
	Attenuation float64        // 1/d², or 1 when attenuation is off
	Distance    float64        // Light distance after clamping
}

// Evaluator shades fragments for one light.
type Evaluator struct {
	Light            Light
	ApplyAttenuation bool
	MinDistance      float64 // Zero means DefaultMinDistance
}

// New returns an evaluator for light.
func New(light Light, applyAttenuation bool) *Evaluator {
	return &Evaluator{
		Light:            light,
		ApplyAttenuation: applyAttenuation,
		MinDistance:      DefaultMinDistance,
	}
}

// Shade lights a fragment at position (world space) with surface normal.
// The normal need not be unit length; a zero normal gets no diffuse light.
func (e *Evaluator) Shade(normal, position math3d.Vec3) Result {
	offset := e.Light.Position.Sub(position)

	minDist := e.MinDistance
	if !(minDist > 0) {
		minDist = DefaultMinDistance
	}
	dist := math.Max(offset.Len(), minDist)

	var brightness float64
	if offset.LenSq() > 0 {
		brightness = math.Max(normal.Normalize().Dot(offset.Normalize()), 0)
	}

	atten := 1.0
	if e.ApplyAttenuation {
		atten = 1 / (dist * dist)
	}

	k := brightness * atten
	amb, lc := e.Light.Ambient, e.Light.Color
	c := colorful.Color{
		R: nonNegative(amb.R + lc.R*k),
		G: nonNegative(amb.G + lc.G*k),
		B: nonNegative(amb.B + lc.B*k),
	}

	return Result{
		Color:       c,
		Alpha:       1,
		Brightness:  brightness,
		Attenuation: atten,
		Distance:    dist,
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
