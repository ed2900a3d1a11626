package transform

import (
	"math"

	"github.com/taigrr/spincube/pkg/math3d"
)

// Projection holds the perspective parameters that stay fixed for a
// session. The aspect ratio is supplied separately from the live viewport.
type Projection struct {
	FOVY float64 // Vertical field of view in radians
	Near float64
	Far  float64
}

// DefaultProjection is a 45° FOV with planes at 0.1 and 10.
func DefaultProjection() Projection {
	return Projection{FOVY: math.Pi / 4, Near: 0.1, Far: 10}
}

// Validate rejects parameters that would make the perspective matrix
// non-finite or non-invertible.
func (p Projection) Validate(aspect float64) error {
	switch {
	case !(p.FOVY > 0 && p.FOVY < math.Pi):
		return &DegenerateError{Op: "perspective", Param: "fovy", Value: p.FOVY, Reason: "must be in (0, π)"}
	case !(aspect > 0) || math.IsInf(aspect, 0):
		return &DegenerateError{Op: "perspective", Param: "aspect", Value: aspect, Reason: "must be positive and finite"}
	case !(p.Near > 0):
		return &DegenerateError{Op: "perspective", Param: "near", Value: p.Near, Reason: "must be positive"}
	case !(p.Far > 0):
		return &DegenerateError{Op: "perspective", Param: "far", Value: p.Far, Reason: "must be positive"}
	case p.Near == p.Far:
		return &DegenerateError{Op: "perspective", Param: "far", Value: p.Far, Reason: "must differ from near"}
	}
	return nil
}

// Matrix validates p and builds the projection with b.
func (p Projection) Matrix(b Backend, aspect float64) (math3d.Mat4, error) {
	if err := p.Validate(aspect); err != nil {
		return math3d.Mat4{}, err
	}
	m := b.Perspective(p.FOVY, aspect, p.Near, p.Far)
	if !m.IsFinite() {
		return math3d.Mat4{}, &DegenerateError{Op: "perspective", Param: "aspect", Value: aspect, Reason: "produced a non-finite matrix"}
	}
	return m, nil
}
