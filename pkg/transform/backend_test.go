package transform

import (
	"math"
	"testing"

	"github.com/taigrr/spincube/pkg/math3d"
)

func TestBackendsAgree(t *testing.T) {
	hand, lib := HandMath{}, LibraryMath{}

	tests := []struct {
		name string
		fn   func(Backend) math3d.Mat4
	}{
		{"perspective", func(b Backend) math3d.Mat4 { return b.Perspective(math.Pi/4, 16.0/9.0, 0.1, 10) }},
		{"translate", func(b Backend) math3d.Mat4 { return b.Translate(math3d.V3(0, -0.3, -3.5)) }},
		{"rotate axis", func(b Backend) math3d.Mat4 { return b.Rotate(math3d.V3(1, 1, 0), 0.02) }},
		{"rotate zero axis", func(b Backend) math3d.Mat4 { return b.Rotate(math3d.Zero3(), 1) }},
		{"rotate x", func(b Backend) math3d.Mat4 { return b.RotateX(1.1) }},
		{"rotate y", func(b Backend) math3d.Mat4 { return b.RotateY(-0.4) }},
		{"look at", func(b Backend) math3d.Mat4 {
			return b.LookAt(math3d.V3(0, -0.3, 3.5), math3d.Zero3(), math3d.Up())
		}},
		{"mul", func(b Backend) math3d.Mat4 {
			return b.Mul(b.RotateY(0.3), b.Translate(math3d.V3(1, 2, 3)))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, l := tc.fn(hand), tc.fn(lib)
			if !h.ApproxEqual(l, 1e-9) {
				t.Errorf("math3d = %v\nmgl64 = %v", h, l)
			}
		})
	}
}

func TestNewBackend(t *testing.T) {
	if got := NewBackend(false).Name(); got != "math3d" {
		t.Errorf("NewBackend(false) = %s, want math3d", got)
	}
	if got := NewBackend(true).Name(); got != "mgl64" {
		t.Errorf("NewBackend(true) = %s, want mgl64", got)
	}
}
