package transform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/taigrr/spincube/pkg/math3d"
)

// Backend is the matrix math used to build a frame. Every backend returns
// column-major matrices with identical layout, so frames built with
// different backends can be mixed freely.
type Backend interface {
	Name() string
	Perspective(fovy, aspect, near, far float64) math3d.Mat4
	Translate(v math3d.Vec3) math3d.Mat4
	Rotate(axis math3d.Vec3, angle float64) math3d.Mat4
	RotateX(angle float64) math3d.Mat4
	RotateY(angle float64) math3d.Mat4
	LookAt(eye, center, up math3d.Vec3) math3d.Mat4
	Mul(a, b math3d.Mat4) math3d.Mat4
}

// NewBackend returns LibraryMath when useLibrary is set, HandMath otherwise.
func NewBackend(useLibrary bool) Backend {
	if useLibrary {
		return LibraryMath{}
	}
	return HandMath{}
}

// HandMath builds matrices with the in-tree math3d package.
type HandMath struct{}

func (HandMath) Name() string { return "math3d" }

func (HandMath) Perspective(fovy, aspect, near, far float64) math3d.Mat4 {
	return math3d.Perspective(fovy, aspect, near, far)
}

func (HandMath) Translate(v math3d.Vec3) math3d.Mat4 { return math3d.Translate(v) }

func (HandMath) Rotate(axis math3d.Vec3, angle float64) math3d.Mat4 {
	return math3d.Rotate(axis, angle)
}

func (HandMath) RotateX(angle float64) math3d.Mat4 { return math3d.RotateX(angle) }
func (HandMath) RotateY(angle float64) math3d.Mat4 { return math3d.RotateY(angle) }

func (HandMath) LookAt(eye, center, up math3d.Vec3) math3d.Mat4 {
	return math3d.LookAt(eye, center, up)
}

func (HandMath) Mul(a, b math3d.Mat4) math3d.Mat4 { return a.Mul(b) }

// LibraryMath builds matrices with go-gl/mathgl. mgl64.Mat4 shares
// math3d.Mat4's column-major [16]float64 layout, so results convert
// without reordering.
type LibraryMath struct{}

func (LibraryMath) Name() string { return "mgl64" }

func (LibraryMath) Perspective(fovy, aspect, near, far float64) math3d.Mat4 {
	return math3d.Mat4(mgl64.Perspective(fovy, aspect, near, far))
}

func (LibraryMath) Translate(v math3d.Vec3) math3d.Mat4 {
	return math3d.Mat4(mgl64.Translate3D(v.X, v.Y, v.Z))
}

func (LibraryMath) Rotate(axis math3d.Vec3, angle float64) math3d.Mat4 {
	// HomogRotate3D expects a unit axis.
	if axis.LenSq() == 0 {
		return math3d.Identity()
	}
	return math3d.Mat4(mgl64.HomogRotate3D(angle, toMgl(axis.Normalize())))
}

func (LibraryMath) RotateX(angle float64) math3d.Mat4 {
	return math3d.Mat4(mgl64.HomogRotate3DX(angle))
}

func (LibraryMath) RotateY(angle float64) math3d.Mat4 {
	return math3d.Mat4(mgl64.HomogRotate3DY(angle))
}

func (LibraryMath) LookAt(eye, center, up math3d.Vec3) math3d.Mat4 {
	return math3d.Mat4(mgl64.LookAtV(toMgl(eye), toMgl(center), toMgl(up)))
}

func (LibraryMath) Mul(a, b math3d.Mat4) math3d.Mat4 {
	return math3d.Mat4(mgl64.Mat4(a).Mul4(mgl64.Mat4(b)))
}

func toMgl(v math3d.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
