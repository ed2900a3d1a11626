package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order, the layout GL
// uniforms expect. Element (row, col) lives at index row+col*4:
//
//	| 0  4  8  12 |
//	| 1  5  9  13 |
//	| 2  6  10 14 |
//	| 3  7  11 15 |
//
// Matrices compose right to left: P.Mul(V).Mul(M) applied to a vertex
// transforms by M first.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX rotates counter-clockwise about +X by angle radians.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY rotates counter-clockwise about +Y by angle radians.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ rotates counter-clockwise about +Z by angle radians.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotate rotates about an arbitrary axis. The axis need not be unit
// length; a zero axis yields the identity.
func Rotate(axis Vec3, angle float64) Mat4 {
	if axis.LenSq() == 0 {
		return Identity()
	}
	axis = axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a right-handed view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a symmetric perspective projection mapping view-space
// depth -near to NDC -1 and -far to NDC +1. fovy is in radians.
//
// Inputs are not validated here; degenerate arguments produce Inf or NaN.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (near + far) * nf, -1,
		0, 0, 2 * near * far * nf, 0,
	}
}

// Mul returns a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms v as a point (w=1), dividing by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms v as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for col := range 4 {
		for row := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// subfactors returns the twelve 2x2 minors shared by Determinant and Inverse.
func (m Mat4) subfactors() [12]float64 {
	return [12]float64{
		m[0]*m[5] - m[1]*m[4],
		m[0]*m[6] - m[2]*m[4],
		m[0]*m[7] - m[3]*m[4],
		m[1]*m[6] - m[2]*m[5],
		m[1]*m[7] - m[3]*m[5],
		m[2]*m[7] - m[3]*m[6],
		m[8]*m[13] - m[9]*m[12],
		m[8]*m[14] - m[10]*m[12],
		m[8]*m[15] - m[11]*m[12],
		m[9]*m[14] - m[10]*m[13],
		m[9]*m[15] - m[11]*m[13],
		m[10]*m[15] - m[11]*m[14],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	b := m.subfactors()
	return b[0]*b[11] - b[1]*b[10] + b[2]*b[9] + b[3]*b[8] - b[4]*b[7] + b[5]*b[6]
}

// Inverse returns the inverse of m. ok is false, and the identity is
// returned, when m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	b := m.subfactors()
	det := b[0]*b[11] - b[1]*b[10] + b[2]*b[9] + b[3]*b[8] - b[4]*b[7] + b[5]*b[6]
	if det == 0 || !finite(det) {
		return Identity(), false
	}
	d := 1 / det

	inv[0] = (m[5]*b[11] - m[6]*b[10] + m[7]*b[9]) * d
	inv[1] = (m[2]*b[10] - m[1]*b[11] - m[3]*b[9]) * d
	inv[2] = (m[13]*b[5] - m[14]*b[4] + m[15]*b[3]) * d
	inv[3] = (m[10]*b[4] - m[9]*b[5] - m[11]*b[3]) * d
	inv[4] = (m[6]*b[8] - m[4]*b[11] - m[7]*b[7]) * d
	inv[5] = (m[0]*b[11] - m[2]*b[8] + m[3]*b[7]) * d
	inv[6] = (m[14]*b[2] - m[12]*b[5] - m[15]*b[1]) * d
	inv[7] = (m[8]*b[5] - m[10]*b[2] + m[11]*b[1]) * d
	inv[8] = (m[4]*b[10] - m[5]*b[8] + m[7]*b[6]) * d
	inv[9] = (m[1]*b[8] - m[0]*b[10] - m[3]*b[6]) * d
	inv[10] = (m[12]*b[4] - m[13]*b[2] + m[15]*b[0]) * d
	inv[11] = (m[9]*b[2] - m[8]*b[4] - m[11]*b[0]) * d
	inv[12] = (m[5]*b[7] - m[4]*b[9] - m[6]*b[6]) * d
	inv[13] = (m[0]*b[9] - m[1]*b[7] + m[2]*b[6]) * d
	inv[14] = (m[13]*b[1] - m[12]*b[3] - m[14]*b[0]) * d
	inv[15] = (m[8]*b[3] - m[9]*b[1] + m[10]*b[0]) * d

	return inv, true
}

// ApproxEqual reports whether every element of a and b differs by at most tol.
//
//nolint:st1016 // a,b naming convention is clearer for comparisons
func (a Mat4) ApproxEqual(b Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// IsFinite reports whether no element is NaN or infinite.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Float32 returns the matrix narrowed to float32, the precision GL
// uniforms carry.
func (m Mat4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// FromFloat32 widens a float32 matrix back to a Mat4.
func FromFloat32(f [16]float32) Mat4 {
	var m Mat4
	for i, v := range f {
		m[i] = float64(v)
	}
	return m
}
