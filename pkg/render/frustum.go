package render

import "github.com/taigrr/spincube/pkg/math3d"

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six clip planes of a projection, ordered left, right,
// bottom, top, near, far. Each normal points inward.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts frustum planes from a clip matrix using the
// Gribb/Hartmann method. The planes live in the space the matrix maps
// from, so a full model-view-projection yields model-space planes that can
// be tested directly against a mesh's local bounds.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	n3, d3 := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		// -w <= x_axis  and  x_axis <= w
		f.Planes[2*axis] = Plane{Normal: n3.Add(n), D: d3 + d}
		f.Planes[2*axis+1] = Plane{Normal: n3.Sub(n), D: d3 - d}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB reports whether any part of box may lie inside the frustum.
// It tests the corner furthest along each plane normal, so boxes near
// frustum corners can report a false positive but never a false negative.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, p := range f.Planes {
		far := box.Min
		if p.Normal.X >= 0 {
			far.X = box.Max.X
		}
		if p.Normal.Y >= 0 {
			far.Y = box.Max.Y
		}
		if p.Normal.Z >= 0 {
			far.Z = box.Max.Z
		}
		if p.DistanceToPoint(far) < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// IsEmpty reports whether b contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Visible reports whether localBounds, drawn with mvp, can reach the
// viewport. A true result may still draw nothing.
func Visible(localBounds AABB, mvp math3d.Mat4) bool {
	if localBounds.IsEmpty() {
		return false
	}
	return NewFrustumFromMatrix(mvp).IntersectAABB(localBounds)
}
