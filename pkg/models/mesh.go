// Package models provides the meshes the renderer draws: the built-in
// unit cube and triangle lists loaded from glTF files.
package models

import (
	"math"

	"github.com/taigrr/spincube/pkg/math3d"
)

// Vertex holds the attributes uploaded per vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Mesh is a flat, non-indexed triangle list: every three vertices form one
// triangle, wound counter-clockwise when seen from outside.
type Mesh struct {
	Name     string
	Vertices []Vertex

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Vertex returns the position and normal of vertex i.
func (m *Mesh) Vertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// flatNormals replaces every normal in vs with its triangle's face normal.
func flatNormals(vs []Vertex) {
	for i := 0; i+2 < len(vs); i += 3 {
		v0 := vs[i].Position
		v1 := vs[i+1].Position
		v2 := vs[i+2].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		vs[i].Normal = normal
		vs[i+1].Normal = normal
		vs[i+2].Normal = normal
	}
}

// Transform applies a transformation matrix to all vertices. Normals use
// the inverse transpose so non-uniform scales keep them perpendicular.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat
	if inv, ok := mat.Inverse(); ok {
		normalMat = inv.Transpose()
	}
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Fit centres the mesh on the origin and scales it uniformly so its
// largest dimension equals size.
func (m *Mesh) Fit(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	maxDim := math.Max(dims.X, math.Max(dims.Y, dims.Z))
	if maxDim == 0 {
		return
	}
	s := size / maxDim
	m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Negate())))
}
