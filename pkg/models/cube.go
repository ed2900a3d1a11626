package models

import "github.com/taigrr/spincube/pkg/math3d"

// cubeFaces lists the unit cube two triangles per face, -X +X -Y +Y -Z +Z.
var cubeFaces = [6]struct {
	normal math3d.Vec3
	tris   [6]math3d.Vec3
}{
	{math3d.V3(-1, 0, 0), [6]math3d.Vec3{
		{X: -.5, Y: -.5, Z: -.5}, {X: -.5, Y: .5, Z: .5}, {X: -.5, Y: .5, Z: -.5},
		{X: -.5, Y: -.5, Z: .5}, {X: -.5, Y: .5, Z: .5}, {X: -.5, Y: -.5, Z: -.5},
	}},
	{math3d.V3(1, 0, 0), [6]math3d.Vec3{
		{X: .5, Y: -.5, Z: -.5}, {X: .5, Y: .5, Z: -.5}, {X: .5, Y: .5, Z: .5},
		{X: .5, Y: .5, Z: .5}, {X: .5, Y: -.5, Z: .5}, {X: .5, Y: -.5, Z: -.5},
	}},
	{math3d.V3(0, -1, 0), [6]math3d.Vec3{
		{X: -.5, Y: -.5, Z: -.5}, {X: .5, Y: -.5, Z: -.5}, {X: .5, Y: -.5, Z: .5},
		{X: .5, Y: -.5, Z: .5}, {X: -.5, Y: -.5, Z: .5}, {X: -.5, Y: -.5, Z: -.5},
	}},
	{math3d.V3(0, 1, 0), [6]math3d.Vec3{
		{X: -.5, Y: .5, Z: -.5}, {X: .5, Y: .5, Z: .5}, {X: .5, Y: .5, Z: -.5},
		{X: -.5, Y: .5, Z: .5}, {X: .5, Y: .5, Z: .5}, {X: -.5, Y: .5, Z: -.5},
	}},
	{math3d.V3(0, 0, -1), [6]math3d.Vec3{
		{X: .5, Y: -.5, Z: -.5}, {X: -.5, Y: -.5, Z: -.5}, {X: .5, Y: .5, Z: -.5},
		{X: -.5, Y: .5, Z: -.5}, {X: .5, Y: .5, Z: -.5}, {X: -.5, Y: -.5, Z: -.5},
	}},
	{math3d.V3(0, 0, 1), [6]math3d.Vec3{
		{X: -.5, Y: -.5, Z: .5}, {X: .5, Y: -.5, Z: .5}, {X: .5, Y: .5, Z: .5},
		{X: .5, Y: .5, Z: .5}, {X: -.5, Y: .5, Z: .5}, {X: -.5, Y: -.5, Z: .5},
	}},
}

// Cube returns the 36-vertex unit cube centred on the origin with flat
// outward normals.
func Cube() *Mesh {
	m := NewMesh("cube")
	m.Vertices = make([]Vertex, 0, 36)
	for _, f := range cubeFaces {
		for _, p := range f.tris {
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: f.normal})
		}
	}
	m.CalculateBounds()
	return m
}
