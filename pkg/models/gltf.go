package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/spincube/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into a flat triangle list.
type GLTFLoader struct {
	// FitSize rescales the result so its largest dimension matches the
	// unit cube. Zero leaves the geometry untouched.
	FitSize float64
	// FlatNormals discards file normals and uses face normals.
	FlatNormals bool
}

// NewGLTFLoader creates a loader that fits meshes to the unit cube.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{FitSize: 1}
}

// LoadGLB loads a glTF or binary glTF file with the default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads every triangle primitive of every mesh in the document.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := l.FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return mesh, nil
}

// FromDocument converts an already decoded document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("load %s: no triangle primitives", name)
	}

	mesh.CalculateBounds()
	if l.FitSize > 0 {
		mesh.Fit(l.FitSize)
	}
	return mesh, nil
}

// processMesh de-indexes each triangle primitive into mesh. A primitive
// without usable normals gets flat normals; the others keep the file's.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) != len(positions) || l.FlatNormals {
			normals = nil
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		start := len(mesh.Vertices)
		// glTF front faces are counter-clockwise, as are ours.
		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if int(idx) >= len(positions) {
					return fmt.Errorf("index %d out of range for %d positions", idx, len(positions))
				}
				v := Vertex{Position: vec3(positions[idx])}
				if normals != nil {
					v.Normal = vec3(normals[idx])
				}
				mesh.Vertices = append(mesh.Vertices, v)
			}
		}
		if normals == nil {
			flatNormals(mesh.Vertices[start:])
		}
	}

	return nil
}

func vec3(f [3]float32) math3d.Vec3 {
	return math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
}
