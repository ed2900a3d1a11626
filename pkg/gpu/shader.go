package gpu

import (
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/spincube/pkg/math3d"
	"github.com/taigrr/spincube/pkg/render"
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// UniformType is the type of a declared uniform.
type UniformType int

const (
	Mat4 UniformType = iota
	Vec3
)

func (t UniformType) String() string {
	switch t {
	case Mat4:
		return "mat4"
	case Vec3:
		return "vec3"
	default:
		return fmt.Sprintf("UniformType(%d)", int(t))
	}
}

// Attributes are the per-vertex inputs read by a vertex stage.
type Attributes struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Uniforms holds the values set on a program. Unset uniforms read as zero.
// Matrices are kept at float32, the precision GL uniforms carry.
type Uniforms struct {
	mat4 map[string][16]float32
	vec3 map[string]math3d.Vec3
}

// NewUniforms returns an empty uniform set.
func NewUniforms() *Uniforms {
	return &Uniforms{
		mat4: make(map[string][16]float32),
		vec3: make(map[string]math3d.Vec3),
	}
}

// Mat4 returns the named matrix uniform.
func (u *Uniforms) Mat4(name string) math3d.Mat4 { return math3d.FromFloat32(u.mat4[name]) }

// Vec3 returns the named vector uniform.
func (u *Uniforms) Vec3(name string) math3d.Vec3 { return u.vec3[name] }

// SetMat4 stores a matrix uniform, narrowed to float32, without type checking.
func (u *Uniforms) SetMat4(name string, m math3d.Mat4) { u.mat4[name] = m.Float32() }

// SetVec3 stores a vector uniform without type checking.
func (u *Uniforms) SetVec3(name string, v math3d.Vec3) { u.vec3[name] = v }

// Layout maps each varying name to its first slot in render.Varyings.
// Every varying is a vec3.
type Layout map[string]int

// Size returns the number of slots in use.
func (l Layout) Size() int {
	return 3 * len(l)
}

// WriteVec3 stores v at slot off.
func WriteVec3(out *render.Varyings, off int, v math3d.Vec3) {
	out[off], out[off+1], out[off+2] = v.X, v.Y, v.Z
}

// ReadVec3 loads the vec3 at slot off.
func ReadVec3(in *render.Varyings, off int) math3d.Vec3 {
	return math3d.V3(in[off], in[off+1], in[off+2])
}

// VertexFunc transforms one vertex to clip space and writes its varyings.
type VertexFunc func(in Attributes, out *render.Varyings) math3d.Vec4

// VertexShader is a vertex stage program. Bind is called once per draw with
// the current uniform values and the linked varying layout.
type VertexShader struct {
	Uniforms map[string]UniformType
	Outputs  []string
	Bind     func(u *Uniforms, l Layout) VertexFunc
}

// FragmentShader is a fragment stage program.
type FragmentShader struct {
	Uniforms map[string]UniformType
	Inputs   []string
	Bind     func(u *Uniforms, l Layout) render.FragmentFunc
}

// Library is the set of shader sources a device can compile. A source is
// the name a stage was registered under.
type Library struct {
	vertex   map[string]VertexShader
	fragment map[string]FragmentShader
}

// NewLibrary returns an empty shader library.
func NewLibrary() *Library {
	return &Library{
		vertex:   make(map[string]VertexShader),
		fragment: make(map[string]FragmentShader),
	}
}

// RegisterVertex adds a vertex stage under source, replacing any previous one.
func (l *Library) RegisterVertex(source string, vs VertexShader) {
	l.vertex[source] = vs
}

// RegisterFragment adds a fragment stage under source.
func (l *Library) RegisterFragment(source string, fs FragmentShader) {
	l.fragment[source] = fs
}

// Sources returns the registered source names for a stage, sorted.
func (l *Library) Sources(stage Stage) []string {
	switch stage {
	case VertexStage:
		return slices.Sorted(maps.Keys(l.vertex))
	case FragmentStage:
		return slices.Sorted(maps.Keys(l.fragment))
	}
	return nil
}

// Shader is a compiled stage.
type Shader struct {
	stage    Stage
	source   string
	vertex   *VertexShader
	fragment *FragmentShader
}

// Stage returns the stage the shader was compiled for.
func (s *Shader) Stage() Stage { return s.stage }

// Source returns the source the shader was compiled from.
func (s *Shader) Source() string { return s.source }

// Program is a linked vertex/fragment pair plus its uniform values.
type Program struct {
	vertex   *Shader
	fragment *Shader
	uniforms map[string]UniformType
	values   *Uniforms
	layout   Layout
}

// Layout returns the linked varying layout.
func (p *Program) Layout() Layout { return p.layout }

// HasUniform reports whether the program declares name with type t.
func (p *Program) HasUniform(name string, t UniformType) bool {
	ut, ok := p.uniforms[name]
	return ok && ut == t
}

func (l *Library) compile(source string, stage Stage) (*Shader, error) {
	fail := func(format string, args ...any) error {
		return &CompileError{Stage: stage, Source: source, Log: fmt.Sprintf(format, args...)}
	}

	vs, isVertex := l.vertex[source]
	fs, isFragment := l.fragment[source]

	switch stage {
	case VertexStage:
		if !isVertex {
			if isFragment {
				return nil, fail("source is a fragment shader")
			}
			return nil, fail("undefined shader source")
		}
		if vs.Bind == nil {
			return nil, fail("missing entry point")
		}
		if 3*len(vs.Outputs) > render.MaxVaryings {
			return nil, fail("%d vec3 outputs exceed %d varying slots", len(vs.Outputs), render.MaxVaryings)
		}
		if dup := firstDuplicate(vs.Outputs); dup != "" {
			return nil, fail("output %q redeclared", dup)
		}
		return &Shader{stage: stage, source: source, vertex: &vs}, nil

	case FragmentStage:
		if !isFragment {
			if isVertex {
				return nil, fail("source is a vertex shader")
			}
			return nil, fail("undefined shader source")
		}
		if fs.Bind == nil {
			return nil, fail("missing entry point")
		}
		if dup := firstDuplicate(fs.Inputs); dup != "" {
			return nil, fail("input %q redeclared", dup)
		}
		return &Shader{stage: stage, source: source, fragment: &fs}, nil
	}
	return nil, fail("unsupported stage")
}

func link(vs, fs *Shader) (*Program, error) {
	var vname, fname string
	if vs != nil {
		vname = vs.source
	}
	if fs != nil {
		fname = fs.source
	}
	le := &LinkError{Vertex: vname, Fragment: fname}

	if vs == nil || vs.stage != VertexStage {
		le.Log = append(le.Log, "first shader is not a compiled vertex shader")
	}
	if fs == nil || fs.stage != FragmentStage {
		le.Log = append(le.Log, "second shader is not a compiled fragment shader")
	}
	if len(le.Log) > 0 {
		return nil, le
	}

	layout := make(Layout, len(vs.vertex.Outputs))
	for i, name := range vs.vertex.Outputs {
		layout[name] = 3 * i
	}
	for _, name := range fs.fragment.Inputs {
		if _, ok := layout[name]; !ok {
			le.Log = append(le.Log, fmt.Sprintf("varying %q is read by the fragment shader but never written", name))
		}
	}

	uniforms := make(map[string]UniformType)
	maps.Copy(uniforms, vs.vertex.Uniforms)
	for name, t := range fs.fragment.Uniforms {
		if prev, ok := uniforms[name]; ok && prev != t {
			le.Log = append(le.Log, fmt.Sprintf("uniform %q declared as %s and %s", name, prev, t))
			continue
		}
		uniforms[name] = t
	}
	if len(le.Log) > 0 {
		return nil, le
	}

	return &Program{
		vertex:   vs,
		fragment: fs,
		uniforms: uniforms,
		values:   NewUniforms(),
		layout:   layout,
	}, nil
}

func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}
