// Package gpu is the graphics device contract the renderer drives:
// compile and link shader programs, upload a vertex buffer once, push
// uniforms, and draw triangles. Soft implements it on the CPU.
package gpu

import (
	"fmt"
	"image/color"

	"github.com/taigrr/spincube/pkg/math3d"
	"github.com/taigrr/spincube/pkg/render"
)

// VertexSource supplies the vertex buffer contents for Upload.
type VertexSource interface {
	VertexCount() int
	Vertex(i int) (pos, normal math3d.Vec3)
}

// Device is a minimal programmable graphics pipeline. Calls are not safe
// for concurrent use; a device has a single owner.
type Device interface {
	Compile(source string, stage Stage) (*Shader, error)
	Link(vs, fs *Shader) (*Program, error)
	Use(p *Program) error
	Upload(src VertexSource) error
	SetUniformMat4(name string, m math3d.Mat4) error
	SetUniformVec3(name string, v math3d.Vec3) error
	SetViewport(width, height int) error
	SetCulling(on bool)
	Clear(c color.RGBA)
	DrawTriangles(count int) error
	Stats() Stats
}

// Stats counts pipeline work since the last Clear.
type Stats struct {
	DrawCalls int
	Vertices  int
	render.Stats
}

// Soft is a software Device drawing into a render.Framebuffer.
type Soft struct {
	lib    *Library
	fb     *render.Framebuffer
	raster *render.Rasterizer

	program  *Program
	buffer   []Attributes
	clip     []render.ClipVertex
	drawCall int
	vertices int
}

// NewSoft creates a device for fb compiling sources from lib. It returns
// ErrContextUnavailable when fb has no pixels or lib is missing.
func NewSoft(fb *render.Framebuffer, lib *Library) (*Soft, error) {
	if fb.Empty() {
		return nil, fmt.Errorf("create device: no surface: %w", ErrContextUnavailable)
	}
	if lib == nil {
		return nil, fmt.Errorf("create device: no shader library: %w", ErrContextUnavailable)
	}
	return &Soft{
		lib:    lib,
		fb:     fb,
		raster: render.NewRasterizer(fb),
	}, nil
}

// Framebuffer returns the colour target.
func (d *Soft) Framebuffer() *render.Framebuffer {
	return d.fb
}

// Compile looks up source in the library and checks it against stage.
func (d *Soft) Compile(source string, stage Stage) (*Shader, error) {
	return d.lib.compile(source, stage)
}

// Link pairs a vertex and fragment shader into a program.
func (d *Soft) Link(vs, fs *Shader) (*Program, error) {
	return link(vs, fs)
}

// Use binds p for subsequent uniform and draw calls.
func (d *Soft) Use(p *Program) error {
	if p == nil {
		return fmt.Errorf("use program: %w", ErrNoProgram)
	}
	d.program = p
	return nil
}

// Upload copies the vertex data into the device buffer.
func (d *Soft) Upload(src VertexSource) error {
	n := src.VertexCount()
	buf := make([]Attributes, n)
	for i := range n {
		pos, normal := src.Vertex(i)
		if !pos.IsFinite() || !normal.IsFinite() {
			return fmt.Errorf("upload vertex %d: non-finite attribute", i)
		}
		buf[i] = Attributes{Position: pos, Normal: normal}
	}
	d.buffer = buf
	d.clip = make([]render.ClipVertex, n)
	return nil
}

// SetUniformMat4 sets a matrix uniform on the bound program.
func (d *Soft) SetUniformMat4(name string, m math3d.Mat4) error {
	if err := d.checkUniform(name, Mat4); err != nil {
		return err
	}
	d.program.values.SetMat4(name, m)
	return nil
}

// SetUniformVec3 sets a vector uniform on the bound program.
func (d *Soft) SetUniformVec3(name string, v math3d.Vec3) error {
	if err := d.checkUniform(name, Vec3); err != nil {
		return err
	}
	d.program.values.SetVec3(name, v)
	return nil
}

func (d *Soft) checkUniform(name string, t UniformType) error {
	if d.program == nil {
		return fmt.Errorf("set uniform %q: %w", name, ErrNoProgram)
	}
	if !d.program.HasUniform(name, t) {
		return fmt.Errorf("set uniform %s %q: %w", t, name, ErrUnknownUniform)
	}
	return nil
}

// SetViewport resizes the framebuffer and depth buffer.
func (d *Soft) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, ErrContextUnavailable)
	}
	d.fb.Resize(width, height)
	d.raster.Resize()
	return nil
}

// SetCulling enables or disables back-face culling.
func (d *Soft) SetCulling(on bool) {
	d.raster.DisableBackfaceCulling = !on
}

// Clear fills the colour buffer, resets depth and zeroes the stats.
func (d *Soft) Clear(c color.RGBA) {
	d.fb.Clear(c)
	d.raster.ClearDepth()
	d.raster.ResetStats()
	d.drawCall, d.vertices = 0, 0
}

// DrawTriangles draws the first count uploaded vertices as a triangle list.
func (d *Soft) DrawTriangles(count int) error {
	switch {
	case d.program == nil:
		return fmt.Errorf("draw triangles: %w", ErrNoProgram)
	case count < 0 || count%3 != 0:
		return fmt.Errorf("draw triangles: count %d is not a multiple of 3", count)
	case count > len(d.buffer):
		return fmt.Errorf("draw triangles: count %d exceeds %d uploaded vertices", count, len(d.buffer))
	}

	p := d.program
	vertex := p.vertex.vertex.Bind(p.values, p.layout)
	fragment := p.fragment.fragment.Bind(p.values, p.layout)
	n := p.layout.Size()

	for i := range count {
		cv := &d.clip[i]
		cv.Varyings = render.Varyings{}
		cv.Position = vertex(d.buffer[i], &cv.Varyings)
	}
	for i := 0; i < count; i += 3 {
		d.raster.DrawTriangle([3]render.ClipVertex{d.clip[i], d.clip[i+1], d.clip[i+2]}, n, fragment)
	}

	d.drawCall++
	d.vertices += count
	return nil
}

// Stats reports the work done since the last Clear.
func (d *Soft) Stats() Stats {
	return Stats{
		DrawCalls: d.drawCall,
		Vertices:  d.vertices,
		Stats:     d.raster.Stats,
	}
}
