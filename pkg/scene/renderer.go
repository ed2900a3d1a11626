// Package scene wires the transform builder, the lambert shader program
// and a graphics device into a per-frame renderer session.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/taigrr/spincube/pkg/gpu"
	"github.com/taigrr/spincube/pkg/math3d"
	"github.com/taigrr/spincube/pkg/models"
	"github.com/taigrr/spincube/pkg/render"
	"github.com/taigrr/spincube/pkg/shading"
	"github.com/taigrr/spincube/pkg/transform"
)

// Config is everything a session needs besides the device and mesh.
type Config struct {
	Width, Height    int // Viewport in pixels
	Transform        transform.Config
	Light            shading.Light
	ApplyAttenuation bool
	Background       color.RGBA
	DisableCulling   bool
}

// DefaultConfig renders the classic scene into a width x height viewport.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		Transform:  transform.DefaultConfig(),
		Light:      shading.DefaultLight(),
		Background: render.ColorBlack,
	}
}

// Renderer is one rendering session. It is not safe for concurrent use.
type Renderer struct {
	dev     gpu.Device
	mesh    *models.Mesh
	bounds  render.AABB
	builder *transform.Builder
	program *gpu.Program
	logger  *slog.Logger

	light       shading.Light
	attenuation bool
	culling     bool
	background  color.RGBA

	last    transform.Frame
	skipped bool
}

// New compiles and links the lambert program, uploads mesh and pushes the
// light uniforms. Any failure is returned and leaves no session behind.
func New(dev gpu.Device, mesh *models.Mesh, cfg Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	builder, err := transform.New(cfg.Transform, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("create transform builder: %w", err)
	}
	if err := dev.SetViewport(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	lo, hi := mesh.Bounds()
	r := &Renderer{
		dev:         dev,
		mesh:        mesh,
		bounds:      render.AABB{Min: lo, Max: hi},
		builder:     builder,
		logger:      logger,
		light:       cfg.Light,
		attenuation: cfg.ApplyAttenuation,
		culling:     !cfg.DisableCulling,
		background:  cfg.Background,
	}

	if err := r.buildProgram(); err != nil {
		return nil, err
	}

	if err := dev.Upload(mesh); err != nil {
		return nil, fmt.Errorf("upload mesh: %w", err)
	}
	logger.Debug("uploaded mesh", "name", mesh.Name, "vertices", mesh.VertexCount())

	dev.SetCulling(r.culling)
	return r, nil
}

// buildProgram compiles, links and binds the program for the current
// attenuation setting, then pushes the light. On failure the previous
// program, if any, is bound again.
func (r *Renderer) buildProgram() error {
	fragSrc := FragmentSourceFor(r.attenuation)

	vs, err := r.dev.Compile(VertexSource, gpu.VertexStage)
	if err != nil {
		return fmt.Errorf("compile vertex shader: %w", err)
	}
	fs, err := r.dev.Compile(fragSrc, gpu.FragmentStage)
	if err != nil {
		return fmt.Errorf("compile fragment shader: %w", err)
	}
	r.logger.Debug("compiled shaders", "vertex", VertexSource, "fragment", fragSrc)

	prog, err := r.dev.Link(vs, fs)
	if err != nil {
		return fmt.Errorf("link program: %w", err)
	}
	if err := r.dev.Use(prog); err != nil {
		return fmt.Errorf("use program: %w", err)
	}
	r.logger.Debug("linked program", "varyings", len(prog.Layout()))

	light := []struct {
		name string
		v    math3d.Vec3
	}{
		{UniformAmbientColor, fromColor(r.light.Ambient)},
		{UniformLightColor, fromColor(r.light.Color)},
		{UniformLightPosition, r.light.Position},
	}
	for _, u := range light {
		if err := r.dev.SetUniformVec3(u.name, u.v); err != nil {
			if r.program != nil {
				if uerr := r.dev.Use(r.program); uerr != nil {
					return errors.Join(fmt.Errorf("push light: %w", err), fmt.Errorf("restore program: %w", uerr))
				}
			}
			return fmt.Errorf("push light: %w", err)
		}
	}

	r.program = prog
	return nil
}

// Frame renders one frame for s and then advances s by speed.
func (r *Renderer) Frame(s *transform.State, speed float64) error {
	f, err := r.builder.Build(*s)
	if err != nil {
		return fmt.Errorf("build frame %d: %w", s.Frame, err)
	}

	matrices := []struct {
		name string
		m    math3d.Mat4
	}{
		{UniformTransform, f.Transform},
		{UniformModelView, f.ModelView},
		{UniformPerspective, f.Perspective},
	}
	for _, u := range matrices {
		if err := r.dev.SetUniformMat4(u.name, u.m); err != nil {
			return fmt.Errorf("push transform: %w", err)
		}
	}

	r.dev.Clear(r.background)
	r.last = f
	r.skipped = !render.Visible(r.bounds, f.MVP())
	if !r.skipped {
		if err := r.dev.DrawTriangles(r.mesh.VertexCount()); err != nil {
			return fmt.Errorf("draw frame %d: %w", s.Frame, err)
		}
	}

	r.builder.Advance(s, speed)
	return nil
}

// SetViewport resizes the device and recomputes the projection.
func (r *Renderer) SetViewport(width, height int) error {
	if err := r.builder.SetViewport(width, height); err != nil {
		return fmt.Errorf("resize projection: %w", err)
	}
	if err := r.dev.SetViewport(width, height); err != nil {
		return fmt.Errorf("resize device: %w", err)
	}
	r.logger.Debug("resized viewport", "width", width, "height", height)
	return nil
}

// SetAttenuation switches fragment shaders, recompiling and relinking.
// The transform uniforms are pushed again by the next Frame.
func (r *Renderer) SetAttenuation(on bool) error {
	if on == r.attenuation {
		return nil
	}
	prev := r.attenuation
	r.attenuation = on
	if err := r.buildProgram(); err != nil {
		r.attenuation = prev
		return err
	}
	return nil
}

// Attenuation reports whether inverse-square falloff is applied.
func (r *Renderer) Attenuation() bool { return r.attenuation }

// UseLibraryMath switches the matrix backend.
func (r *Renderer) UseLibraryMath(on bool) {
	r.builder.UseLibraryMath(on)
	r.logger.Debug("switched matrix backend", "backend", r.builder.Backend().Name())
}

// Backend returns the name of the matrix backend in use.
func (r *Renderer) Backend() string { return r.builder.Backend().Name() }

// SetCulling enables or disables back-face culling.
func (r *Renderer) SetCulling(on bool) {
	r.culling = on
	r.dev.SetCulling(on)
}

// Culling reports whether back faces are culled.
func (r *Renderer) Culling() bool { return r.culling }

// Rotation returns the rotation configuration in use.
func (r *Renderer) Rotation() transform.Rotation { return r.builder.Rotation() }

// LastFrame returns the matrices used by the most recent Frame.
func (r *Renderer) LastFrame() transform.Frame { return r.last }

// Skipped reports whether the last frame was frustum culled.
func (r *Renderer) Skipped() bool { return r.skipped }

// Stats returns the device counters for the last frame.
func (r *Renderer) Stats() gpu.Stats { return r.dev.Stats() }
