// Package transform builds the per-frame matrices: a fixed camera
// placement, a model rotation driven by the render state, and a
// perspective projection tracking the live viewport.
package transform

import (
	"fmt"

	"github.com/taigrr/spincube/pkg/math3d"
)

// CameraConfig places the fixed camera.
type CameraConfig struct {
	Mode   CameraMode
	Eye    math3d.Vec3
	Target math3d.Vec3
	Up     math3d.Vec3
}

// Config holds everything needed to build frames.
type Config struct {
	Projection     Projection
	Camera         CameraConfig
	Rotation       Rotation
	UseLibraryMath bool
}

// DefaultConfig is the translate-camera, composed Y/X scene.
func DefaultConfig() Config {
	return Config{
		Projection: DefaultProjection(),
		Camera: CameraConfig{
			Mode: CameraTranslate,
			Eye:  math3d.V3(0, 0.3, 3.5),
			Up:   math3d.Up(),
		},
		Rotation: DefaultRotation(),
	}
}

// Frame is the transform state pushed to the pipeline for one frame.
type Frame struct {
	ModelView   math3d.Mat4 // Camera placement
	Transform   math3d.Mat4 // Model rotation
	Perspective math3d.Mat4
}

// MVP returns Perspective * ModelView * Transform.
func (f Frame) MVP() math3d.Mat4 {
	return f.Perspective.Mul(f.ModelView).Mul(f.Transform)
}

// Builder produces one Frame per render state.
type Builder struct {
	backend  Backend
	camera   *Camera
	rotation Rotation
}

// New validates cfg against a width x height viewport and returns a Builder.
func New(cfg Config, width, height int) (*Builder, error) {
	if err := cfg.Rotation.Validate(); err != nil {
		return nil, fmt.Errorf("validate rotation: %w", err)
	}

	backend := NewBackend(cfg.UseLibraryMath)
	cam := NewCamera(backend)
	cam.SetMode(cfg.Camera.Mode)
	cam.SetEye(cfg.Camera.Eye)
	cam.Target = cfg.Camera.Target
	cam.Up = cfg.Camera.Up
	if cam.Up.LenSq() == 0 {
		cam.Up = math3d.Up()
	}
	cam.SetProjection(cfg.Projection)
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("validate camera: %w", err)
	}
	if err := cam.SetViewport(width, height); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	// Build once so degenerate projections fail here rather than mid-loop.
	if _, err := cam.ProjectionMatrix(); err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	return &Builder{
		backend:  backend,
		camera:   cam,
		rotation: cfg.Rotation,
	}, nil
}

// Backend returns the matrix math in use.
func (b *Builder) Backend() Backend {
	return b.backend
}

// Camera returns the builder's camera.
func (b *Builder) Camera() *Camera {
	return b.camera
}

// Rotation returns the rotation configuration.
func (b *Builder) Rotation() Rotation {
	return b.rotation
}

// UseLibraryMath switches the matrix backend.
func (b *Builder) UseLibraryMath(on bool) {
	b.backend = NewBackend(on)
	b.camera.SetBackend(b.backend)
}

// SetViewport updates the aspect ratio after a resize.
func (b *Builder) SetViewport(width, height int) error {
	if err := b.camera.SetViewport(width, height); err != nil {
		return err
	}
	_, err := b.camera.ProjectionMatrix()
	return err
}

// Build computes the frame for s. s is not modified.
func (b *Builder) Build(s State) (Frame, error) {
	proj, err := b.camera.ProjectionMatrix()
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		ModelView:   b.camera.ViewMatrix(),
		Transform:   b.rotation.Matrix(b.backend, s),
		Perspective: proj,
	}, nil
}

// Advance steps s by one frame at the given speed factor.
func (b *Builder) Advance(s *State, speed float64) {
	b.rotation.Advance(s, speed)
}
