package transform

import (
	"fmt"
	"strings"

	"github.com/taigrr/spincube/pkg/math3d"
)

// CameraMode selects how the view matrix is derived from the eye.
type CameraMode int

const (
	CameraTranslate CameraMode = iota // View = Translate(-eye)
	CameraLookAt                      // View = LookAt(eye, target, up)
)

func (m CameraMode) String() string {
	switch m {
	case CameraTranslate:
		return "translate"
	case CameraLookAt:
		return "look_at"
	default:
		return fmt.Sprintf("CameraMode(%d)", int(m))
	}
}

// ParseCameraMode parses "translate" or "look_at" (also "lookat", "look-at").
func ParseCameraMode(s string) (CameraMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "translate":
		return CameraTranslate, nil
	case "look_at", "lookat", "look-at":
		return CameraLookAt, nil
	}
	return 0, fmt.Errorf("unknown camera mode %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CameraMode) UnmarshalText(text []byte) error {
	v, err := ParseCameraMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m CameraMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Camera is the fixed scene camera. View and projection matrices are
// cached and rebuilt only after a setter marks them dirty.
type Camera struct {
	Mode   CameraMode
	Eye    math3d.Vec3
	Target math3d.Vec3 // Only used by CameraLookAt
	Up     math3d.Vec3

	Projection  Projection
	AspectRatio float64 // Width / Height of the live viewport

	backend    Backend
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a translate-mode camera placing the origin at height
// -0.3 and depth -3.5.
func NewCamera(b Backend) *Camera {
	return &Camera{
		Mode:        CameraTranslate,
		Eye:         math3d.V3(0, 0.3, 3.5),
		Up:          math3d.Up(),
		Projection:  DefaultProjection(),
		AspectRatio: 1,
		backend:     b,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetBackend swaps the matrix math and invalidates both cached matrices.
func (c *Camera) SetBackend(b Backend) {
	c.backend = b
	c.viewDirty = true
	c.projDirty = true
}

// SetMode sets how the view matrix is derived.
func (c *Camera) SetMode(mode CameraMode) {
	c.Mode = mode
	c.viewDirty = true
}

// SetEye sets the eye position.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.viewDirty = true
}

// LookAt switches to look-at mode aimed at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Mode = CameraLookAt
	c.Target = target
	c.viewDirty = true
}

// SetProjection sets FOV and clip planes.
func (c *Camera) SetProjection(p Projection) {
	c.Projection = p
	c.projDirty = true
}

// SetViewport recomputes the aspect ratio from the surface size in pixels.
func (c *Camera) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return &DegenerateError{
			Op:     "viewport",
			Param:  "size",
			Value:  float64(width * height),
			Reason: fmt.Sprintf("%dx%d has no area", width, height),
		}
	}
	c.AspectRatio = float64(width) / float64(height)
	c.projDirty = true
	return nil
}

// ViewMatrix returns the view (camera placement) matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		switch c.Mode {
		case CameraLookAt:
			c.viewMatrix = c.backend.LookAt(c.Eye, c.Target, c.Up)
		default:
			c.viewMatrix = c.backend.Translate(c.Eye.Negate())
		}
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective matrix for the current aspect
// ratio, or a DegenerateError if the parameters cannot produce one.
func (c *Camera) ProjectionMatrix() (math3d.Mat4, error) {
	if c.projDirty {
		m, err := c.Projection.Matrix(c.backend, c.AspectRatio)
		if err != nil {
			return math3d.Mat4{}, err
		}
		c.projMatrix = m
		c.projDirty = false
	}
	return c.projMatrix, nil
}

// Validate rejects camera placements whose view matrix would be NaN.
func (c *Camera) Validate() error {
	if c.Mode != CameraLookAt {
		return nil
	}
	f := c.Target.Sub(c.Eye)
	if f.LenSq() == 0 {
		return &DegenerateError{Op: "look_at", Param: "eye", Value: 0, Reason: "eye and target coincide"}
	}
	if f.Cross(c.Up).LenSq() == 0 {
		return &DegenerateError{Op: "look_at", Param: "up", Value: c.Up.Len(), Reason: "up is zero or parallel to the view direction"}
	}
	return nil
}
