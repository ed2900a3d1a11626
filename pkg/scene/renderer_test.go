package scene

import (
	"errors"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/gpu"
	"github.com/taigrr/spincube/pkg/math3d"
	"github.com/taigrr/spincube/pkg/models"
	"github.com/taigrr/spincube/pkg/render"
	"github.com/taigrr/spincube/pkg/shading"
	"github.com/taigrr/spincube/pkg/transform"
)

const size = 64

func classicConfig() Config {
	cfg := DefaultConfig(size, size)
	cfg.Light.Position = math3d.V3(1, 1, -0.5)
	return cfg
}

func orbitConfig() Config {
	cfg := DefaultConfig(size, size)
	cfg.Transform.Camera = transform.CameraConfig{
		Mode: transform.CameraLookAt,
		Eye:  math3d.V3(0, -0.3, 3.5),
		Up:   math3d.Up(),
	}
	cfg.Transform.Rotation.Mode = transform.SingleAxis
	cfg.Transform.UseLibraryMath = true
	cfg.ApplyAttenuation = true
	return cfg
}

func newSession(t *testing.T, cfg Config) (*Renderer, *gpu.Soft) {
	t.Helper()
	dev, err := gpu.NewSoft(render.NewFramebuffer(cfg.Width, cfg.Height), Shaders())
	if err != nil {
		t.Fatalf("NewSoft: %v", err)
	}
	r, err := New(dev, models.Cube(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, dev
}

func countLit(fb *render.Framebuffer, bg [4]uint8) int {
	n := 0
	for _, p := range fb.Pixels {
		if [4]uint8{p.R, p.G, p.B, p.A} != bg {
			n++
		}
	}
	return n
}

func TestFrameDrawsCube(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"classic", classicConfig()},
		{"orbit", orbitConfig()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, dev := newSession(t, tc.cfg)
			var s transform.State
			if err := r.Frame(&s, 1); err != nil {
				t.Fatalf("Frame: %v", err)
			}

			if r.Skipped() {
				t.Fatal("cube in front of the camera was frustum culled")
			}
			if n := countLit(dev.Framebuffer(), [4]uint8{0, 0, 0, 255}); n == 0 {
				t.Fatal("frame left every pixel at the background colour")
			}
			st := r.Stats()
			if st.DrawCalls != 1 || st.Submitted != 12 {
				t.Errorf("stats = %+v, want 1 draw of 12 triangles", st)
			}
			// A closed convex mesh shows at most three faces.
			if st.Drawn > 6 || st.Culled < 6 {
				t.Errorf("drawn %d culled %d, want back faces culled", st.Drawn, st.Culled)
			}
			if s.Frame != 1 {
				t.Errorf("state frame = %d, want 1 after one Frame", s.Frame)
			}
		})
	}
}

func TestFrontFaceIsAmbientOnly(t *testing.T) {
	// Frame 0 faces +Z at the camera; the classic light sits behind that
	// face, so the centre pixel is exactly the ambient term.
	r, dev := newSession(t, classicConfig())
	var s transform.State
	if err := r.Frame(&s, 1); err != nil {
		t.Fatal(err)
	}
	want := render.ToRGBA(colorful.Color{G: 0.3}, 1)
	if got := dev.Framebuffer().GetPixel(size/2, size/2); got != want {
		t.Errorf("centre pixel = %v, want ambient %v", got, want)
	}
}

func TestStagesMatchEvaluator(t *testing.T) {
	light := shading.DefaultLight()
	u := gpu.NewUniforms()
	u.SetVec3(UniformAmbientColor, fromColor(light.Ambient))
	u.SetVec3(UniformLightColor, fromColor(light.Color))
	u.SetVec3(UniformLightPosition, light.Position)
	u.SetMat4(UniformTransform, math3d.RotateY(0.4))
	u.SetMat4(UniformModelView, math3d.Translate(math3d.V3(0, -0.3, -3.5)))
	u.SetMat4(UniformPerspective, math3d.Perspective(0.78, 1, 0.1, 10))
	layout := gpu.Layout{"vNormal": 0, "vPosition": 3}

	t.Run("vertex", func(t *testing.T) {
		var out render.Varyings
		pos := lambertVertex.Bind(u, layout)(gpu.Attributes{
			Position: math3d.V3(0.5, 0.5, 0.5),
			Normal:   math3d.V3(0, 0, 1),
		}, &out)

		mvp := u.Mat4(UniformPerspective).Mul(u.Mat4(UniformModelView)).Mul(u.Mat4(UniformTransform))
		if want := mvp.MulVec4(math3d.V4(0.5, 0.5, 0.5, 1)); pos != want {
			t.Errorf("clip position = %v, want %v", pos, want)
		}
		if n := gpu.ReadVec3(&out, 0); !n.ApproxEqual(u.Mat4(UniformTransform).MulVec3Dir(math3d.V3(0, 0, 1)), 1e-12) {
			t.Errorf("world normal = %v", n)
		}
	})

	for _, attenuation := range []bool{false, true} {
		frag := lambertFragment(attenuation).Bind(u, layout)
		want := shading.New(light, attenuation).Shade(math3d.V3(1, 0, 0), math3d.V3(0.5, 0.5, 0.5))

		var v render.Varyings
		gpu.WriteVec3(&v, 0, math3d.V3(1, 0, 0))
		gpu.WriteVec3(&v, 3, math3d.V3(0.5, 0.5, 0.5))
		got, alpha := frag(&v)
		if got != want.Color || alpha != 1 {
			t.Errorf("attenuation=%v: fragment = %v/%v, want %v/1", attenuation, got, alpha, want.Color)
		}
	}
}

func TestFrustumSkip(t *testing.T) {
	cfg := classicConfig()
	cfg.Transform.Camera.Eye = math3d.V3(50, 0, 3.5)
	r, _ := newSession(t, cfg)

	var s transform.State
	if err := r.Frame(&s, 1); err != nil {
		t.Fatal(err)
	}
	if !r.Skipped() {
		t.Error("off-screen cube was drawn")
	}
	if st := r.Stats(); st.DrawCalls != 0 {
		t.Errorf("draw calls = %d, want 0", st.DrawCalls)
	}
	if s.Frame != 1 {
		t.Errorf("state not advanced for a skipped frame: %d", s.Frame)
	}
}

func TestAttenuationToggle(t *testing.T) {
	// A light straight in front of the +Z face lights it fully.
	cfg := orbitConfig()
	cfg.Light.Position = math3d.V3(0, 0, 3)
	r, dev := newSession(t, cfg)

	draw := func() []byte {
		var s transform.State
		if err := r.Frame(&s, 1); err != nil {
			t.Fatal(err)
		}
		return dev.Framebuffer().ToImage().Pix
	}

	on := draw()
	if err := r.SetAttenuation(false); err != nil {
		t.Fatalf("SetAttenuation: %v", err)
	}
	if r.Attenuation() {
		t.Fatal("attenuation still reported on")
	}
	off := draw()

	if string(on) == string(off) {
		t.Error("toggling attenuation did not change the image")
	}
}

// flakyLightDevice fails light uniform pushes while broken and records
// the last program bound.
type flakyLightDevice struct {
	*gpu.Soft
	broken bool
	bound  *gpu.Program
}

func (d *flakyLightDevice) Use(p *gpu.Program) error {
	d.bound = p
	return d.Soft.Use(p)
}

func (d *flakyLightDevice) SetUniformVec3(name string, v math3d.Vec3) error {
	if d.broken {
		return errors.New("uniform upload failed")
	}
	return d.Soft.SetUniformVec3(name, v)
}

func TestSetAttenuationFailureRestoresProgram(t *testing.T) {
	soft, err := gpu.NewSoft(render.NewFramebuffer(size, size), Shaders())
	if err != nil {
		t.Fatal(err)
	}
	dev := &flakyLightDevice{Soft: soft}
	r, err := New(dev, models.Cube(), classicConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := dev.bound

	draw := func() string {
		var s transform.State
		if err := r.Frame(&s, 1); err != nil {
			t.Fatal(err)
		}
		return string(soft.Framebuffer().ToImage().Pix)
	}
	want := draw()

	dev.broken = true
	if err := r.SetAttenuation(true); err == nil {
		t.Fatal("SetAttenuation succeeded with failing uniforms")
	}
	dev.broken = false

	if r.Attenuation() {
		t.Error("attenuation reported on after a failed switch")
	}
	if dev.bound != before {
		t.Error("failed switch left the new program bound")
	}
	if draw() != want {
		t.Error("frame changed after a failed attenuation switch")
	}
}

func TestTogglesKeepFrames(t *testing.T) {
	r, dev := newSession(t, orbitConfig())
	var s transform.State
	s.Angle = 0.7

	frame := func() []byte {
		st := s
		if err := r.Frame(&st, 1); err != nil {
			t.Fatal(err)
		}
		return dev.Framebuffer().ToImage().Pix
	}

	lib := frame()
	r.UseLibraryMath(false)
	if r.Backend() != "math3d" {
		t.Fatalf("backend = %s", r.Backend())
	}
	hand := frame()
	diff := 0
	for i := range lib {
		if lib[i] != hand[i] {
			diff++
		}
	}
	// Backends agree to rounding; allow a stray edge pixel.
	if diff > 8 {
		t.Errorf("switching math backend changed %d bytes of the image", diff)
	}

	r.SetCulling(false)
	if r.Culling() {
		t.Error("culling still reported on")
	}
	_ = frame()
	if st := r.Stats(); st.Culled != 0 {
		t.Errorf("culled = %d with culling off", st.Culled)
	}
}

func TestNewFailures(t *testing.T) {
	t.Run("missing shader", func(t *testing.T) {
		dev, _ := gpu.NewSoft(render.NewFramebuffer(8, 8), gpu.NewLibrary())
		_, err := New(dev, models.Cube(), DefaultConfig(8, 8), nil)
		var ce *gpu.CompileError
		if !errors.As(err, &ce) || ce.Source != VertexSource {
			t.Errorf("New() = %v, want CompileError for %s", err, VertexSource)
		}
	})

	t.Run("degenerate projection", func(t *testing.T) {
		dev, _ := gpu.NewSoft(render.NewFramebuffer(8, 8), Shaders())
		cfg := DefaultConfig(8, 8)
		cfg.Transform.Projection.Far = cfg.Transform.Projection.Near
		if _, err := New(dev, models.Cube(), cfg, nil); !errors.Is(err, transform.ErrNumericDegenerate) {
			t.Errorf("New() = %v, want ErrNumericDegenerate", err)
		}
	})
}

func TestSetViewport(t *testing.T) {
	r, dev := newSession(t, classicConfig())
	if err := r.SetViewport(32, 16); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if fb := dev.Framebuffer(); fb.Width != 32 || fb.Height != 16 {
		t.Errorf("framebuffer = %dx%d", fb.Width, fb.Height)
	}
	var s transform.State
	if err := r.Frame(&s, 1); err != nil {
		t.Fatal(err)
	}
	if got := r.LastFrame().Perspective[5] / r.LastFrame().Perspective[0]; got < 1.99 || got > 2.01 {
		t.Errorf("aspect = %v, want 2", got)
	}

	if err := r.SetViewport(0, 16); !errors.Is(err, transform.ErrNumericDegenerate) {
		t.Errorf("SetViewport(0, 16) = %v, want ErrNumericDegenerate", err)
	}
}

func BenchmarkFrame(b *testing.B) {
	dev, _ := gpu.NewSoft(render.NewFramebuffer(160, 90), Shaders())
	r, err := New(dev, models.Cube(), DefaultConfig(160, 90), nil)
	if err != nil {
		b.Fatal(err)
	}
	var s transform.State
	for b.Loop() {
		_ = r.Frame(&s, 1)
	}
}
