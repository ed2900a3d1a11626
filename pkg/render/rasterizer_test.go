package render

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/math3d"
)

func clipVertex(x, y, z, w float64, vary ...float64) ClipVertex {
	cv := ClipVertex{Position: math3d.V4(x, y, z, w)}
	copy(cv.Varyings[:], vary)
	return cv
}

func solid(c colorful.Color) FragmentFunc {
	return func(*Varyings) (colorful.Color, float64) { return c, 1 }
}

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

// ccwQuadHalf covers the lower-left half of the viewport, wound
// counter-clockwise in NDC.
func ccwQuadHalf(z float64) [3]ClipVertex {
	return [3]ClipVertex{
		clipVertex(-1, -1, z, 1),
		clipVertex(1, -1, z, 1),
		clipVertex(-1, 1, z, 1),
	}
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Triangle: (0,0), (1,0), (0,1)
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)
			if !bc.ApproxEqual(tc.expected, 0.001) {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(0, 0, 1, 0, 0, 1, -1, -1)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have negative barycentric coordinate")
		}
	})
}

func TestDrawTriangleCoverage(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	r := NewRasterizer(fb)

	if !r.DrawTriangle(ccwQuadHalf(0), 0, solid(red)) {
		t.Fatal("front-facing triangle was not drawn")
	}

	// Lower-left corner is inside, upper-right is not.
	if got := fb.GetPixel(0, 7); got != RGB(255, 0, 0) {
		t.Errorf("pixel (0,7) = %v, want red", got)
	}
	if got := fb.GetPixel(7, 0); got.A != 0 {
		t.Errorf("pixel (7,0) = %v, want untouched", got)
	}
	if r.Stats.Drawn != 1 || r.Stats.Fragments == 0 {
		t.Errorf("stats = %+v, want one drawn triangle with fragments", r.Stats)
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	cw := ccwQuadHalf(0)
	cw[1], cw[2] = cw[2], cw[1]

	tests := []struct {
		name    string
		disable bool
		drawn   bool
	}{
		{"culled", false, false},
		{"culling disabled", true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			r := NewRasterizer(fb)
			r.DisableBackfaceCulling = tc.disable

			if got := r.DrawTriangle(cw, 0, solid(red)); got != tc.drawn {
				t.Errorf("DrawTriangle() = %v, want %v", got, tc.drawn)
			}
			if !tc.drawn && r.Stats.Culled != 1 {
				t.Errorf("culled = %d, want 1", r.Stats.Culled)
			}
		})
	}
}

func TestDrawTriangleRejectsBehindEye(t *testing.T) {
	for _, w := range []float64{0, -1, math.NaN()} {
		fb := NewFramebuffer(4, 4)
		r := NewRasterizer(fb)
		tri := ccwQuadHalf(0)
		tri[2].Position.W = w

		if r.DrawTriangle(tri, 0, solid(red)) {
			t.Errorf("w=%v: triangle was drawn", w)
		}
		if r.Stats.Rejected != 1 {
			t.Errorf("w=%v: rejected = %d, want 1", w, r.Stats.Rejected)
		}
	}
}

func TestDepthTest(t *testing.T) {
	tests := []struct {
		name  string
		first [3]ClipVertex
		fc    colorful.Color
		then  [3]ClipVertex
		tc    colorful.Color
	}{
		{"near first", ccwQuadHalf(-0.5), red, ccwQuadHalf(0.5), blue},
		{"far first", ccwQuadHalf(0.5), blue, ccwQuadHalf(-0.5), red},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			r := NewRasterizer(fb)
			r.DrawTriangle(tc.first, 0, solid(tc.fc))
			r.DrawTriangle(tc.then, 0, solid(tc.tc))

			if got := fb.GetPixel(1, 6); got != RGB(255, 0, 0) {
				t.Errorf("pixel = %v, want the nearer red triangle", got)
			}
			if d := r.Depth(1, 6); math.Abs(d+0.5) > 1e-12 {
				t.Errorf("depth = %v, want -0.5", d)
			}
		})
	}
}

func TestDepthOutsideClipRangeDiscarded(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	r := NewRasterizer(fb)
	r.DrawTriangle(ccwQuadHalf(1.5), 0, solid(red))
	if r.Stats.Fragments != 0 {
		t.Errorf("fragments = %d, want 0 beyond the far plane", r.Stats.Fragments)
	}
}

func TestClearDepth(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	r := NewRasterizer(fb)
	r.DrawTriangle(ccwQuadHalf(0), 0, solid(red))
	r.ClearDepth()
	for y := range 4 {
		for x := range 4 {
			if d := r.Depth(x, y); d != math.MaxFloat64 {
				t.Fatalf("depth(%d,%d) = %v after clear", x, y, d)
			}
		}
	}
	if d := r.Depth(-1, 0); d != math.MaxFloat64 {
		t.Errorf("out-of-bounds depth = %v, want MaxFloat64", d)
	}
}

func TestPerspectiveCorrectVaryings(t *testing.T) {
	// v1 sits twice as far away (w=2). Screen coords: (0,4) (4,4) (0,0).
	fb := NewFramebuffer(4, 4)
	r := NewRasterizer(fb)
	tri := [3]ClipVertex{
		clipVertex(-1, -1, 0, 1, 0),
		clipVertex(2, -2, 0, 2, 1),
		clipVertex(-1, 1, 0, 1, 0),
	}
	r.DrawTriangle(tri, 1, func(v *Varyings) (colorful.Color, float64) {
		return colorful.Color{R: v[0]}, 1
	})

	// At pixel (1,2) the screen weights are (0.25, 0.375, 0.375); the
	// perspective-correct value is 0.1875/0.8125, an affine blend gives 0.375.
	wantF := 0.1875/0.8125*255 + 0.5
	want := uint8(wantF)
	if got := fb.GetPixel(1, 2).R; got != want {
		t.Errorf("interpolated varying = %d, want %d", got, want)
	}
}

func TestFragmentColourClamped(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	r := NewRasterizer(fb)
	r.DrawTriangle(ccwQuadHalf(0), 0, func(*Varyings) (colorful.Color, float64) {
		return colorful.Color{R: 1.7, G: 0.5, B: -0.2}, 1
	})
	got := fb.GetPixel(0, 3)
	if got.R != 255 || got.G != 128 || got.B != 0 || got.A != 255 {
		t.Errorf("pixel = %v, want {255 128 0 255}", got)
	}
}

func TestEmptyFramebuffer(t *testing.T) {
	r := NewRasterizer(NewFramebuffer(0, 0))
	if r.DrawTriangle(ccwQuadHalf(0), 0, solid(red)) {
		t.Error("drew into an empty framebuffer")
	}
	if r.Stats.Culled != 1 {
		t.Errorf("Culled = %d, want 1", r.Stats.Culled)
	}
}

func TestStatsAccountForEveryTriangle(t *testing.T) {
	r := NewRasterizer(NewFramebuffer(8, 8))

	tris := map[string][3]ClipVertex{
		"drawn":  ccwQuadHalf(0),
		"behind": {clipVertex(-1, -1, 0, -1), clipVertex(1, -1, 0, 1), clipVertex(-1, 1, 0, 1)},
		"back":   {ccwQuadHalf(0)[0], ccwQuadHalf(0)[2], ccwQuadHalf(0)[1]},
		// Front-facing, but its bounding box lies right of the viewport.
		"off screen": {clipVertex(3, -1, 0, 1), clipVertex(4, -1, 0, 1), clipVertex(3, 1, 0, 1)},
	}
	for _, tri := range tris {
		r.DrawTriangle(tri, 0, solid(red))
	}

	s := r.Stats
	if s.Submitted != 4 || s.Rejected != 1 || s.Culled != 2 || s.Drawn != 1 {
		t.Errorf("stats = %+v, want 4 submitted, 1 rejected, 2 culled, 1 drawn", s)
	}
	if s.Submitted != s.Rejected+s.Culled+s.Drawn {
		t.Errorf("stats do not add up: %+v", s)
	}
}

func BenchmarkDrawTriangle(b *testing.B) {
	fb := NewFramebuffer(160, 90)
	r := NewRasterizer(fb)
	tri := [3]ClipVertex{
		clipVertex(-1, -1, 0, 1, 0, 0, 1),
		clipVertex(1, -1, 0, 1, 1, 0, 0),
		clipVertex(-1, 1, 0, 1, 0, 1, 0),
	}
	frag := func(v *Varyings) (colorful.Color, float64) {
		return colorful.Color{R: v[0], G: v[1], B: v[2]}, 1
	}
	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangle(tri, 3, frag)
	}
}
