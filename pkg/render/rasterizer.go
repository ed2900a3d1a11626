package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/math3d"
)

// MaxVaryings is the number of per-vertex floats carried to the fragment stage.
const MaxVaryings = 8

// Varyings are per-vertex outputs interpolated across a triangle.
type Varyings [MaxVaryings]float64

// ClipVertex is a vertex stage output: a clip-space position and its varyings.
type ClipVertex struct {
	Position math3d.Vec4
	Varyings Varyings
}

// FragmentFunc shades one covered pixel from its interpolated varyings.
type FragmentFunc func(v *Varyings) (c colorful.Color, alpha float64)

// Stats counts triangle outcomes since the last ResetStats. Every
// submitted triangle lands in exactly one of Rejected, Culled or Drawn.
type Stats struct {
	Submitted int // Triangles passed to DrawTriangle
	Rejected  int // A vertex had w <= 0
	Culled    int // Back-facing, zero area or entirely off-screen
	Drawn     int // Reached the pixel loop
	Fragments int // Pixels that passed the depth test
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	fb                     *Framebuffer
	zbuffer                []float64 // Depth buffer (1D array, row-major)
	Stats                  Stats
	DisableBackfaceCulling bool // If true, render both sides of triangles
}

// NewRasterizer creates a new rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{fb: fb}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Framebuffer returns the colour target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetStats zeroes the triangle counters.
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

// Depth returns the NDC depth stored at (x, y), or math.MaxFloat64 when
// nothing has been drawn there.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
	InvW float64 // 1/w for perspective-correct interpolation
}

// DrawTriangle rasterizes one clip-space triangle, interpolating the first
// n varyings and calling frag for every pixel that passes the depth test.
// It reports whether the triangle reached the pixel loop.
func (r *Rasterizer) DrawTriangle(tri [3]ClipVertex, n int, frag FragmentFunc) bool {
	r.Stats.Submitted++
	if r.fb.Empty() {
		r.Stats.Culled++
		return false
	}
	n = min(max(n, 0), MaxVaryings)

	// Triangles touching or behind the eye plane are rejected whole.
	for i := range 3 {
		if !(tri[i].Position.W > 0) {
			r.Stats.Rejected++
			return false
		}
	}

	var ndc [3]math3d.Vec3
	for i := range 3 {
		ndc[i] = tri[i].Position.PerspectiveDivide()
	}

	// Counter-clockwise in NDC is front-facing.
	area := (ndc[1].X-ndc[0].X)*(ndc[2].Y-ndc[0].Y) - (ndc[2].X-ndc[0].X)*(ndc[1].Y-ndc[0].Y)
	if area == 0 || (area < 0 && !r.DisableBackfaceCulling) || math.IsNaN(area) {
		r.Stats.Culled++
		return false
	}

	w, h := float64(r.Width()), float64(r.Height())
	var sv [3]screenVertex
	for i := range 3 {
		sv[i] = screenVertex{
			X:    (ndc[i].X + 1) * 0.5 * w,
			Y:    (1 - ndc[i].Y) * 0.5 * h, // Y flipped
			Z:    ndc[i].Z,
			InvW: 1 / tri[i].Position.W,
		}
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(w-1, math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(h-1, math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		r.Stats.Culled++
		return false
	}

	r.Stats.Drawn++

	var v Varyings
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// NDC depth is affine in screen space.
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z < -1 || z > 1 || z >= r.Depth(x, y) {
				continue
			}

			// Varyings are linear in screen space only after dividing by w.
			b0, b1, b2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			oneOverW := b0 + b1 + b2
			if oneOverW <= 0 {
				continue
			}
			for k := range n {
				v[k] = (b0*tri[0].Varyings[k] + b1*tri[1].Varyings[k] + b2*tri[2].Varyings[k]) / oneOverW
			}

			c, a := frag(&v)
			r.setDepth(x, y, z)
			r.fb.SetColor(x, y, c, a)
			r.Stats.Fragments++
		}
	}
	return true
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
