package scene

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/gpu"
	"github.com/taigrr/spincube/pkg/math3d"
	"github.com/taigrr/spincube/pkg/render"
	"github.com/taigrr/spincube/pkg/shading"
)

// Shader sources.
const (
	VertexSource             = "lambert.vert"
	FragmentSource           = "lambert.frag"
	AttenuatedFragmentSource = "lambert_attenuated.frag"
)

// Uniform names.
const (
	UniformTransform     = "uTransformMatrix"
	UniformModelView     = "uModelViewMatrix"
	UniformPerspective   = "uPerspectiveMatrix"
	UniformAmbientColor  = "uAmbientColor"
	UniformLightColor    = "uLightColor"
	UniformLightPosition = "uLightPosition"
)

// Varying names.
const (
	varyingNormal   = "vNormal"
	varyingPosition = "vPosition"
)

// FragmentSourceFor returns the fragment source matching the attenuation setting.
func FragmentSourceFor(attenuation bool) string {
	if attenuation {
		return AttenuatedFragmentSource
	}
	return FragmentSource
}

// Shaders returns a library holding the lambert vertex stage and both
// fragment stages.
func Shaders() *gpu.Library {
	lib := gpu.NewLibrary()
	lib.RegisterVertex(VertexSource, lambertVertex)
	lib.RegisterFragment(FragmentSource, lambertFragment(false))
	lib.RegisterFragment(AttenuatedFragmentSource, lambertFragment(true))
	return lib
}

// lambertVertex projects with P*MV*T and hands the fragment stage the
// world-space normal and position.
var lambertVertex = gpu.VertexShader{
	Uniforms: map[string]gpu.UniformType{
		UniformTransform:   gpu.Mat4,
		UniformModelView:   gpu.Mat4,
		UniformPerspective: gpu.Mat4,
	},
	Outputs: []string{varyingNormal, varyingPosition},
	Bind: func(u *gpu.Uniforms, l gpu.Layout) gpu.VertexFunc {
		model := u.Mat4(UniformTransform)
		mvp := u.Mat4(UniformPerspective).Mul(u.Mat4(UniformModelView)).Mul(model)
		nOff, pOff := l[varyingNormal], l[varyingPosition]

		return func(in gpu.Attributes, out *render.Varyings) math3d.Vec4 {
			gpu.WriteVec3(out, nOff, model.MulVec3Dir(in.Normal))
			gpu.WriteVec3(out, pOff, model.MulVec3(in.Position))
			return mvp.MulVec4(math3d.V4FromV3(in.Position, 1))
		}
	},
}

func lambertFragment(attenuation bool) gpu.FragmentShader {
	return gpu.FragmentShader{
		Uniforms: map[string]gpu.UniformType{
			UniformAmbientColor:  gpu.Vec3,
			UniformLightColor:    gpu.Vec3,
			UniformLightPosition: gpu.Vec3,
		},
		Inputs: []string{varyingNormal, varyingPosition},
		Bind: func(u *gpu.Uniforms, l gpu.Layout) render.FragmentFunc {
			e := shading.New(shading.Light{
				Ambient:  toColor(u.Vec3(UniformAmbientColor)),
				Color:    toColor(u.Vec3(UniformLightColor)),
				Position: u.Vec3(UniformLightPosition),
			}, attenuation)
			nOff, pOff := l[varyingNormal], l[varyingPosition]

			return func(v *render.Varyings) (colorful.Color, float64) {
				r := e.Shade(gpu.ReadVec3(v, nOff), gpu.ReadVec3(v, pOff))
				return r.Color, r.Alpha
			}
		},
	}
}

func toColor(v math3d.Vec3) colorful.Color {
	return colorful.Color{R: v.X, G: v.Y, B: v.Z}
}

func fromColor(c colorful.Color) math3d.Vec3 {
	return math3d.V3(c.R, c.G, c.B)
}
