// Package config resolves session settings from a named preset, an
// optional YAML file and command-line overrides, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/taigrr/spincube/pkg/render"
	"github.com/taigrr/spincube/pkg/scene"
	"github.com/taigrr/spincube/pkg/shading"
	"github.com/taigrr/spincube/pkg/transform"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// maxFileSize bounds config files read from disk.
const maxFileSize = 1024 * 1024

// Config holds the resolved settings for a session.
type Config struct {
	Preset     string           `yaml:"preset"`
	Camera     CameraConfig     `yaml:"camera"`
	Projection ProjectionConfig `yaml:"projection"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Light      LightConfig      `yaml:"light"`
	Render     RenderConfig     `yaml:"render"`
}

// CameraConfig places the fixed camera.
type CameraConfig struct {
	Mode   transform.CameraMode `yaml:"mode"`
	Eye    Vec3                 `yaml:"eye"`
	Target Vec3                 `yaml:"target"`
	Up     Vec3                 `yaml:"up"`
}

// ProjectionConfig sets the perspective.
type ProjectionConfig struct {
	FOVYDegrees float64 `yaml:"fovy_degrees"`
	Near        float64 `yaml:"near"`
	Far         float64 `yaml:"far"`
}

// RotationConfig sets the model spin.
type RotationConfig struct {
	Mode       transform.RotationMode `yaml:"mode"`
	Axis       Vec3                   `yaml:"axis"`
	Step       float64                `yaml:"step"`
	DegreeStep float64                `yaml:"degree_step"`
}

// LightConfig sets the point light.
type LightConfig struct {
	Ambient     Color `yaml:"ambient"`
	Color       Color `yaml:"color"`
	Position    Vec3  `yaml:"position"`
	Attenuation bool  `yaml:"attenuation"`
}

// RenderConfig holds pipeline switches.
type RenderConfig struct {
	LibraryMath bool   `yaml:"library_math"`
	Culling     bool   `yaml:"culling"`
	Background  Color  `yaml:"background"`
	FPS         int    `yaml:"fps"`
	Model       string `yaml:"model"`
}

// Preset names.
const (
	PresetClassic = "classic"
	PresetOrbit   = "orbit"
)

var presets = map[string]func() Config{
	// Translated camera, Y-then-X spin by whole degrees, light behind-right.
	PresetClassic: func() Config {
		c := base()
		c.Preset = PresetClassic
		c.Camera = CameraConfig{Mode: transform.CameraTranslate, Eye: Vec3{0, 0.3, 3.5}, Up: Vec3{0, 1, 0}}
		c.Rotation.Mode = transform.ComposedYX
		c.Light.Position = Vec3{1, 1, -0.5}
		return c
	},
	// Look-at camera, single-axis spin, library math, inverse-square falloff.
	PresetOrbit: func() Config {
		c := base()
		c.Preset = PresetOrbit
		c.Camera = CameraConfig{Mode: transform.CameraLookAt, Eye: Vec3{0, -0.3, 3.5}, Up: Vec3{0, 1, 0}}
		c.Rotation.Mode = transform.SingleAxis
		c.Light.Position = Vec3{1, 1, 0}
		c.Light.Attenuation = true
		c.Render.LibraryMath = true
		return c
	},
}

func base() Config {
	return Config{
		Projection: ProjectionConfig{FOVYDegrees: 45, Near: 0.1, Far: 10},
		Rotation:   RotationConfig{Axis: Vec3{1, 1, 0}, Step: 0.02, DegreeStep: 1},
		Light: LightConfig{
			Ambient: RGB(0, 0.3, 0),
			Color:   RGB(1, 1, 1),
		},
		Render: RenderConfig{
			Culling:    true,
			Background: RGB(0, 0, 0),
			FPS:        60,
		},
	}
}

// Presets returns the preset names, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named preset.
func Preset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalid, name, Presets())
	}
	return p(), nil
}

// Default returns the classic preset.
func Default() Config {
	return presets[PresetClassic]()
}

// Load resolves a preset and overlays the YAML file at path on it. The
// preset argument wins over the file's own preset key; when both are
// empty the classic preset is used. An empty path loads only the preset.
func Load(path, preset string) (Config, error) {
	var data []byte
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
		if info.Size() > maxFileSize {
			return Config{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrInvalid, path, info.Size(), maxFileSize)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Parse(data, preset)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte, preset string) (Config, error) {
	if preset == "" && len(bytes.TrimSpace(data)) > 0 {
		var head struct {
			Preset string `yaml:"preset"`
		}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return Config{}, fmt.Errorf("%w: parse config: %w", ErrInvalid, err)
		}
		preset = head.Preset
	}
	if preset == "" {
		preset = PresetClassic
	}

	cfg, err := Preset(preset)
	if err != nil {
		return Config{}, err
	}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse config: %w", ErrInvalid, err)
		}
	}
	cfg.Preset = preset
	return cfg, nil
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Render.FPS <= 0 {
		add("render.fps must be positive, got %d", c.Render.FPS)
	}
	colours := []struct {
		name string
		c    Color
	}{
		{"light.ambient", c.Light.Ambient},
		{"light.color", c.Light.Color},
		{"render.background", c.Render.Background},
	}
	for _, col := range colours {
		if col.c.R < 0 || col.c.G < 0 || col.c.B < 0 || !finite(col.c.R, col.c.G, col.c.B) {
			add("%s has a negative or non-finite channel", col.name)
		}
	}
	if !finite(c.Light.Position[:]...) {
		add("light.position must be finite")
	}
	if !finite(c.Camera.Eye[:]...) || !finite(c.Camera.Target[:]...) || !finite(c.Camera.Up[:]...) {
		add("camera vectors must be finite")
	}

	tc := c.Transform()
	if err := tc.Rotation.Validate(); err != nil {
		add("rotation: %w", err)
	}
	if err := tc.Projection.Validate(1); err != nil {
		add("projection: %w", err)
	}
	if _, err := transform.New(tc, 1, 1); err != nil && len(errs) == 0 {
		add("%w", err)
	}

	return errors.Join(errs...)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Transform converts to the transform builder's configuration.
func (c Config) Transform() transform.Config {
	return transform.Config{
		Projection: transform.Projection{
			FOVY: c.Projection.FOVYDegrees * math.Pi / 180,
			Near: c.Projection.Near,
			Far:  c.Projection.Far,
		},
		Camera: transform.CameraConfig{
			Mode:   c.Camera.Mode,
			Eye:    c.Camera.Eye.Vec(),
			Target: c.Camera.Target.Vec(),
			Up:     c.Camera.Up.Vec(),
		},
		Rotation: transform.Rotation{
			Mode:       c.Rotation.Mode,
			Axis:       c.Rotation.Axis.Vec(),
			Step:       c.Rotation.Step,
			DegreeStep: c.Rotation.DegreeStep,
		},
		UseLibraryMath: c.Render.LibraryMath,
	}
}

// ShadingLight converts to the shading evaluator's light.
func (c Config) ShadingLight() shading.Light {
	return shading.Light{
		Ambient:  c.Light.Ambient.Color,
		Color:    c.Light.Color.Color,
		Position: c.Light.Position.Vec(),
	}
}

// Scene converts to a renderer configuration for a width x height viewport.
func (c Config) Scene(width, height int) scene.Config {
	return scene.Config{
		Width:            width,
		Height:           height,
		Transform:        c.Transform(),
		Light:            c.ShadingLight(),
		ApplyAttenuation: c.Light.Attenuation,
		Background:       render.ToRGBA(c.Render.Background.Color, 1),
		DisableCulling:   !c.Render.Culling,
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
