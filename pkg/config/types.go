package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/spincube/pkg/math3d"
	"gopkg.in/yaml.v3"
)

// Vec3 is written in YAML as a three-element list.
type Vec3 [3]float64

// Vec returns v as a math3d vector.
func (v Vec3) Vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Color is written in YAML as "#rrggbb" or a list of three floats in [0, 1].
type Color struct {
	colorful.Color
}

// RGB returns a Color from float channels.
func RGB(r, g, b float64) Color {
	return Color{colorful.Color{R: r, G: g, B: b}}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := colorful.Hex(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: colour %q: %w", node.Line, node.Value, err)
		}
		c.Color = parsed
		return nil
	case yaml.SequenceNode:
		var ch []float64
		if err := node.Decode(&ch); err != nil {
			return err
		}
		if len(ch) != 3 {
			return fmt.Errorf("line %d: colour needs 3 channels, got %d", node.Line, len(ch))
		}
		c.Color = colorful.Color{R: ch[0], G: ch[1], B: ch[2]}
		return nil
	}
	return fmt.Errorf("line %d: colour must be a hex string or [r, g, b]", node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (any, error) {
	return []float64{c.R, c.G, c.B}, nil
}
