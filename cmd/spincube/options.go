package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/spincube/pkg/config"
	"github.com/taigrr/spincube/pkg/transform"
)

// options are the flags shared by every command.
type options struct {
	configPath  string
	preset      string
	libraryMath bool
	attenuation bool
	culling     bool
	rotation    string
	camera      string
	model       string
	fps         int
	logFile     string
	logLevel    string
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "YAML config file overlaid on the preset")
	f.StringVar(&o.preset, "preset", config.PresetClassic, "Preset ("+strings.Join(config.Presets(), "|")+")")
	f.BoolVar(&o.libraryMath, "library-math", false, "Build matrices with mgl64 instead of the hand-written math")
	f.BoolVar(&o.attenuation, "attenuation", false, "Dim the light by inverse-square distance")
	f.BoolVar(&o.culling, "culling", true, "Cull back faces")
	f.StringVar(&o.rotation, "rotation", "", "Rotation mode (single-axis|composed-yx)")
	f.StringVar(&o.camera, "camera", "", "Camera mode (translate|look_at)")
	f.StringVar(&o.model, "model", "", "GLB/glTF mesh to spin instead of the cube")
	f.IntVar(&o.fps, "fps", 0, "Target frames per second")
	f.StringVar(&o.logFile, "log-file", "", "Write logs to this file")
	f.StringVar(&o.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
}

// resolve builds the session config: preset, then file, then any flag the
// user set explicitly.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	preset := ""
	if flags.Changed("preset") {
		preset = o.preset
	}
	cfg, err := config.Load(o.configPath, preset)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if flags.Changed("library-math") {
		cfg.Render.LibraryMath = o.libraryMath
	}
	if flags.Changed("attenuation") {
		cfg.Light.Attenuation = o.attenuation
	}
	if flags.Changed("culling") {
		cfg.Render.Culling = o.culling
	}
	if flags.Changed("rotation") {
		mode, err := transform.ParseRotationMode(o.rotation)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: --rotation: %w", config.ErrInvalid, err)
		}
		cfg.Rotation.Mode = mode
	}
	if flags.Changed("camera") {
		mode, err := transform.ParseCameraMode(o.camera)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: --camera: %w", config.ErrInvalid, err)
		}
		cfg.Camera.Mode = mode
	}
	if flags.Changed("model") {
		cfg.Render.Model = o.model
	}
	if flags.Changed("fps") {
		cfg.Render.FPS = o.fps
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// logger builds a text logger writing to --log-file, or to fallback when
// no file was given. A nil fallback discards output.
func (o *options) logger(fallback io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("%w: --log-level: %w", config.ErrInvalid, err)
	}

	w := fallback
	closeFn := func() {}
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	if w == nil {
		return slog.New(slog.DiscardHandler), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: size %q must be WxH", config.ErrInvalid, s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: size %q: %w", config.ErrInvalid, s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: size %q: %w", config.ErrInvalid, s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: size %q must be positive", config.ErrInvalid, s)
	}
	return w, h, nil
}
