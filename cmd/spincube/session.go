package main

import (
	"fmt"
	"log/slog"

	"github.com/taigrr/spincube/pkg/config"
	"github.com/taigrr/spincube/pkg/gpu"
	"github.com/taigrr/spincube/pkg/models"
	"github.com/taigrr/spincube/pkg/render"
	"github.com/taigrr/spincube/pkg/scene"
	"github.com/taigrr/spincube/pkg/transform"
)

// session owns everything needed to render frames of one scene.
type session struct {
	cfg   config.Config
	fb    *render.Framebuffer
	mesh  *models.Mesh
	scene *scene.Renderer
	state transform.State
}

func loadMesh(path string) (*models.Mesh, error) {
	if path == "" {
		return models.Cube(), nil
	}
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return mesh, nil
}

func newSession(cfg config.Config, width, height int, logger *slog.Logger) (*session, error) {
	mesh, err := loadMesh(cfg.Render.Model)
	if err != nil {
		return nil, err
	}

	fb := render.NewFramebuffer(width, height)
	dev, err := gpu.NewSoft(fb, scene.Shaders())
	if err != nil {
		return nil, err
	}
	r, err := scene.New(dev, mesh, cfg.Scene(width, height), logger)
	if err != nil {
		return nil, err
	}

	logger.Info("session ready",
		"preset", cfg.Preset,
		"mesh", mesh.Name,
		"triangles", mesh.TriangleCount(),
		"backend", r.Backend(),
		"rotation", cfg.Rotation.Mode,
		"camera", cfg.Camera.Mode,
		"width", width,
		"height", height)

	return &session{cfg: cfg, fb: fb, mesh: mesh, scene: r}, nil
}

// frame renders the current state and advances it by speed.
func (s *session) frame(speed float64) error {
	return s.scene.Frame(&s.state, speed)
}

func (s *session) resize(width, height int) error {
	return s.scene.SetViewport(width, height)
}
