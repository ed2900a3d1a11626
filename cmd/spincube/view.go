package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/spincube/pkg/gpu"
	"github.com/taigrr/spincube/pkg/loop"
	"github.com/taigrr/spincube/pkg/render"
	"golang.org/x/term"
)

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Spin the cube interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, opts)
		},
	}
}

// HUD draws the status line and key hints over the image.
type HUD struct {
	Visible   bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

var (
	hudFg = color.RGBA{230, 230, 230, 255}
	hudBg = color.RGBA{20, 20, 28, 255}
	hudOn = color.RGBA{120, 220, 120, 255}
)

// Draw renders the HUD rows onto scr.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, s *session, spin *loop.Spin) {
	if !h.Visible {
		return
	}

	r := s.scene
	status := fmt.Sprintf(" %.0f FPS  %s  %s  %s  %d tris ",
		h.fps, s.cfg.Preset, r.Rotation().Mode, r.Backend(), s.mesh.TriangleCount())
	render.DrawText(scr, area, area.Min.X, area.Min.Y, status, hudFg, hudBg)

	flags := fmt.Sprintf(" %s spin  %s atten  %s cull ",
		check(spin.Running()), check(r.Attenuation()), check(r.Culling()))
	if r.Skipped() {
		flags += " (off screen) "
	}
	render.DrawText(scr, area, area.Min.X, area.Max.Y-2, flags, hudOn, hudBg)
	render.DrawText(scr, area, area.Min.X, area.Max.Y-1,
		" space pause  a atten  m math  c cull  r reset  ? hud  q quit ", hudFg, hudBg)
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

func runView(cmd *cobra.Command, opts *options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("view: stdout is not a terminal: %w", gpu.ErrContextUnavailable)
	}

	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	// The alt screen owns the terminal, so only log to a file.
	logger, closeLog, err := opts.logger(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	t := uv.DefaultTerminal()
	width, height, err := t.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	sess, err := newSession(cfg, width, height*2, logger)
	if err != nil {
		return err
	}

	if err := t.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	t.EnterAltScreen()
	t.HideCursor()
	t.Resize(width, height)
	defer func() {
		t.ExitAltScreen()
		t.ShowCursor()
		t.Shutdown(context.Background())
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Input is forwarded to the frame callback, which owns all render state.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range t.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v := &viewer{
		term:   t,
		sess:   sess,
		spin:   loop.NewSpin(cfg.Render.FPS),
		hud:    NewHUD(),
		width:  width,
		height: height,
	}

	l := loop.New(cfg.Render.FPS)
	var frame loop.Callback
	frame = func(ctx context.Context) error {
		quit, err := v.drain(events)
		if err != nil || quit {
			return err
		}
		if err := v.draw(); err != nil {
			return err
		}
		l.ScheduleNextFrame(frame)
		return nil
	}
	l.ScheduleNextFrame(frame)

	err = l.Run(ctx)
	logger.Info("view stopped", "frames", l.Frames(), "err", err)
	return err
}

// viewer is the interactive session state. It is only touched from the
// frame callback.
type viewer struct {
	term          *uv.Terminal
	sess          *session
	spin          *loop.Spin
	hud           *HUD
	width, height int
}

// drain applies every pending input event and reports whether to quit.
func (v *viewer) drain(events <-chan uv.Event) (bool, error) {
	for {
		select {
		case ev := <-events:
			quit, err := v.handle(ev)
			if quit || err != nil {
				return quit, err
			}
		default:
			return false, nil
		}
	}
}

func (v *viewer) handle(ev uv.Event) (bool, error) {
	r := v.sess.scene
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		if ev.Width <= 0 || ev.Height <= 0 {
			return false, nil
		}
		v.width, v.height = ev.Width, ev.Height
		v.term.Erase()
		v.term.Resize(v.width, v.height)
		if err := v.sess.resize(v.width, v.height*2); err != nil {
			return false, err
		}

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("q", "escape", "ctrl+c"):
			return true, nil
		case ev.MatchString("space"):
			v.spin.Toggle()
		case ev.MatchString("a"):
			if err := r.SetAttenuation(!r.Attenuation()); err != nil {
				return false, err
			}
		case ev.MatchString("m"):
			r.UseLibraryMath(r.Backend() == "math3d")
		case ev.MatchString("c"):
			r.SetCulling(!r.Culling())
		case ev.MatchString("r"):
			v.sess.state.Reset()
			v.spin.SetRunning(true)
			v.spin.Snap()
		case ev.MatchString("?", "shift+/"):
			v.hud.Visible = !v.hud.Visible
		}
	}
	return false, nil
}

func (v *viewer) draw() error {
	if err := v.sess.frame(v.spin.Update()); err != nil {
		return err
	}

	area := uv.Rect(0, 0, v.width, v.height)
	v.sess.fb.Draw(v.term, area)
	v.hud.UpdateFPS()
	v.hud.Draw(v.term, area, v.sess, v.spin)

	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
