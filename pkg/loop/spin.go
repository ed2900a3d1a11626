package loop

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Spin eases the rotation speed factor between 0 (paused) and 1 (running)
// with a critically damped spring.
type Spin struct {
	spring   harmonica.Spring
	speed    float64
	velocity float64
	target   float64
}

// NewSpin creates a running spin stepped at fps updates per second.
func NewSpin(fps int) *Spin {
	if fps <= 0 {
		fps = 60
	}
	return &Spin{
		// Frequency 6.0 settles in about half a second, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		speed:  1,
		target: 1,
	}
}

// Toggle flips between running and paused.
func (s *Spin) Toggle() {
	s.SetRunning(!s.Running())
}

// SetRunning sets the target speed.
func (s *Spin) SetRunning(on bool) {
	if on {
		s.target = 1
	} else {
		s.target = 0
	}
}

// Running reports the target state, not the current speed.
func (s *Spin) Running() bool {
	return s.target == 1
}

// Update advances the spring one step and returns the new speed factor.
func (s *Spin) Update() float64 {
	s.speed, s.velocity = s.spring.Update(s.speed, s.velocity, s.target)
	if math.Abs(s.speed-s.target) < 1e-3 && math.Abs(s.velocity) < 1e-3 {
		s.speed, s.velocity = s.target, 0
	}
	s.speed = math.Max(0, math.Min(1, s.speed))
	return s.speed
}

// Speed returns the current speed factor without stepping.
func (s *Spin) Speed() float64 {
	return s.speed
}

// Snap jumps straight to the target speed.
func (s *Spin) Snap() {
	s.speed, s.velocity = s.target, 0
}
