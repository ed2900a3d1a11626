// Package loop drives rendering one frame at a time. A frame callback
// runs to completion and schedules its successor, so frames never overlap.
package loop

import (
	"context"
	"time"
)

// Callback renders one frame.
type Callback func(ctx context.Context) error

// Scheduler queues the next frame callback.
type Scheduler interface {
	ScheduleNextFrame(cb Callback)
}

// Loop is a cooperative Scheduler. At most one callback is pending; a
// second ScheduleNextFrame before the first runs replaces it.
type Loop struct {
	Interval time.Duration // Minimum time between frames; zero runs free
	Limit    uint64        // Stop after this many frames; zero is unbounded

	pending Callback
	frames  uint64
}

// New returns a loop targeting fps frames per second. fps <= 0 runs free.
func New(fps int) *Loop {
	l := &Loop{}
	if fps > 0 {
		l.Interval = time.Second / time.Duration(fps)
	}
	return l
}

// ScheduleNextFrame queues cb to run as the next frame.
func (l *Loop) ScheduleNextFrame(cb Callback) {
	l.pending = cb
}

// Frames returns the number of callbacks run so far.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Run executes scheduled callbacks until ctx is cancelled, a callback
// fails, the frame limit is reached, or nothing is scheduled. Cancellation
// is a clean stop and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if l.Interval > 0 {
		t := time.NewTicker(l.Interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		cb := l.pending
		if cb == nil {
			return nil
		}
		l.pending = nil

		if err := cb(ctx); err != nil {
			return err
		}
		l.frames++
		if l.Limit > 0 && l.frames >= l.Limit {
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}
