package presentation

import (
	"context"
	"math"
	"time"

	"github.com/Gaurav-Gosain/boardkit/internal/element"
)

// Transition durations.
const (
	DefaultFrameDuration  = 500 * time.Millisecond
	DefaultFitAllDuration = 300 * time.Millisecond
	DefaultFPS            = 60
)

// Animation is an in-flight camera transition.
type Animation struct {
	From      element.ViewPort
	To        element.ViewPort
	StartTime time.Time
	Duration  time.Duration
	Progress  float64
	Complete  bool
}

// NewAnimation starts a transition at start.
func NewAnimation(from, to element.ViewPort, start time.Time, d time.Duration) *Animation {
	return &Animation{
		From:      from,
		To:        to,
		StartTime: start,
		Duration:  d,
	}
}

// Update advances the animation to now and returns the camera for that
// instant. Once the duration has elapsed it returns exactly To.
func (a *Animation) Update(now time.Time) element.ViewPort {
	progress := 1.0
	if a.Duration > 0 {
		progress = float64(now.Sub(a.StartTime)) / float64(a.Duration)
	}
	if progress < 0 {
		progress = 0
	}
	if progress >= 1 {
		a.Progress = 1
		a.Complete = true
		return a.To
	}
	a.Progress = easeOutCubic(progress)
	return a.From.Lerp(a.To, a.Progress)
}

// Finish snaps the animation to its end.
func (a *Animation) Finish() element.ViewPort {
	a.Progress = 1
	a.Complete = true
	return a.To
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Run drives a to completion, handing every intermediate camera to apply.
// It ticks fps times per second on the wall clock and reads the animation
// time from now. A cancelled context snaps to the target and returns
// ctx.Err().
func (a *Animation) Run(ctx context.Context, fps int, now func() time.Time, apply func(element.ViewPort)) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if now == nil {
		now = time.Now
	}

	apply(a.Update(now()))
	if a.Complete {
		return nil
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			apply(a.Finish())
			return ctx.Err()
		case <-ticker.C:
			apply(a.Update(now()))
			if a.Complete {
				return nil
			}
		}
	}
}
