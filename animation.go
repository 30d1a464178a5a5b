package main

import (
	"time"
)

// AnimationState tracks where an animation is in its lifecycle.
type AnimationState int

const (
	AnimIdle AnimationState = iota
	AnimPlaying
	AnimCompleted
	AnimInterrupted
)

// AnimationPriority orders animations for admission and preemption.
// Higher values win.
type AnimationPriority int

const (
	PriorityLow AnimationPriority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Animation is the contract the manager schedules against. The concrete
// set is closed: charSlideAnim and moveToExprAnim, both built on
// baseAnimation.
type Animation interface {
	// Start transitions Idle -> Playing and records the start time.
	Start()
	// Tick advances one frame. Returns false once the animation has
	// finished; the caller must then drop it.
	Tick() bool
	// Interrupt renders the terminal frame and stops the animation.
	// No-op outside Playing.
	Interrupt()
	State() AnimationState
	Priority() AnimationPriority
	// Progress reports 0..1 as a pure function of elapsed time.
	Progress() float64
}

// baseAnimation owns the lifecycle and timing shared by every animation
// kind. Concrete types embed it and install their render callback, which
// receives raw progress and draws one frame.
type baseAnimation struct {
	state    AnimationState
	priority AnimationPriority

	startTime time.Time
	duration  time.Duration
	targetFPS int

	// Per-animation pacing: when ticked faster than targetFPS the
	// animation skips rendering until this instant instead of sleeping.
	nextFrameAt time.Time

	now    func() time.Time
	render func(progress float64)
}

func newBaseAnimation(duration time.Duration, priority AnimationPriority, targetFPS int) baseAnimation {
	return baseAnimation{
		state:     AnimIdle,
		priority:  priority,
		duration:  duration,
		targetFPS: targetFPS,
		now:       time.Now,
	}
}

func (a *baseAnimation) Start() {
	a.state = AnimPlaying
	a.startTime = a.now()
	a.nextFrameAt = a.startTime
}

func (a *baseAnimation) Tick() bool {
	if a.state != AnimPlaying {
		return false
	}

	progress := a.Progress()
	if progress >= 1.0 {
		a.state = AnimCompleted
		a.render(1.0)
		return false
	}

	// Not due for another frame yet; keep playing without drawing.
	now := a.now()
	if now.Before(a.nextFrameAt) {
		return true
	}
	a.nextFrameAt = now.Add(time.Second / time.Duration(a.targetFPS))

	a.render(progress)
	return true
}

func (a *baseAnimation) Interrupt() {
	if a.state != AnimPlaying {
		return
	}
	a.state = AnimInterrupted
	// Jump straight to the terminal frame so no torn frame stays on
	// screen.
	a.render(1.0)
}

func (a *baseAnimation) State() AnimationState { return a.state }

func (a *baseAnimation) Priority() AnimationPriority { return a.priority }

func (a *baseAnimation) Progress() float64 {
	switch {
	case a.state == AnimCompleted:
		return 1.0
	case a.state != AnimPlaying:
		return 0.0
	case a.duration <= 0:
		return 1.0
	}

	elapsed := a.now().Sub(a.startTime)
	if elapsed >= a.duration {
		return 1.0
	}
	return float64(elapsed) / float64(a.duration)
}

// Easing curves. Concrete animations pick one and apply it to the raw
// progress inside their render callback.

func easeLinear(t float64) float64 {
	return t
}

func easeIn(t float64) float64 {
	return t * t
}

func easeOut(t float64) float64 {
	return 1.0 - (1.0-t)*(1.0-t)
}
