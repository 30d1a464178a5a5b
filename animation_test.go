package main

import (
	"testing"
	"time"
)

// manualClock drives time-dependent code deterministically.
type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time {
	return c.t
}

func (c *manualClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// fakeAnim records render calls for scheduling tests.
type fakeAnim struct {
	baseAnimation
	renders      int
	lastProgress float64
}

func newFakeAnim(duration time.Duration, priority AnimationPriority, clk *manualClock) *fakeAnim {
	a := &fakeAnim{}
	a.baseAnimation = newBaseAnimation(duration, priority, 60)
	a.now = clk.now
	a.render = func(p float64) {
		a.renders++
		a.lastProgress = p
	}
	return a
}

func TestAnimationLifecycle(t *testing.T) {
	clk := newManualClock()
	a := newFakeAnim(100*time.Millisecond, PriorityNormal, clk)

	if a.State() != AnimIdle {
		t.Errorf("new animation state = %d, want AnimIdle", a.State())
	}
	if a.Progress() != 0 {
		t.Errorf("idle progress = %f, want 0", a.Progress())
	}

	a.Start()
	if a.State() != AnimPlaying {
		t.Errorf("after Start state = %d, want AnimPlaying", a.State())
	}

	clk.advance(50 * time.Millisecond)
	if !a.Tick() {
		t.Error("mid-animation Tick returned false")
	}
	if a.renders != 1 {
		t.Errorf("renders = %d, want 1", a.renders)
	}
	if a.lastProgress < 0.49 || a.lastProgress > 0.51 {
		t.Errorf("mid progress = %f, want ~0.5", a.lastProgress)
	}

	clk.advance(60 * time.Millisecond)
	if a.Tick() {
		t.Error("Tick past duration returned true")
	}
	if a.State() != AnimCompleted {
		t.Errorf("final state = %d, want AnimCompleted", a.State())
	}
	if a.lastProgress != 1.0 {
		t.Errorf("terminal frame progress = %f, want 1.0", a.lastProgress)
	}
	if a.Progress() != 1.0 {
		t.Errorf("completed Progress = %f, want 1.0", a.Progress())
	}
}

func TestAnimationZeroDurationCompletesImmediately(t *testing.T) {
	clk := newManualClock()
	a := newFakeAnim(0, PriorityNormal, clk)
	a.Start()

	if a.Progress() != 1.0 {
		t.Errorf("zero-duration progress = %f, want 1.0", a.Progress())
	}
	if a.Tick() {
		t.Error("zero-duration first Tick returned true")
	}
	if a.State() != AnimCompleted {
		t.Errorf("state = %d, want AnimCompleted", a.State())
	}
	if a.renders != 1 || a.lastProgress != 1.0 {
		t.Errorf("renders=%d lastProgress=%f, want one terminal frame", a.renders, a.lastProgress)
	}
}

func TestAnimationInterrupt(t *testing.T) {
	clk := newManualClock()
	a := newFakeAnim(time.Second, PriorityNormal, clk)
	a.Start()
	clk.advance(100 * time.Millisecond)

	a.Interrupt()
	if a.State() != AnimInterrupted {
		t.Errorf("state = %d, want AnimInterrupted", a.State())
	}
	if a.renders != 1 || a.lastProgress != 1.0 {
		t.Errorf("interrupt rendered %d frames at %f, want one terminal frame", a.renders, a.lastProgress)
	}
	if a.Progress() != 0 {
		t.Errorf("interrupted Progress = %f, want 0", a.Progress())
	}

	// Interrupt is idempotent.
	a.Interrupt()
	if a.renders != 1 {
		t.Errorf("second Interrupt rendered again, renders = %d", a.renders)
	}
	if a.Tick() {
		t.Error("Tick after interrupt returned true")
	}
}

func TestAnimationInterruptBeforeStart(t *testing.T) {
	clk := newManualClock()
	a := newFakeAnim(time.Second, PriorityNormal, clk)

	a.Interrupt()
	if a.State() != AnimIdle {
		t.Errorf("state = %d, want AnimIdle", a.State())
	}
	if a.renders != 0 {
		t.Errorf("renders = %d, want 0", a.renders)
	}
}

func TestAnimationSelfPacingSkipsFrames(t *testing.T) {
	clk := newManualClock()
	a := newFakeAnim(time.Second, PriorityNormal, clk)
	a.targetFPS = 10 // one frame per 100ms
	a.Start()

	clk.advance(10 * time.Millisecond)
	if !a.Tick() {
		t.Fatal("first Tick returned false")
	}
	if a.renders != 1 {
		t.Fatalf("renders = %d, want 1", a.renders)
	}

	// Well inside the frame interval: still playing, nothing drawn.
	clk.advance(10 * time.Millisecond)
	if !a.Tick() {
		t.Error("paced Tick returned false")
	}
	if a.renders != 1 {
		t.Errorf("renders = %d after paced tick, want 1", a.renders)
	}

	clk.advance(100 * time.Millisecond)
	if !a.Tick() {
		t.Error("due Tick returned false")
	}
	if a.renders != 2 {
		t.Errorf("renders = %d after due tick, want 2", a.renders)
	}
}

func TestEasing(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   func(float64) float64
	}{
		{"linear", easeLinear},
		{"in", easeIn},
		{"out", easeOut},
	} {
		if got := tc.fn(0); got != 0 {
			t.Errorf("%s(0) = %f, want 0", tc.name, got)
		}
		if got := tc.fn(1); got != 1 {
			t.Errorf("%s(1) = %f, want 1", tc.name, got)
		}
	}
	if easeOut(0.5) <= 0.5 {
		t.Errorf("easeOut(0.5) = %f, want > 0.5", easeOut(0.5))
	}
	if easeIn(0.5) >= 0.5 {
		t.Errorf("easeIn(0.5) = %f, want < 0.5", easeIn(0.5))
	}
}
