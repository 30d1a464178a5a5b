package main

import (
	"log"
	"sort"
	"time"
)

// ManagerState is the derived status of the animation manager.
type ManagerState int

const (
	ManagerIdle   ManagerState = iota // no active animations
	ManagerActive                     // active animations below the cap
	ManagerBusy                       // active set at capacity
)

// AnimationManager admits, preempts and retires animations under a
// concurrency cap. Overflow is parked in a priority-sorted pending queue.
// Single-threaded: every method runs to completion on the display loop.
type AnimationManager struct {
	active  []Animation
	pending []Animation

	state         ManagerState
	maxConcurrent int
	targetFPS     int
	frameInterval time.Duration
	lastTick      time.Time

	// Rolling frame statistics, owned here rather than in package state
	// so two managers never share a timing window.
	frameStart       time.Time
	lastFrameTime    time.Duration
	frameCount       int
	statsWindowStart time.Time
	averageFPS       float64

	now func() time.Time
}

func NewAnimationManager(maxConcurrent, targetFPS int) *AnimationManager {
	m := &AnimationManager{
		state:         ManagerIdle,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
	m.active = make([]Animation, 0, maxConcurrent)
	m.pending = make([]Animation, 0, maxConcurrent*2)
	m.targetFPS = targetFPS
	m.frameInterval = time.Duration(1000/targetFPS) * time.Millisecond
	log.Printf("animMgr: initialized maxConcurrent=%d targetFPS=%d", maxConcurrent, targetFPS)
	return m
}

// AddAnimation admits an animation into the active set, preempts a
// lower-priority incumbent when the set is full, or parks the animation
// in the pending queue. Only a nil animation is rejected.
func (m *AnimationManager) AddAnimation(anim Animation, autoStart bool) bool {
	if anim == nil {
		log.Printf("animMgr: cannot add nil animation")
		return false
	}

	if len(m.active) < m.maxConcurrent {
		m.active = append(m.active, anim)
		if autoStart {
			anim.Start()
		}
		m.state = ManagerActive
		if len(m.active) >= m.maxConcurrent {
			m.state = ManagerBusy
		}
		return true
	}

	// Active set is full: preempt the lowest-priority animation if the
	// newcomer strictly outranks it.
	idx := m.lowestPriorityIndex()
	if anim.Priority() > m.active[idx].Priority() {
		victim := m.active[idx]
		victim.Interrupt()
		m.active = append(m.active[:idx], m.active[idx+1:]...)
		m.active = append(m.active, anim)
		if autoStart {
			anim.Start()
		}
		log.Printf("animMgr: preempted priority=%d for priority=%d", victim.Priority(), anim.Priority())
		return true
	}

	m.pending = append(m.pending, anim)
	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].Priority() > m.pending[j].Priority()
	})
	return true
}

// InterruptAnimations stops every active animation with priority strictly
// below minPriority.
func (m *AnimationManager) InterruptAnimations(minPriority AnimationPriority) {
	kept := m.active[:0]
	for _, anim := range m.active {
		if anim.Priority() < minPriority {
			anim.Interrupt()
			continue
		}
		kept = append(kept, anim)
	}
	m.active = kept

	if len(m.active) == 0 {
		m.state = ManagerIdle
	} else if len(m.active) < m.maxConcurrent {
		m.state = ManagerActive
	}
}

// InterruptAll stops every active animation. The pending queue is left
// untouched.
func (m *AnimationManager) InterruptAll() {
	for _, anim := range m.active {
		anim.Interrupt()
	}
	m.active = m.active[:0]
	m.state = ManagerIdle
}

// Tick advances all active animations once, then promotes pending
// animations into freed capacity. Calls arriving before the frame
// interval has elapsed are no-ops. Returns the active count.
func (m *AnimationManager) Tick() int {
	now := m.now()
	if now.Sub(m.lastTick) < m.frameInterval {
		return len(m.active)
	}
	m.frameStart = now
	m.lastTick = now

	if len(m.active) == 0 {
		m.promotePending()
		switch {
		case len(m.active) == 0:
			m.state = ManagerIdle
		case len(m.active) < m.maxConcurrent:
			m.state = ManagerActive
		default:
			m.state = ManagerBusy
		}
		return 0
	}

	// Finished animations are dropped in place during the sweep.
	kept := m.active[:0]
	for _, anim := range m.active {
		if anim.Tick() {
			kept = append(kept, anim)
		}
	}
	m.active = kept

	// Promotions happen strictly after the sweep, so a just-promoted
	// animation is not ticked until the next invocation.
	m.promotePending()

	switch {
	case len(m.active) == 0:
		m.state = ManagerIdle
	case len(m.active) < m.maxConcurrent:
		m.state = ManagerActive
	default:
		m.state = ManagerBusy
	}

	m.updateFrameStats()
	return len(m.active)
}

// SetTargetFPS changes the tick rate. Values outside 1-60 are ignored.
func (m *AnimationManager) SetTargetFPS(fps int) {
	if fps < 1 || fps > 60 {
		return
	}
	if fps == m.targetFPS {
		return
	}
	m.targetFPS = fps
	m.frameInterval = time.Duration(1000/fps) * time.Millisecond
	log.Printf("animMgr: target FPS changed to %d (interval=%v)", fps, m.frameInterval)
}

// SetMaxConcurrentAnimations changes the concurrency cap, evicting
// lowest-priority animations until the active set fits. Values below 1
// are ignored.
func (m *AnimationManager) SetMaxConcurrentAnimations(maxConcurrent int) {
	if maxConcurrent < 1 {
		return
	}
	m.maxConcurrent = maxConcurrent

	for len(m.active) > maxConcurrent {
		idx := m.lowestPriorityIndex()
		victim := m.active[idx]
		victim.Interrupt()
		m.active = append(m.active[:idx], m.active[idx+1:]...)
	}

	switch {
	case len(m.active) == 0:
		m.state = ManagerIdle
	case len(m.active) < m.maxConcurrent:
		m.state = ManagerActive
	default:
		m.state = ManagerBusy
	}
}

func (m *AnimationManager) State() ManagerState { return m.state }

func (m *AnimationManager) ActiveCount() int { return len(m.active) }

func (m *AnimationManager) PendingCount() int { return len(m.pending) }

func (m *AnimationManager) AverageFPS() float64 { return m.averageFPS }

func (m *AnimationManager) LastFrameTime() time.Duration { return m.lastFrameTime }

// lowestPriorityIndex returns the first active index holding the minimum
// priority. Both preemption and cap-shrink eviction use this, so the
// tie-break rule is uniform: lowest priority, first encountered.
func (m *AnimationManager) lowestPriorityIndex() int {
	idx := 0
	for i, anim := range m.active {
		if anim.Priority() < m.active[idx].Priority() {
			idx = i
		}
	}
	return idx
}

func (m *AnimationManager) promotePending() {
	for len(m.pending) > 0 && len(m.active) < m.maxConcurrent {
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.active = append(m.active, next)
		next.Start()
	}
}

func (m *AnimationManager) updateFrameStats() {
	frameEnd := m.now()
	m.lastFrameTime = frameEnd.Sub(m.frameStart)
	m.frameCount++

	// Average over 100-frame windows.
	if m.frameCount%100 == 0 {
		if !m.statsWindowStart.IsZero() {
			elapsed := frameEnd.Sub(m.statsWindowStart)
			if elapsed > 0 {
				m.averageFPS = 100.0 / elapsed.Seconds()
			}
		}
		m.statsWindowStart = frameEnd
	}
}
