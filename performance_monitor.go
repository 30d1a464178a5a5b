package main

import (
	"log"
	"time"
)

// PerformanceLevel is the degradation ladder the monitor walks when the
// display loop cannot keep up.
type PerformanceLevel int

const (
	PerformanceHigh     PerformanceLevel = iota // full frame rate, all effects
	PerformanceMedium                           // fewer concurrent animations
	PerformanceLow                              // reduced frame rate
	PerformanceCritical                         // animations disabled
)

const (
	perfLevelCheckInterval = 2 * time.Second
	perfLevelVotes         = 3 // consecutive votes needed to move a level
	perfReportInterval     = 10 * time.Second
	perfFPSWindow          = 5 * time.Second
)

// PerformanceMetrics is a snapshot of what the monitor currently
// believes about the display loop.
type PerformanceMetrics struct {
	CurrentFPS       float64          `json:"current_fps"`
	AverageFPS       float64          `json:"average_fps"`
	FrameTime        time.Duration    `json:"frame_time"`
	MaxFrameTime     time.Duration    `json:"max_frame_time"`
	CPUUsage         float64          `json:"cpu_usage"`
	ActiveAnimations int              `json:"active_animations"`
	Level            PerformanceLevel `json:"level"`
}

// PerformanceMonitor measures frame cost, keeps a rolling FPS estimate
// and recommends throttling steps back to the manager's owner. Worse
// measurements never produce a less conservative recommendation: every
// should*/Recommended* answer is a function of the single level field.
type PerformanceMonitor struct {
	lastUpdate     time.Time
	updateInterval time.Duration

	frameCount     int
	fpsWindowStart time.Time
	currentFPS     float64
	averageFPS     float64

	frameStart       time.Time
	frameOpen        bool
	currentFrameTime time.Duration
	maxFrameTime     time.Duration
	totalFrameTime   time.Duration
	cpuUsage         float64

	level          PerformanceLevel
	lastLevelCheck time.Time
	downgradeCount int
	upgradeCount   int
	lastReport     time.Time

	targetFPS              float64
	minAcceptableFPS       float64
	maxAcceptableFrameTime time.Duration

	now func() time.Time
}

func NewPerformanceMonitor(targetFPS float64, updateInterval time.Duration) *PerformanceMonitor {
	m := &PerformanceMonitor{
		updateInterval: updateInterval,
		level:          PerformanceHigh,
		now:            time.Now,
	}
	m.setThresholds(targetFPS)
	m.Reset()
	log.Printf("perfMon: initialized targetFPS=%.1f updateInterval=%v", targetFPS, updateInterval)
	return m
}

// BeginFrame marks the start of one scheduling tick.
func (m *PerformanceMonitor) BeginFrame() {
	m.frameStart = m.now()
	m.frameOpen = true
}

// EndFrame folds the finished tick into the frame-time statistics.
func (m *PerformanceMonitor) EndFrame() {
	if !m.frameOpen {
		return
	}
	m.frameOpen = false

	m.currentFrameTime = m.now().Sub(m.frameStart)
	m.totalFrameTime += m.currentFrameTime
	if m.currentFrameTime > m.maxFrameTime {
		m.maxFrameTime = m.currentFrameTime
	}
	m.frameCount++
}

// Update recomputes the FPS estimate and the performance level. Gated to
// the configured update interval; extra calls are cheap no-ops.
func (m *PerformanceMonitor) Update(activeAnimations int) {
	now := m.now()
	if now.Sub(m.lastUpdate) < m.updateInterval {
		return
	}
	m.lastUpdate = now

	m.updateFPSStats(now)
	m.updateCPUUsage()
	m.updateLevel(now)

	if now.Sub(m.lastReport) > perfReportInterval {
		m.lastReport = now
		log.Printf("perfMon: fps=%.1f avg=%.1f frame=%v cpu=%.0f%% active=%d level=%d",
			m.currentFPS, m.averageFPS, m.currentFrameTime, m.cpuUsage, activeAnimations, m.level)
	}
}

func (m *PerformanceMonitor) Metrics(activeAnimations int) PerformanceMetrics {
	return PerformanceMetrics{
		CurrentFPS:       m.currentFPS,
		AverageFPS:       m.averageFPS,
		FrameTime:        m.currentFrameTime,
		MaxFrameTime:     m.maxFrameTime,
		CPUUsage:         m.cpuUsage,
		ActiveAnimations: activeAnimations,
		Level:            m.level,
	}
}

func (m *PerformanceMonitor) Level() PerformanceLevel { return m.level }

func (m *PerformanceMonitor) ShouldReduceAnimations() bool {
	return m.level >= PerformanceMedium
}

func (m *PerformanceMonitor) ShouldReduceFrameRate() bool {
	return m.level >= PerformanceLow
}

func (m *PerformanceMonitor) ShouldDisableAnimations() bool {
	return m.level >= PerformanceCritical
}

// RecommendedFPS is the frame rate the scheduler should run at for the
// current level.
func (m *PerformanceMonitor) RecommendedFPS() int {
	var fps float64
	switch m.level {
	case PerformanceMedium:
		fps = m.targetFPS * 0.8
	case PerformanceLow:
		fps = m.targetFPS * 0.5
	case PerformanceCritical:
		fps = m.targetFPS * 0.3
	default:
		fps = m.targetFPS
	}
	if fps < 1 {
		return 1
	}
	return int(fps)
}

// RecommendedMaxAnimations is the concurrency cap for the current level.
// Zero at Critical means "none": the caller disables animation outright
// instead of shrinking the cap.
func (m *PerformanceMonitor) RecommendedMaxAnimations() int {
	switch m.level {
	case PerformanceMedium:
		return 2
	case PerformanceLow:
		return 1
	case PerformanceCritical:
		return 0
	default:
		return 3
	}
}

// SetTargetFPS rebases the thresholds. Values outside 1-60 are ignored.
func (m *PerformanceMonitor) SetTargetFPS(fps float64) {
	if fps < 1 || fps > 60 {
		return
	}
	m.setThresholds(fps)
}

func (m *PerformanceMonitor) Reset() {
	now := m.now()
	m.frameCount = 0
	m.fpsWindowStart = now
	m.currentFPS = 0
	m.averageFPS = 0
	m.currentFrameTime = 0
	m.maxFrameTime = 0
	m.totalFrameTime = 0
	m.cpuUsage = 0
	m.level = PerformanceHigh
	m.downgradeCount = 0
	m.upgradeCount = 0
}

func (m *PerformanceMonitor) setThresholds(targetFPS float64) {
	m.targetFPS = targetFPS
	m.minAcceptableFPS = targetFPS * 0.8
	m.maxAcceptableFrameTime = time.Duration(1500.0/targetFPS) * time.Millisecond
}

func (m *PerformanceMonitor) updateFPSStats(now time.Time) {
	elapsed := now.Sub(m.fpsWindowStart)
	if elapsed <= 0 {
		return
	}

	m.currentFPS = float64(m.frameCount) / elapsed.Seconds()

	// Exponential moving average keeps the estimate from twitching on a
	// single slow frame.
	if m.averageFPS == 0 {
		m.averageFPS = m.currentFPS
	} else {
		m.averageFPS = m.averageFPS*0.9 + m.currentFPS*0.1
	}

	if elapsed > perfFPSWindow {
		m.frameCount = 0
		m.totalFrameTime = 0
		m.fpsWindowStart = now
	}
}

func (m *PerformanceMonitor) updateCPUUsage() {
	if m.frameCount == 0 {
		return
	}
	avgFrame := m.totalFrameTime / time.Duration(m.frameCount)
	interval := time.Duration(float64(time.Second) / m.targetFPS)

	usage := float64(avgFrame) / float64(interval) * 100.0
	m.cpuUsage = clampFloat(usage, 0, 100)
}

func (m *PerformanceMonitor) updateLevel(now time.Time) {
	if now.Sub(m.lastLevelCheck) < perfLevelCheckInterval {
		return
	}
	m.lastLevelCheck = now

	downgrade := m.currentFPS < m.minAcceptableFPS ||
		m.currentFrameTime > m.maxAcceptableFrameTime ||
		m.cpuUsage > 80.0

	upgrade := !downgrade &&
		m.currentFPS > m.targetFPS*0.95 &&
		m.currentFrameTime < m.maxAcceptableFrameTime*8/10 &&
		m.cpuUsage < 60.0

	switch {
	case downgrade:
		m.downgradeCount++
		m.upgradeCount = 0
	case upgrade:
		m.upgradeCount++
		m.downgradeCount = 0
	default:
		m.downgradeCount = 0
		m.upgradeCount = 0
	}

	// Require consecutive votes so a single bad sample does not flap the
	// level.
	if m.downgradeCount >= perfLevelVotes && m.level < PerformanceCritical {
		m.level++
		m.downgradeCount = 0
		log.Printf("perfMon: level downgraded to %d", m.level)
	} else if m.upgradeCount >= perfLevelVotes && m.level > PerformanceHigh {
		m.level--
		m.upgradeCount = 0
		log.Printf("perfMon: level upgraded to %d", m.level)
	}
}
