package main

import (
	"image/color"
	"log"
	"sync"
	"time"
)

// Four fixed line slots on the panel.
const (
	lineHistOlder = 0 // second-newest history entry, partially off-screen
	lineHistNewer = 1 // newest history entry
	lineExpr      = 2 // live expression
	lineResult    = 3 // result, large type
)

// lineConfig is the persistent state of one display line.
type lineConfig struct {
	text       string
	textSize   int
	color      color.RGBA
	y          int
	charHeight int
}

// CalcDisplay owns the four-line calculator layout and orchestrates the
// animation manager and performance monitor once per host tick. All
// drawing goes through the Surface; the display never touches the panel
// directly.
type CalcDisplay struct {
	surf         Surface
	screenWidth  int
	screenHeight int

	lines   [4]lineConfig
	history [2]string // history[0] newest, history[1] older

	anims *AnimationManager
	perf  *PerformanceMonitor

	// Last published metrics, guarded by mu; Tick writes, Snapshot reads.
	metrics PerformanceMetrics

	slideDuration time.Duration
	moveDuration  time.Duration

	// Frame pacing for the facade tick: successive ticks are spaced at
	// least one frame interval apart even when the host loop spins
	// faster.
	frameWait  time.Duration
	lastTickAt time.Time

	now   func() time.Time
	sleep func(time.Duration)

	mu sync.Mutex
}

func NewCalcDisplay(surf Surface, width, height int) *CalcDisplay {
	d := &CalcDisplay{
		surf:          surf,
		screenWidth:   width,
		screenHeight:  height,
		anims:         NewAnimationManager(DEFAULT_MAX_CONCURRENT, DEFAULT_TARGET_FPS),
		perf:          NewPerformanceMonitor(float64(DEFAULT_TARGET_FPS), time.Second),
		slideDuration: DEFAULT_SLIDE_DURATION,
		moveDuration:  DEFAULT_MOVE_DURATION,
		frameWait:     time.Second / DEFAULT_TARGET_FPS,
		now:           time.Now,
		sleep:         time.Sleep,
	}
	d.initializeLines()
	d.metrics = d.perf.Metrics(0)
	d.Refresh()
	return d
}

func (d *CalcDisplay) initializeLines() {
	// The top history line sits partially above the visible area so the
	// scroll reads as continuous.
	d.lines[lineHistOlder] = lineConfig{text: d.history[1], textSize: 3, color: CALC_GREY, y: -6, charHeight: 24}
	d.lines[lineHistNewer] = lineConfig{text: d.history[0], textSize: 3, color: CALC_GREY, y: 20, charHeight: 24}
	d.lines[lineExpr] = lineConfig{text: "", textSize: 3, color: CALC_WHITE, y: 46, charHeight: 24}
	d.lines[lineResult] = lineConfig{text: "0", textSize: 8, color: CALC_WHITE, y: 74, charHeight: 64}
}

// PushHistory scrolls the history lines up and installs line as the
// newest entry.
func (d *CalcDisplay) PushHistory(line string) {
	d.mu.Lock()
	d.history[1] = d.history[0]
	d.history[0] = line
	d.lines[lineHistOlder].text = d.history[1]
	d.lines[lineHistNewer].text = d.history[0]
	d.mu.Unlock()
	d.Refresh()
}

func (d *CalcDisplay) SetExpression(expr string) {
	d.mu.Lock()
	d.lines[lineExpr].text = expr
	d.mu.Unlock()
	d.Refresh()
}

func (d *CalcDisplay) SetResult(res string) {
	d.mu.Lock()
	d.lines[lineResult].text = res
	d.mu.Unlock()
	d.Refresh()
}

// Refresh redraws every line from persistent state.
func (d *CalcDisplay) Refresh() {
	d.surf.StartBatch()
	d.surf.FillRect(0, 0, d.screenWidth, d.screenHeight, CALC_BG)
	for i := range d.lines {
		d.drawLine(i)
	}
	d.surf.EndBatch()
}

func (d *CalcDisplay) drawLine(lineIndex int) {
	if lineIndex < 0 || lineIndex >= len(d.lines) {
		return
	}
	line := &d.lines[lineIndex]
	d.surf.SetTextColor(line.color)
	d.surf.SetTextScale(line.textSize)
	d.surf.SetCursor(CALC_PAD_X, line.y)
	d.surf.Print(line.text)
}

// clearLineArea blanks a line's band so an animation can repaint it.
func (d *CalcDisplay) clearLineArea(lineIndex int) {
	if lineIndex < 0 || lineIndex >= len(d.lines) {
		return
	}
	line := &d.lines[lineIndex]
	d.surf.FillRect(CALC_PAD_X, line.y, d.screenWidth-CALC_PAD_X*2, line.charHeight, CALC_BG)
}

// charWidth reports the pixel width of one character cell at the given
// text scale. Fixed-width font: base cell width times the multiplier.
func (d *CalcDisplay) charWidth(textSize int) int {
	return BASE_CHAR_WIDTH * textSize
}

// AnimateCharInsertOrDelete animates a trailing-character change on the
// result line: insertion slides the new character in from the right
// edge, deletion slides the removed character out to it.
func (d *CalcDisplay) AnimateCharInsertOrDelete(oldText, newText string) {
	insert := len(newText) > len(oldText)
	anim := newCharSlideAnim(d, oldText, newText, insert, lineResult, d.slideDuration)
	if !d.anims.AddAnimation(anim, true) {
		// Display stays in its last consistent state.
		log.Printf("calcDisplay: char slide animation rejected")
	}
}

// AnimateResultToExpression animates the result value shrinking and
// migrating up into the expression line.
func (d *CalcDisplay) AnimateResultToExpression(inputText, finalExpr string) {
	anim := newMoveToExprAnim(d, inputText, finalExpr, d.moveDuration)
	if !d.anims.AddAnimation(anim, true) {
		log.Printf("calcDisplay: move-to-expression animation rejected")
	}
}

func (d *CalcDisplay) InterruptCurrentAnimations() {
	d.anims.InterruptAll()
}

func (d *CalcDisplay) HasActiveAnimation() bool {
	return d.anims.ActiveCount() > 0
}

func (d *CalcDisplay) ActiveAnimationCount() int {
	return d.anims.ActiveCount()
}

// Tick runs one display cycle: pace the frame, advance animations, apply
// the monitor's throttling recommendations, and flush the surface.
func (d *CalcDisplay) Tick() {
	d.paceFrame()

	// The bracket measures scheduling work only; the pacing wait above is
	// idle time, not frame cost.
	d.perf.BeginFrame()
	active := d.anims.Tick()
	d.perf.EndFrame()

	if d.perf.ShouldDisableAnimations() {
		if active > 0 {
			d.anims.InterruptAll()
			active = 0
		}
	} else {
		if d.perf.ShouldReduceFrameRate() {
			d.anims.SetTargetFPS(d.perf.RecommendedFPS())
		}
		if d.perf.ShouldReduceAnimations() {
			if n := d.perf.RecommendedMaxAnimations(); n >= 1 {
				d.anims.SetMaxConcurrentAnimations(n)
			}
		}
	}

	d.perf.Update(active)

	// Publish a metrics copy for readers outside the display loop; the
	// monitor and manager themselves are only ever touched from here.
	d.mu.Lock()
	d.metrics = d.perf.Metrics(d.anims.ActiveCount())
	d.mu.Unlock()

	if err := d.surf.Flush(); err != nil {
		log.Printf("calcDisplay: flush failed: %v", err)
	}
}

func (d *CalcDisplay) paceFrame() {
	now := d.now()
	if !d.lastTickAt.IsZero() {
		if elapsed := now.Sub(d.lastTickAt); elapsed < d.frameWait {
			d.sleep(d.frameWait - elapsed)
			now = d.now()
		}
	}
	d.lastTickAt = now
}

// Snapshot returns the metrics published by the last Tick. Safe to call
// from other goroutines (the HTTP status handler).
func (d *CalcDisplay) Snapshot() PerformanceMetrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metrics
}
