package main

import "time"

// charSlideAnim animates a trailing-character edit on a single line.
// Insert mode slides the new character in from the screen's right edge
// to its final column; delete mode slides the removed character out the
// same way. On completion the line's persistent text becomes newText.
type charSlideAnim struct {
	baseAnimation
	display *CalcDisplay

	prevText   string
	newText    string
	insertMode bool
	lineIndex  int

	charW    int
	startX   int
	endX     int
	currentX int
}

func newCharSlideAnim(d *CalcDisplay, prevText, newText string, insertMode bool, lineIndex int, duration time.Duration) *charSlideAnim {
	a := &charSlideAnim{
		display:    d,
		prevText:   prevText,
		newText:    newText,
		insertMode: insertMode,
		lineIndex:  lineIndex,
	}
	// Lower frame rate than the manager's keeps flicker down on the
	// narrow band being repainted.
	a.baseAnimation = newBaseAnimation(duration, PriorityNormal, 12)
	a.now = d.now
	a.render = a.renderFrame
	return a
}

func (a *charSlideAnim) Start() {
	a.calculateParams()
	a.display.clearLineArea(a.lineIndex)
	a.baseAnimation.Start()
}

func (a *charSlideAnim) calculateParams() {
	line := &a.display.lines[a.lineIndex]
	a.charW = a.display.charWidth(line.textSize)

	if a.insertMode {
		// New character enters from the right edge into its column.
		a.startX = a.display.screenWidth
		a.endX = CALC_PAD_X + a.charW*len(a.prevText)
	} else {
		// Removed character exits from its column to the right edge.
		a.startX = CALC_PAD_X + a.charW*len(a.newText)
		a.endX = a.display.screenWidth
	}
	a.currentX = a.startX
}

func (a *charSlideAnim) renderFrame(progress float64) {
	eased := easeOut(progress)
	a.currentX = a.startX + int(float64(a.endX-a.startX)*eased)

	surf := a.display.surf
	line := &a.display.lines[a.lineIndex]

	// One batch per frame: clear, static text, moving character.
	surf.StartBatch()

	surf.FillRect(CALC_PAD_X, line.y, a.display.screenWidth-CALC_PAD_X*2, line.charHeight, CALC_BG)

	if a.insertMode {
		if len(a.prevText) > 0 {
			a.drawStaticText(a.prevText)
		}
		if len(a.newText) > len(a.prevText) {
			a.drawMovingChar(a.newText[len(a.prevText)], a.currentX)
		}
	} else {
		if len(a.newText) > 0 {
			a.drawStaticText(a.newText)
		}
		if len(a.prevText) > len(a.newText) {
			a.drawMovingChar(a.prevText[len(a.newText)], a.currentX)
		}
	}

	surf.EndBatch()

	if progress >= 1.0 {
		a.display.lines[a.lineIndex].text = a.newText
	}
}

func (a *charSlideAnim) drawStaticText(text string) {
	line := &a.display.lines[a.lineIndex]
	surf := a.display.surf
	surf.SetTextColor(line.color)
	surf.SetTextScale(line.textSize)
	surf.SetCursor(CALC_PAD_X, line.y)
	surf.Print(text)
}

func (a *charSlideAnim) drawMovingChar(ch byte, x int) {
	line := &a.display.lines[a.lineIndex]
	surf := a.display.surf
	surf.SetTextColor(line.color)
	surf.SetTextScale(line.textSize)
	surf.SetCursor(x, line.y)
	surf.Print(string(ch))
}
