package main

import "time"

// moveToExprAnim animates the result line's value shrinking and moving
// up into the expression line. The operator suffix (the part of the
// final expression beyond the moving text) appears once the animation is
// half done; the reset result "0" appears at 30%. On completion both
// lines' persistent text is committed.
type moveToExprAnim struct {
	baseAnimation
	display *CalcDisplay

	inputText      string
	finalExpr      string
	operatorSuffix string

	startY, endY       int
	startSize, endSize int

	currentY    int
	currentSize int
}

func newMoveToExprAnim(d *CalcDisplay, inputText, finalExpr string, duration time.Duration) *moveToExprAnim {
	a := &moveToExprAnim{
		display:   d,
		inputText: inputText,
		finalExpr: finalExpr,
	}
	a.baseAnimation = newBaseAnimation(duration, PriorityNormal, 15)
	a.now = d.now
	a.render = a.renderFrame
	return a
}

func (a *moveToExprAnim) Start() {
	a.extractOperatorSuffix()
	a.calculateParams()
	a.currentY = a.startY
	a.currentSize = a.startSize
	a.baseAnimation.Start()
}

func (a *moveToExprAnim) calculateParams() {
	result := &a.display.lines[lineResult]
	expr := &a.display.lines[lineExpr]

	a.startY = result.y
	a.startSize = result.textSize
	a.endY = expr.y
	a.endSize = expr.textSize
}

func (a *moveToExprAnim) extractOperatorSuffix() {
	if len(a.finalExpr) > len(a.inputText) {
		a.operatorSuffix = a.finalExpr[len(a.inputText):]
	}
}

func (a *moveToExprAnim) renderFrame(progress float64) {
	eased := easeOut(progress)
	a.currentY = interpolate(a.startY, a.endY, eased)
	a.currentSize = interpolate(a.startSize, a.endSize, eased)
	if a.currentSize < 1 {
		a.currentSize = 1
	}

	surf := a.display.surf
	expr := &a.display.lines[lineExpr]
	result := &a.display.lines[lineResult]

	surf.StartBatch()

	// Clear both bands the moving text crosses.
	surf.FillRect(CALC_PAD_X, expr.y, a.display.screenWidth-CALC_PAD_X*2, expr.charHeight, CALC_BG)
	surf.FillRect(CALC_PAD_X, result.y, a.display.screenWidth-CALC_PAD_X*2, result.charHeight, CALC_BG)

	// The migrating value, shrinking as it rises.
	surf.SetTextColor(result.color)
	surf.SetTextScale(a.currentSize)
	surf.SetCursor(CALC_PAD_X, a.currentY)
	surf.Print(a.inputText)

	// Reveal the trailing operator once the move is half done.
	if len(a.operatorSuffix) > 0 && progress > 0.5 {
		surf.SetTextColor(expr.color)
		surf.SetTextScale(expr.textSize)
		operatorX := CALC_PAD_X + a.display.charWidth(expr.textSize)*len(a.inputText)
		surf.SetCursor(operatorX, expr.y)
		surf.Print(a.operatorSuffix)
	}

	// Reveal the reset result early so the line never looks blank.
	if progress > 0.3 {
		surf.SetTextColor(result.color)
		surf.SetTextScale(result.textSize)
		surf.SetCursor(CALC_PAD_X, result.y)
		surf.Print("0")
	}

	surf.EndBatch()

	if progress >= 1.0 {
		a.display.lines[lineExpr].text = a.finalExpr
		a.display.lines[lineResult].text = "0"
	}
}

func interpolate(start, end int, progress float64) int {
	return start + int(float64(end-start)*progress)
}
