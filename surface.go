package main

import (
	"image"
	"image/color"
	"log"
	"sync"
)

// Surface is the drawing surface the calculator display renders onto.
// StartBatch/EndBatch bracket a group of draw calls so the panel update
// can be deferred until the group is complete; Flush pushes buffered
// pixels out to the panel.
type Surface interface {
	StartBatch()
	EndBatch()
	FillRect(x, y, w, h int, c color.RGBA)
	SetTextColor(c color.RGBA)
	SetTextScale(scale int)
	SetCursor(x, y int)
	Print(text string)
	Flush() error
}

// PanelPusher is the slice of the panel driver the surface needs: one
// rectangle-of-pixels upload. gc9307.Device satisfies it.
type PanelPusher interface {
	FillRectangleWithImage(x, y, width, height int16, img *image.RGBA) error
}

// frameSurface draws into an image.RGBA backbuffer and sends the whole
// frame to the panel on Flush. With a nil panel it runs headless, which
// is how the tests and the HTTP frame endpoint use it.
type frameSurface struct {
	frame  *image.RGBA
	panel  PanelPusher
	width  int
	height int

	penColor color.RGBA
	penScale int
	curX     int
	curY     int

	batching bool
	pending  bool // draws seen inside the open batch
	dirty    bool // frame differs from what the panel last saw

	// Called on the backbuffer right before a push; main installs the
	// panel frame and performance badge here.
	decorate func(*image.RGBA)

	mu sync.RWMutex
}

func newFrameSurface(width, height int, panel PanelPusher) *frameSurface {
	s := &frameSurface{
		frame:    image.NewRGBA(image.Rect(0, 0, width, height)),
		panel:    panel,
		width:    width,
		height:   height,
		penColor: CALC_WHITE,
		penScale: 1,
	}
	clearFrame(s.frame, width, height)
	return s
}

// StartBatch opens a group of draws; the frame does not become
// flushable until EndBatch closes it, so a Flush landing mid-batch
// cannot push a torn frame.
func (s *frameSurface) StartBatch() {
	s.batching = true
}

func (s *frameSurface) EndBatch() {
	s.batching = false
	if s.pending {
		s.pending = false
		s.dirty = true
	}
}

func (s *frameSurface) markDirty() {
	if s.batching {
		s.pending = true
	} else {
		s.dirty = true
	}
}

func (s *frameSurface) FillRect(x, y, w, h int, c color.RGBA) {
	s.mu.Lock()
	drawRect(s.frame, x, y, w, h, c)
	s.markDirty()
	s.mu.Unlock()
}

func (s *frameSurface) SetTextColor(c color.RGBA) {
	s.penColor = c
}

func (s *frameSurface) SetTextScale(scale int) {
	if scale >= 1 {
		s.penScale = scale
	}
}

func (s *frameSurface) SetCursor(x, y int) {
	s.curX = x
	s.curY = y
}

func (s *frameSurface) Print(text string) {
	if len(text) == 0 {
		return
	}
	face, _, err := getFontFace(s.penScale)
	if err != nil {
		log.Printf("surface: no font face for scale %d: %v", s.penScale, err)
		return
	}

	s.mu.Lock()
	drawText(s.frame, text, s.curX, s.curY, face, s.penColor, false)
	s.markDirty()
	s.mu.Unlock()

	// Advance by the fixed cell width so the cursor lands where the
	// layout math expects, whatever the face actually rendered.
	s.curX += BASE_CHAR_WIDTH * s.penScale * len(text)
}

func (s *frameSurface) Flush() error {
	if !s.dirty {
		return nil
	}
	s.dirty = false

	s.mu.Lock()
	if s.decorate != nil {
		s.decorate(s.frame)
	}
	s.mu.Unlock()

	if s.panel == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panel.FillRectangleWithImage(0, 0, int16(s.width), int16(s.height), s.frame)
}

// snapshot copies the backbuffer for readers outside the display loop
// (the HTTP /frame handler).
func (s *frameSurface) snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := image.NewRGBA(s.frame.Bounds())
	copy(out.Pix, s.frame.Pix)
	return out
}
