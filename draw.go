package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	svg "github.com/ajstarks/svgo"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

var svgCache = make(map[string]*image.RGBA)

//---------------- Drawing Functions ----------------

// drawText draws a string onto an *image.RGBA at (x,y) using the specified font face and color.
func drawText(img *image.RGBA, text string, posX, posY int, face font.Face, clr color.Color, center bool) (finishX, finishY int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: face,
	}

	metrics := face.Metrics()

	var x, y int
	if center {
		textWidth := d.MeasureString(text).Round()
		x = posX - textWidth/2
	} else {
		x = posX
	}
	y = posY + metrics.Ascent.Round()

	d.Dot = fixed.P(x, y)
	d.DrawString(text)

	textWidth := d.MeasureString(text).Round()
	textHeight := metrics.Ascent.Round() + metrics.Descent.Round()

	finishX = x + textWidth
	if center {
		finishY = (y - metrics.Ascent.Round()) + textHeight
	} else {
		finishY = posY + textHeight
	}

	return
}

func drawRect(img *image.RGBA, x0, y0, width, height int, c color.Color) {
	r, g, b, a := c.RGBA()
	col := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}

	for x := x0; x < x0+width; x++ {
		for y := y0; y < y0+height; y++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// copyImageToImageAt copies img onto frame at (x0,y0), alpha-blending
// partially transparent pixels.
func copyImageToImageAt(frame *image.RGBA, img *image.RGBA, x0, y0 int) error {
	if frame == nil || img == nil {
		return fmt.Errorf("nil image provided")
	}
	if x0 < 0 || y0 < 0 {
		return fmt.Errorf("x, y is negative: %d,%d", x0, y0)
	}

	targetWidth := img.Bounds().Dx()
	targetHeight := img.Bounds().Dy()

	for y := 0; y < targetHeight; y++ {
		for x := 0; x < targetWidth; x++ {
			sample := img.RGBAAt(x, y)
			if sample.A == 0 {
				continue
			}

			if sample.A == 255 {
				frame.SetRGBA(x0+x, y0+y, sample)
				continue
			}

			dst := frame.RGBAAt(x0+x, y0+y)
			a := uint16(sample.A)
			invA := uint16(255 - sample.A)
			frame.SetRGBA(x0+x, y0+y, color.RGBA{
				R: uint8((uint16(sample.R)*a + uint16(dst.R)*invA) / 255),
				G: uint8((uint16(sample.G)*a + uint16(dst.G)*invA) / 255),
				B: uint8((uint16(sample.B)*a + uint16(dst.B)*invA) / 255),
				A: uint8(uint16(sample.A) + (uint16(dst.A)*invA)/255),
			})
		}
	}

	return nil
}

func drawRoundedRect(gc *draw2dimg.GraphicContext, x, y, w, h, r float64) {
	gc.MoveTo(x+r, y)
	gc.LineTo(x+w-r, y)
	gc.ArcTo(x+w-r, y+r, r, r, -90, 90)
	gc.LineTo(x+w, y+h-r)
	gc.ArcTo(x+w-r, y+h-r, r, r, 0, 90)
	gc.LineTo(x+r, y+h)
	gc.ArcTo(x+r, y+h-r, r, r, 90, 90)
	gc.LineTo(x, y+r)
	gc.ArcTo(x+r, y+r, r, r, 180, 90)
	gc.Close()
}

// drawPanelFrame strokes a rounded border around the display area.
func drawPanelFrame(frame *image.RGBA, w, h int) {
	gc := draw2dimg.NewGraphicContext(frame)
	gc.SetStrokeColor(CALC_GREY)
	gc.SetLineWidth(1)
	drawRoundedRect(gc, 1, 1, float64(w-2), float64(h-2), 4)
	gc.Stroke()
}

// drawPerfBadge renders the performance-level indicator in a corner of
// the frame: four dots, one extinguished per degradation step. One SVG
// per lit-count is generated to /tmp and the rasterized form is cached.
func drawPerfBadge(frame *image.RGBA, x0, y0 int, level PerformanceLevel) {
	const (
		numDots  = 4
		dotSize  = 4
		dotSpace = 2
	)
	lit := numDots - int(level)
	fn := "/tmp/calcpad-perf-" + strconv.Itoa(lit) + ".svg"

	if _, err := os.Stat(fn); err != nil {
		var buf bytes.Buffer
		canvas := svg.New(&buf)
		canvas.Start(numDots*dotSize+(numDots-1)*dotSpace, dotSize)
		for i := 0; i < numDots; i++ {
			fill := "fill:white"
			if i >= lit {
				fill = fmt.Sprintf("fill:#%02X%02X%02X", CALC_GREY.R, CALC_GREY.G, CALC_GREY.B)
			}
			canvas.Roundrect(i*(dotSize+dotSpace), 0, dotSize, dotSize, 2, 2, fill)
		}
		canvas.End()

		if err := os.WriteFile(fn, buf.Bytes(), 0644); err != nil {
			log.Printf("draw: perf badge write error: %v", err)
			return
		}
	}

	img, err := loadSVG(fn)
	if err != nil {
		log.Printf("draw: perf badge load error: %v", err)
		return
	}
	copyImageToImageAt(frame, img, x0, y0)
}

// loadSVG rasterizes an SVG file at its intrinsic size, caching the result.
func loadSVG(path string) (*image.RGBA, error) {
	if img, ok := svgCache[path]; ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg %s has no intrinsic size", path)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	svgCache[path] = rgba
	return rgba, nil
}
