package main

import (
	"encoding/json"
	"image"
	"log"
	"os"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Config is the on-disk configuration. Missing fields keep their
// defaults; invalid numeric values are snapped back.
type Config struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	TargetFPS       int    `json:"target_fps"`
	MaxConcurrent   int    `json:"max_concurrent_animations"`
	SlideDurationMs int    `json:"slide_duration_ms"`
	MoveDurationMs  int    `json:"move_duration_ms"`
	SPIPort         string `json:"spi_port"`
	HTTPPort        string `json:"http_port"`
	InputDevice     string `json:"input_device"`
	FontPath        string `json:"font_path"`
	Backlight       int    `json:"backlight"`
	Headless        bool   `json:"headless"`
	ShowFrame       bool   `json:"show_frame"`
	ShowPerfBadge   bool   `json:"show_perf_badge"`
}

func defaultConfig() Config {
	return Config{
		Width:           CALC_LCD_WIDTH,
		Height:          CALC_LCD_HEIGHT,
		TargetFPS:       DEFAULT_TARGET_FPS,
		MaxConcurrent:   DEFAULT_MAX_CONCURRENT,
		SlideDurationMs: 200,
		MoveDurationMs:  250,
		SPIPort:         "",
		HTTPPort:        ":8080",
		InputDevice:     "calcpad-keypad",
		Backlight:       100,
		ShowPerfBadge:   true,
	}
}

// loadConfig reads and unmarshals the config file on top of the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Width < 1 {
		c.Width = CALC_LCD_WIDTH
	}
	if c.Height < 1 {
		c.Height = CALC_LCD_HEIGHT
	}
	if c.TargetFPS < 1 || c.TargetFPS > 60 {
		c.TargetFPS = DEFAULT_TARGET_FPS
	}
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = DEFAULT_MAX_CONCURRENT
	}
	if c.SlideDurationMs < 1 {
		c.SlideDurationMs = 200
	}
	if c.MoveDurationMs < 1 {
		c.MoveDurationMs = 250
	}
	if c.Backlight < 0 {
		c.Backlight = 0
	}
	if c.Backlight > 100 {
		c.Backlight = 100
	}
}

var (
	fontPath  string
	fontMu    sync.Mutex
	fontFaces = map[int]font.Face{}
)

// getFontFace returns a face sized for the given text scale, loading the
// configured font once per scale. Falls back to the builtin bitmap face
// when no font file is usable.
func getFontFace(scale int) (font.Face, int, error) {
	if scale < 1 {
		scale = 1
	}

	fontMu.Lock()
	defer fontMu.Unlock()

	face, ok := fontFaces[scale]
	if !ok {
		face = buildFontFace(scale)
		fontFaces[scale] = face
	}

	metrics := face.Metrics()
	fontHeight := metrics.Ascent.Round() + metrics.Descent.Round()
	return face, fontHeight, nil
}

func buildFontFace(scale int) font.Face {
	if fontPath != "" {
		fontBytes, err := os.ReadFile(fontPath)
		if err == nil {
			ttfFont, err := opentype.Parse(fontBytes)
			if err == nil {
				face, err := opentype.NewFace(ttfFont, &opentype.FaceOptions{
					Size:    float64(BASE_CHAR_HEIGHT * scale),
					DPI:     72,
					Hinting: font.HintingFull,
				})
				if err == nil {
					return face
				}
			}
		}
		log.Printf("fonts: cannot load %s, using builtin face for scale %d", fontPath, scale)
	}
	return basicfont.Face7x13
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clearFrame(frame *image.RGBA, width int, height int) {
	for i := 0; i < width*height*4; i += 4 {
		frame.Pix[i] = 0     // R
		frame.Pix[i+1] = 0   // G
		frame.Pix[i+2] = 0   // B
		frame.Pix[i+3] = 255 // A (opaque black)
	}
}

// setBacklight writes a 0-100 brightness to the sysfs backlight node.
func setBacklight(brightness int) {
	switch {
	case brightness < 0:
		brightness = 0
	case brightness > 100:
		brightness = 100
	}

	if err := os.WriteFile("/sys/class/backlight/backlight/brightness", []byte(strconv.Itoa(brightness)), 0644); err != nil {
		log.Printf("backlight write error: %v", err)
	}
}
