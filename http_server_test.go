package main

import (
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) (*fiber.App, chan rune) {
	t.Helper()
	clk := newManualClock()
	surf := newFrameSurface(CALC_LCD_WIDTH, CALC_LCD_HEIGHT, nil)
	d := NewCalcDisplay(surf, CALC_LCD_WIDTH, CALC_LCD_HEIGHT)
	d.now = clk.now
	keys := make(chan rune, 4)
	return newHTTPApp(d, surf, keys), keys
}

func TestHTTPFrameEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/frame", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != CALC_LCD_WIDTH || bounds.Dy() != CALC_LCD_HEIGHT {
		t.Errorf("frame size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), CALC_LCD_WIDTH, CALC_LCD_HEIGHT)
	}
}

func TestHTTPStatusEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/status", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var metrics PerformanceMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		t.Fatalf("body is not metrics JSON: %v", err)
	}
	if metrics.Level < PerformanceHigh || metrics.Level > PerformanceCritical {
		t.Errorf("level = %d out of range", metrics.Level)
	}
}

func TestHTTPInputEndpoint(t *testing.T) {
	app, keys := newTestApp(t)

	req := httptest.NewRequest("POST", "/input", strings.NewReader(`{"keys":"12+"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(keys) != 3 {
		t.Fatalf("queued keys = %d, want 3", len(keys))
	}
	for _, want := range []rune{'1', '2', '+'} {
		if got := <-keys; got != want {
			t.Errorf("queued key = %q, want %q", got, want)
		}
	}
}

func TestHTTPInputRejectsBadJSON(t *testing.T) {
	app, keys := newTestApp(t)

	req := httptest.NewRequest("POST", "/input", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(keys) != 0 {
		t.Errorf("bad request queued %d keys", len(keys))
	}
}

func TestHTTPInputQueueFull(t *testing.T) {
	app, keys := newTestApp(t)

	req := httptest.NewRequest("POST", "/input", strings.NewReader(`{"keys":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if len(keys) != cap(keys) {
		t.Errorf("queued keys = %d, want channel filled to %d", len(keys), cap(keys))
	}
}
