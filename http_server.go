package main

import (
	"bytes"
	"image/png"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// newHTTPApp builds the debug/control API:
//
//	GET  /frame  - current backbuffer as PNG
//	GET  /status - performance metrics as JSON
//	POST /input  - inject keypad characters
func newHTTPApp(display *CalcDisplay, surf *frameSurface, keys chan<- rune) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/frame", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := png.Encode(&buf, surf.snapshot()); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to encode image")
		}
		c.Set("Content-Type", "image/png")
		c.Set("Content-Length", strconv.Itoa(buf.Len()))
		return c.Send(buf.Bytes())
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(display.Snapshot())
	})

	app.Post("/input", func(c *fiber.Ctx) error {
		var body struct {
			Keys string `json:"keys"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON")
		}
		for _, key := range body.Keys {
			select {
			case keys <- key:
			default:
				return c.Status(fiber.StatusServiceUnavailable).SendString("Input queue full")
			}
		}
		return c.SendString("Keys queued")
	})

	return app
}

func httpServer(port string, display *CalcDisplay, surf *frameSurface, keys chan<- rune) {
	app := newHTTPApp(display, surf, keys)
	log.Println("Starting HTTP server on", port)
	if err := app.Listen(port); err != nil {
		log.Printf("http: server stopped: %v", err)
	}
}
