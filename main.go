package main

import (
	"image"
	"image/color"
	"log"
	"time"

	gc9307 "github.com/photonicat/periph.io-gc9307"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	RST_PIN = "GPIO122"
	DC_PIN  = "GPIO121"
	BL_PIN  = "GPIO117"

	CALC_LCD_WIDTH  = 240
	CALC_LCD_HEIGHT = 135
	CALC_X_OFFSET   = 40
	CALC_Y_OFFSET   = 53

	// Left margin and the fixed character cell the layout math assumes.
	CALC_PAD_X       = 5
	BASE_CHAR_WIDTH  = 6
	BASE_CHAR_HEIGHT = 8

	DEFAULT_TARGET_FPS     = 20
	DEFAULT_MAX_CONCURRENT = 3
	DEFAULT_SLIDE_DURATION = 200 * time.Millisecond
	DEFAULT_MOVE_DURATION  = 250 * time.Millisecond
)

var (
	CALC_WHITE = color.RGBA{255, 255, 255, 255}
	CALC_GREY  = color.RGBA{66, 65, 66, 255} // history grey, 0x4208 in RGB565
	CALC_BG    = color.RGBA{0, 0, 0, 255}
)

//---------------- Main ----------------

func main() {
	cfg, err := loadConfig("config.json")
	if err != nil {
		log.Printf("main: config not loaded (%v), using defaults", err)
	}
	fontPath = cfg.FontPath

	var panel PanelPusher
	if !cfg.Headless {
		// Initialize board.
		if _, err := host.Init(); err != nil {
			log.Fatal(err)
		}

		// Open SPI.
		spiPort, err := spireg.Open(cfg.SPIPort)
		if err != nil {
			log.Fatal(err)
		}
		defer spiPort.Close()

		conn, err := spiPort.Connect(100000*physic.KiloHertz, spi.Mode0, 8)
		if err != nil {
			log.Fatal(err)
		}

		// Setup display.
		device := gc9307.New(conn,
			gpioreg.ByName(RST_PIN),
			gpioreg.ByName(DC_PIN),
			gpioreg.ByName("GPIO0"), // placeholder for CS if unused
			gpioreg.ByName(BL_PIN))
		device.Configure(gc9307.Config{
			Width:        int16(cfg.Width),
			Height:       int16(cfg.Height),
			Rotation:     gc9307.NO_ROTATION,
			RowOffset:    CALC_Y_OFFSET,
			ColumnOffset: CALC_X_OFFSET,
			FrameRate:    gc9307.FRAMERATE_60,
			VSyncLines:   gc9307.MAX_VSYNC_SCANLINES,
			UseCS:        false,
		})
		device.EnableBacklight(true)
		setBacklight(cfg.Backlight)
		panel = &device
	}

	surf := newFrameSurface(cfg.Width, cfg.Height, panel)
	display := NewCalcDisplay(surf, cfg.Width, cfg.Height)
	display.anims.SetTargetFPS(cfg.TargetFPS)
	display.anims.SetMaxConcurrentAnimations(cfg.MaxConcurrent)
	display.perf.SetTargetFPS(float64(cfg.TargetFPS))
	display.frameWait = time.Second / time.Duration(cfg.TargetFPS)
	display.slideDuration = time.Duration(cfg.SlideDurationMs) * time.Millisecond
	display.moveDuration = time.Duration(cfg.MoveDurationMs) * time.Millisecond

	if cfg.ShowFrame || cfg.ShowPerfBadge {
		surf.decorate = func(frame *image.RGBA) {
			if cfg.ShowFrame {
				drawPanelFrame(frame, cfg.Width, cfg.Height)
			}
			if cfg.ShowPerfBadge {
				drawPerfBadge(frame, cfg.Width-28, cfg.Height-8, display.perf.Level())
			}
		}
	}

	keys := make(chan rune, 16)
	go monitorKeypad(cfg.InputDevice, keys)
	go httpServer(cfg.HTTPPort, display, surf, keys)

	router := newKeyRouter(display)
	log.Printf("main: display loop starting %dx%d @ %d fps", cfg.Width, cfg.Height, cfg.TargetFPS)
	for {
		select {
		case key := <-keys:
			router.Handle(key)
		default:
		}
		display.Tick()
	}
}
