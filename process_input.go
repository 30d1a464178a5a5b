package main

import (
	"log"
	"strconv"
	"strings"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

var keypadCodes = map[evdev.EvCode]rune{
	evdev.KEY_KP0:        '0',
	evdev.KEY_KP1:        '1',
	evdev.KEY_KP2:        '2',
	evdev.KEY_KP3:        '3',
	evdev.KEY_KP4:        '4',
	evdev.KEY_KP5:        '5',
	evdev.KEY_KP6:        '6',
	evdev.KEY_KP7:        '7',
	evdev.KEY_KP8:        '8',
	evdev.KEY_KP9:        '9',
	evdev.KEY_KPDOT:      '.',
	evdev.KEY_KPPLUS:     '+',
	evdev.KEY_KPMINUS:    '-',
	evdev.KEY_KPASTERISK: '*',
	evdev.KEY_KPSLASH:    '/',
	evdev.KEY_KPENTER:    '=',
	evdev.KEY_ENTER:      '=',
	evdev.KEY_BACKSPACE:  '<',
	evdev.KEY_DELETE:     'C',
	evdev.KEY_ESC:        'C',
}

// monitorKeypad finds the keypad device by name, grabs it and forwards
// key-press events onto the keys channel.
func monitorKeypad(deviceName string, keys chan<- rune) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		log.Printf("keypad: ListDevicePaths error: %v", err)
		return
	}

	var devPath string
	for _, ip := range paths {
		if ip.Name == deviceName {
			devPath = ip.Path
			break
		}
	}
	if devPath == "" {
		log.Printf("keypad: no input device named %q found", deviceName)
		return
	}

	keyboard, err := evdev.Open(devPath)
	if err != nil {
		log.Printf("keypad: Open(%s) error: %v", devPath, err)
		return
	}
	defer keyboard.Ungrab()

	if err := keyboard.Grab(); err != nil {
		log.Printf("keypad: warning: failed to grab device: %v", err)
	}

	name, _ := keyboard.Name()
	log.Printf("keypad: using input device: %s (%s)", devPath, name)

	for {
		ev, err := keyboard.ReadOne()
		if err != nil {
			log.Printf("keypad: read error: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if ev.Type != evdev.EV_KEY || ev.Value != 1 {
			continue
		}
		if key, ok := keypadCodes[ev.Code]; ok {
			keys <- key
		}
	}
}

// keyRouter turns keypad characters into display updates and animations.
// Evaluation is left to right, no operator precedence, like a desk
// calculator.
type keyRouter struct {
	display *CalcDisplay

	entry     string // value being typed, shown on the result line
	expr      string // accumulated expression text for the history entry
	acc       float64
	pendingOp rune
	fresh     bool // next digit replaces entry instead of appending
}

func newKeyRouter(d *CalcDisplay) *keyRouter {
	return &keyRouter{display: d, entry: "0"}
}

func (r *keyRouter) Handle(key rune) {
	switch {
	case key >= '0' && key <= '9' || key == '.':
		r.handleDigit(key)
	case key == '+' || key == '-' || key == '*' || key == '/':
		r.handleOperator(key)
	case key == '=':
		r.handleEquals()
	case key == '<':
		r.handleBackspace()
	case key == 'C':
		r.handleClear()
	default:
		log.Printf("input: ignoring key %q", key)
	}
}

func (r *keyRouter) handleDigit(key rune) {
	old := r.entry
	var next string
	switch {
	case r.fresh:
		if key == '.' {
			next = "0."
		} else {
			next = string(key)
		}
		r.fresh = false
	case key == '.' && strings.ContainsRune(old, '.'):
		return
	case old == "0" && key != '.':
		next = string(key)
	default:
		next = old + string(key)
	}
	r.entry = next

	// Only a trailing append animates; replacements repaint directly.
	if len(next) == len(old)+1 && strings.HasPrefix(next, old) {
		r.display.AnimateCharInsertOrDelete(old, next)
	} else {
		r.display.SetResult(next)
	}
}

func (r *keyRouter) handleBackspace() {
	if r.fresh || len(r.entry) <= 1 {
		if r.entry != "0" {
			r.entry = "0"
			r.fresh = false
			r.display.SetResult("0")
		}
		return
	}
	old := r.entry
	r.entry = old[:len(old)-1]
	r.display.AnimateCharInsertOrDelete(old, r.entry)
}

func (r *keyRouter) handleOperator(op rune) {
	val := r.value()
	if r.pendingOp != 0 {
		r.acc = applyOp(r.acc, r.pendingOp, val)
	} else {
		r.acc = val
	}
	r.pendingOp = op

	r.display.AnimateResultToExpression(r.entry, r.entry+string(op))
	r.expr += r.entry + string(op)
	r.entry = "0"
	r.fresh = true
}

func (r *keyRouter) handleEquals() {
	if r.pendingOp == 0 {
		return
	}
	result := applyOp(r.acc, r.pendingOp, r.value())
	resStr := formatNumber(result)

	r.display.PushHistory(r.expr + r.entry + "=" + resStr)
	r.display.SetExpression("")
	r.display.SetResult(resStr)

	r.acc = 0
	r.pendingOp = 0
	r.expr = ""
	r.entry = resStr
	r.fresh = true
}

func (r *keyRouter) handleClear() {
	r.display.InterruptCurrentAnimations()
	r.acc = 0
	r.pendingOp = 0
	r.expr = ""
	r.entry = "0"
	r.fresh = false
	r.display.SetExpression("")
	r.display.SetResult("0")
}

func (r *keyRouter) value() float64 {
	v, err := strconv.ParseFloat(r.entry, 64)
	if err != nil {
		return 0
	}
	return v
}

func applyOp(a float64, op rune, b float64) float64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			log.Printf("input: division by zero")
			return 0
		}
		return a / b
	}
	return b
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
