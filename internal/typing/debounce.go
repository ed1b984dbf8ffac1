// Package typing turns pinch gestures into key events and keeps the text
// they produce, along with the blinking cursor drawn after it.
package typing

import (
	"image"
	"math"

	"github.com/ayusman/airkeys/internal/keyboard"
)

// Click detection constants.
const (
	// ClickThreshold is the fingertip distance, in pixels, below which the
	// index and middle fingers count as pinched.
	ClickThreshold = 40.0
	// ClickDelay is the number of frames to wait before another press can register.
	ClickDelay = 10
)

// KeyEvent is a single accepted key press.
type KeyEvent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Ref returns the key the event refers to.
func (e KeyEvent) Ref() keyboard.KeyRef {
	return keyboard.KeyRef{Row: e.Row, Col: e.Col}
}

// Debouncer accepts at most one key press per debounce window.
type Debouncer struct {
	threshold float64
	delay     int
	timer     int
}

// NewDebouncer creates a Debouncer with the default threshold and delay.
func NewDebouncer() *Debouncer {
	return NewDebouncerWith(ClickThreshold, ClickDelay)
}

// NewDebouncerWith creates a Debouncer with a custom pinch threshold and frame delay.
// Non-positive values fall back to the defaults.
func NewDebouncerWith(threshold float64, delay int) *Debouncer {
	if threshold <= 0 {
		threshold = ClickThreshold
	}
	if delay <= 0 {
		delay = ClickDelay
	}
	return &Debouncer{threshold: threshold, delay: delay}
}

// Consider decides whether the current frame produces a key press.
// A press fires when a key is hovered, the two fingertips are closer than the
// threshold, and the debounce window has elapsed. Firing restarts the window.
func (d *Debouncer) Consider(hover *keyboard.KeyRef, a, b image.Point) (KeyEvent, bool) {
	if hover == nil || d.timer != 0 {
		return KeyEvent{}, false
	}
	if Distance(a, b) >= d.threshold {
		return KeyEvent{}, false
	}

	d.timer = d.delay
	return KeyEvent{Row: hover.Row, Col: hover.Col}, true
}

// Tick advances the debounce window by one frame.
func (d *Debouncer) Tick() {
	if d.timer > 0 {
		d.timer--
	}
}

// Timer returns the number of frames left before the next press can fire.
func (d *Debouncer) Timer() int {
	return d.timer
}

// Ready reports whether a press could fire this frame.
func (d *Debouncer) Ready() bool {
	return d.timer == 0
}

// Delay returns the length of the debounce window in frames.
func (d *Debouncer) Delay() int {
	return d.delay
}

// Distance is the Euclidean distance between two points.
func Distance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
