// Package session owns the per-frame typing state and advances it from hand
// detections. It performs no drawing; the renderer consumes the Frame it returns.
package session

import (
	"image"

	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/keyboard"
	"github.com/ayusman/airkeys/internal/typing"
)

// Press is a key press accepted during a frame.
type Press struct {
	Event typing.KeyEvent
	Key   keyboard.Key
	// Fingertips are the pinched index and middle fingertip positions.
	Fingertips [2]image.Point
}

// HandFrame is the processed view of one detected hand.
type HandFrame struct {
	Landmarks [detector.NumLandmarks]image.Point
	Index     image.Point
	Middle    image.Point
	Hover     *keyboard.KeyRef
}

// Frame is a snapshot of the session after one Step.
type Frame struct {
	// Seq counts processed frames, starting at 1.
	Seq int64
	// Hover is the key under the last processed hand's index fingertip.
	Hover *keyboard.KeyRef
	// Press is set when a key press was accepted this frame.
	Press *Press
	// Hands holds every detected hand in detector order.
	Hands []HandFrame
	// Text is the buffer contents after this frame's edits.
	Text string
	// CursorVisible is the blink state to draw.
	CursorVisible bool
}

// Options tunes the session. Zero values use the package defaults.
type Options struct {
	Layout         *keyboard.Layout
	ClickThreshold float64
	ClickDelay     int
	BlinkDelay     int
}

// Session holds the layout and the three pieces of mutable typing state.
// It is not safe for concurrent use; a single frame loop owns it.
type Session struct {
	layout    *keyboard.Layout
	debouncer *typing.Debouncer
	buffer    *typing.Buffer
	blinker   *typing.Blinker
	seq       int64
}

// New creates a session with an empty buffer.
func New(opts Options) *Session {
	layout := opts.Layout
	if layout == nil {
		layout = keyboard.NewLayout()
	}
	return &Session{
		layout:    layout,
		debouncer: typing.NewDebouncerWith(opts.ClickThreshold, opts.ClickDelay),
		buffer:    typing.NewBuffer(),
		blinker:   typing.NewBlinkerWith(opts.BlinkDelay),
	}
}

// Step advances the session by one frame.
//
// Hands are processed in the order given. Each hand recomputes the hover key
// and may fire a press; the hover reported in the returned Frame is the one
// of the last hand, so with several hands the last one wins. A press from an
// earlier hand still arms the debounce window, which stops later hands in
// the same frame from firing. The debounce window and the cursor advance
// once per frame whether or not a hand was seen.
func (s *Session) Step(hands []detector.HandLandmarks, width, height int) Frame {
	s.seq++
	f := Frame{Seq: s.seq}

	for i := range hands {
		hand := &hands[i]
		index, middle := hand.Fingertips(width, height)

		hf := HandFrame{
			Landmarks: hand.Pixels(width, height),
			Index:     index,
			Middle:    middle,
		}

		f.Hover = nil
		if ref, ok := s.layout.Locate(index); ok {
			hf.Hover = &ref
			f.Hover = &ref
		}

		if ev, ok := s.debouncer.Consider(f.Hover, index, middle); ok {
			key, _ := s.layout.Lookup(ev.Ref())
			s.buffer.Apply(key.Label)
			f.Press = &Press{
				Event:      ev,
				Key:        key,
				Fingertips: [2]image.Point{index, middle},
			}
		}

		f.Hands = append(f.Hands, hf)
	}

	s.debouncer.Tick()
	s.blinker.Tick()

	f.Text = s.buffer.String()
	f.CursorVisible = s.blinker.Visible()
	return f
}

// Layout returns the keyboard layout.
func (s *Session) Layout() *keyboard.Layout {
	return s.layout
}

// Text returns the typed text.
func (s *Session) Text() string {
	return s.buffer.String()
}

// ClickTimer returns the frames left in the current debounce window.
func (s *Session) ClickTimer() int {
	return s.debouncer.Timer()
}

// CursorVisible reports the current blink state.
func (s *Session) CursorVisible() bool {
	return s.blinker.Visible()
}

// Frames returns the number of frames processed so far.
func (s *Session) Frames() int64 {
	return s.seq
}
