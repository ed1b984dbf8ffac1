// Package render draws the keyboard, the typed text and the hand overlay
// onto camera frames using GoCV.
package render

import (
	"image"
	"image/color"

	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/keyboard"
	"github.com/ayusman/airkeys/internal/session"
	"gocv.io/x/gocv"
)

// Font settings shared by key labels and output text.
const (
	FontFace      = gocv.FontHersheySimplex
	FontScale     = 1.0
	FontThickness = 2
)

// Cursor and feedback geometry.
const (
	CursorHeight   = 30
	CursorWidth    = 2
	FeedbackRadius = 10
	KeyOutline     = 2
)

// OutputBox is the region holding the typed text.
var OutputBox = image.Rect(400, 800, 1200, 1000)

// Colors.
var (
	KeyColor      = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	HoverColor    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	LabelColor    = color.RGBA{R: 0, G: 0, B: 0, A: 0}
	BoxColor      = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	TextColor     = color.RGBA{R: 0, G: 0, B: 0, A: 0}
	FeedbackColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	BoneColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	JointColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// Measurer returns the rendered pixel width of text.
type Measurer func(text string) int

// HersheyWidth measures text with the font used for output lines.
func HersheyWidth(text string) int {
	return gocv.GetTextSize(text, FontFace, FontScale, FontThickness).X
}

// TextLine is one output line with its drawing origin (left end of the baseline).
type TextLine struct {
	Text   string
	Origin image.Point
}

// Output is the placement of the output text and cursor.
type Output struct {
	Lines  []TextLine
	Cursor image.Rectangle
}

// LayoutOutput wraps text into the output box and places the cursor right
// after the last character of the last line, on that line's baseline.
func LayoutOutput(text string, box image.Rectangle, measure Measurer) Output {
	wrapped := Wrap(text, WrapLimit)

	out := Output{Lines: make([]TextLine, len(wrapped))}
	for i, line := range wrapped {
		out.Lines[i] = TextLine{
			Text:   Prefix(i) + line,
			Origin: image.Point{X: box.Min.X + TextPadding, Y: box.Min.Y + LineSpacing*(i+1)},
		}
	}

	last := out.Lines[len(out.Lines)-1]
	x := last.Origin.X + measure(last.Text)
	y := last.Origin.Y
	out.Cursor = image.Rect(x, y-CursorHeight, x+CursorWidth, y)

	return out
}

// Options configures a Renderer.
type Options struct {
	OutputBox image.Rectangle
	Measure   Measurer
	// Skeleton draws the landmark skeleton of every detected hand.
	Skeleton bool
}

// Renderer draws session frames onto camera images.
type Renderer struct {
	layout   *keyboard.Layout
	box      image.Rectangle
	measure  Measurer
	skeleton bool
}

// New creates a Renderer for the given layout.
func New(layout *keyboard.Layout, opts Options) *Renderer {
	box := opts.OutputBox
	if box.Empty() {
		box = OutputBox
	}
	measure := opts.Measure
	if measure == nil {
		measure = HersheyWidth
	}
	return &Renderer{
		layout:   layout,
		box:      box,
		measure:  measure,
		skeleton: opts.Skeleton,
	}
}

// Draw paints the keyboard, the hand overlay and the output text onto frame.
func (r *Renderer) Draw(frame *gocv.Mat, f session.Frame) {
	if frame == nil || frame.Empty() {
		return
	}

	r.DrawKeyboard(frame, f.Hover)
	if r.skeleton {
		for _, h := range f.Hands {
			r.drawHand(frame, h)
		}
	}
	if f.Press != nil {
		for _, p := range f.Press.Fingertips {
			gocv.Circle(frame, p, FeedbackRadius, FeedbackColor, -1)
		}
	}
	r.DrawOutput(frame, f.Text, f.CursorVisible)
}

// DrawKeyboard outlines every key and fills the hovered one.
func (r *Renderer) DrawKeyboard(frame *gocv.Mat, hover *keyboard.KeyRef) {
	r.layout.Keys(func(k keyboard.Key, rect keyboard.Rect) {
		if hover != nil && *hover == k.Ref() {
			gocv.Rectangle(frame, rect.Image(), HoverColor, -1)
		} else {
			gocv.Rectangle(frame, rect.Image(), KeyColor, KeyOutline)
		}
		gocv.PutText(frame, k.Label, r.layout.LabelAnchor(k.Row, k.Col), FontFace, FontScale, LabelColor, FontThickness)
	})
}

// DrawOutput fills the output box and writes the wrapped text and cursor.
func (r *Renderer) DrawOutput(frame *gocv.Mat, text string, cursorVisible bool) {
	gocv.Rectangle(frame, r.box, BoxColor, -1)

	out := LayoutOutput(text, r.box, r.measure)
	for _, line := range out.Lines {
		gocv.PutText(frame, line.Text, line.Origin, FontFace, FontScale, TextColor, FontThickness)
	}
	if cursorVisible {
		gocv.Rectangle(frame, out.Cursor, TextColor, -1)
	}
}

func (r *Renderer) drawHand(frame *gocv.Mat, h session.HandFrame) {
	for _, c := range detector.HandConnections {
		gocv.Line(frame, h.Landmarks[c[0]], h.Landmarks[c[1]], BoneColor, 2)
	}
	for _, p := range h.Landmarks {
		gocv.Circle(frame, p, 4, JointColor, -1)
	}
}
