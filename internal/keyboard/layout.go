// Package keyboard describes the geometry of the on-screen keyboard and
// maps fingertip positions to the key underneath them.
package keyboard

import "image"

// Layout defaults, in frame pixels.
const (
	DefaultKeyWidth  = 100
	DefaultKeyHeight = 100
	DefaultMargin    = 0

	// LabelBaseline is the vertical offset of a label's baseline inside its key.
	LabelBaseline = 50
	// DefaultLabelInset is the horizontal label offset for single-character keys.
	DefaultLabelInset = 20
)

// Special key labels.
const (
	LabelSpace     = "Space"
	LabelTab       = "Tab"
	LabelCapsLock  = "CapsLock"
	LabelShift     = "Shift"
	LabelBackSpace = "BackSpace"
)

// DefaultOrigin is the top-left corner of the keyboard.
var DefaultOrigin = image.Point{X: 350, Y: 300}

// DefaultRows is the reference QWERTY arrangement.
var DefaultRows = [][]string{
	{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "{", "}", "[", "]"},
	{LabelTab, "Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P", LabelBackSpace},
	{LabelCapsLock, "A", "S", "D", "F", "G", "H", "J", "K", "L"},
	{LabelShift, "Z", "X", "C", "V", "B", "N", "M"},
	{"#", LabelSpace, "@"},
}

// widthMultipliers scales the base key width for special keys.
var widthMultipliers = map[string]float64{
	LabelSpace:     6.25,
	LabelTab:       1.25,
	LabelCapsLock:  1.75,
	LabelShift:     1.75,
	LabelBackSpace: 1.75,
}

// labelInsets pushes longer labels further right so they sit inside the key.
var labelInsets = map[string]int{
	LabelSpace:    100,
	LabelTab:      40,
	LabelCapsLock: 70,
	LabelShift:    50,
}

// WidthMultiplier returns the width of a key with the given label in base units.
func WidthMultiplier(label string) float64 {
	if m, ok := widthMultipliers[label]; ok {
		return m
	}
	return 1
}

// LabelInset returns the horizontal offset of a label inside its key.
func LabelInset(label string) int {
	if in, ok := labelInsets[label]; ok {
		return in
	}
	return DefaultLabelInset
}

// Key is a single labelled key. Its identity is (Row, Col).
type Key struct {
	Row   int
	Col   int
	Label string
}

// Ref returns the (row, col) identity of the key.
func (k Key) Ref() KeyRef {
	return KeyRef{Row: k.Row, Col: k.Col}
}

// KeyRef identifies a key by its position in the layout.
type KeyRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Rect is a key's draw rectangle. Both edges are part of the key for hit-testing.
type Rect struct {
	X, Y int
	W, H int
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p image.Point) bool {
	return r.X <= p.X && p.X <= r.X+r.W && r.Y <= p.Y && p.Y <= r.Y+r.H
}

// Min returns the top-left corner.
func (r Rect) Min() image.Point {
	return image.Point{X: r.X, Y: r.Y}
}

// Max returns the bottom-right corner.
func (r Rect) Max() image.Point {
	return image.Point{X: r.X + r.W, Y: r.Y + r.H}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rectangle{Min: r.Min(), Max: r.Max()}
}

// Options configures a Layout. Zero values fall back to the defaults.
type Options struct {
	Rows      [][]string
	Origin    image.Point
	KeyWidth  int
	KeyHeight int
	Margin    int
}

// Layout is the immutable geometry of the keyboard.
type Layout struct {
	keys   [][]Key
	rects  [][]Rect
	origin image.Point
	unit   int
	height int
	margin int
}

// NewLayout builds the default keyboard.
func NewLayout() *Layout {
	return NewLayoutWithOptions(Options{})
}

// NewLayoutWithOptions builds a keyboard from the given rows and geometry.
func NewLayoutWithOptions(opts Options) *Layout {
	rows := opts.Rows
	if len(rows) == 0 {
		rows = DefaultRows
	}
	origin := opts.Origin
	if origin == (image.Point{}) {
		origin = DefaultOrigin
	}
	unit := opts.KeyWidth
	if unit <= 0 {
		unit = DefaultKeyWidth
	}
	height := opts.KeyHeight
	if height <= 0 {
		height = DefaultKeyHeight
	}
	margin := opts.Margin
	if margin < 0 {
		margin = DefaultMargin
	}

	l := &Layout{
		keys:   make([][]Key, len(rows)),
		rects:  make([][]Rect, len(rows)),
		origin: origin,
		unit:   unit,
		height: height,
		margin: margin,
	}

	for r, row := range rows {
		l.keys[r] = make([]Key, len(row))
		l.rects[r] = make([]Rect, len(row))

		x := origin.X
		y := origin.Y + r*(height+margin)
		for c, label := range row {
			w := int(WidthMultiplier(label) * float64(unit))
			l.keys[r][c] = Key{Row: r, Col: c, Label: label}
			l.rects[r][c] = Rect{X: x, Y: y, W: w, H: height}
			x += w
		}
	}

	return l
}

// Origin returns the top-left corner of the keyboard.
func (l *Layout) Origin() image.Point {
	return l.origin
}

// Rows returns the number of rows.
func (l *Layout) Rows() int {
	return len(l.keys)
}

// Cols returns the number of keys in row r, or 0 if r is out of range.
func (l *Layout) Cols(r int) int {
	if r < 0 || r >= len(l.keys) {
		return 0
	}
	return len(l.keys[r])
}

// Key returns the key at (row, col).
func (l *Layout) Key(row, col int) (Key, bool) {
	if row < 0 || row >= len(l.keys) || col < 0 || col >= len(l.keys[row]) {
		return Key{}, false
	}
	return l.keys[row][col], true
}

// Lookup returns the key identified by ref.
func (l *Layout) Lookup(ref KeyRef) (Key, bool) {
	return l.Key(ref.Row, ref.Col)
}

// Rect returns the draw rectangle of the key at (row, col).
// Out-of-range positions yield the zero Rect.
func (l *Layout) Rect(row, col int) Rect {
	if _, ok := l.Key(row, col); !ok {
		return Rect{}
	}
	return l.rects[row][col]
}

// LabelAnchor returns the bottom-left origin for drawing the key's label.
func (l *Layout) LabelAnchor(row, col int) image.Point {
	k, ok := l.Key(row, col)
	if !ok {
		return image.Point{}
	}
	r := l.rects[row][col]
	return image.Point{X: r.X + LabelInset(k.Label), Y: r.Y + LabelBaseline}
}

// RowSpan returns the total width of row r.
func (l *Layout) RowSpan(r int) int {
	if r < 0 || r >= len(l.rects) || len(l.rects[r]) == 0 {
		return 0
	}
	last := l.rects[r][len(l.rects[r])-1]
	return last.X + last.W - l.origin.X
}

// Keys calls fn for every key in row-major, then column-major order.
func (l *Layout) Keys(fn func(k Key, r Rect)) {
	for row := range l.keys {
		for col := range l.keys[row] {
			fn(l.keys[row][col], l.rects[row][col])
		}
	}
}
