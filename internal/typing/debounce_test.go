package typing

import (
	"image"
	"testing"

	"github.com/ayusman/airkeys/internal/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pinchA = image.Point{X: 500, Y: 350}
	pinchB = image.Point{X: 510, Y: 360}
	apartB = image.Point{X: 600, Y: 350}
)

func TestDebouncer_Consider(t *testing.T) {
	hover := &keyboard.KeyRef{Row: 1, Col: 2}

	tests := []struct {
		name  string
		hover *keyboard.KeyRef
		a, b  image.Point
		fire  bool
	}{
		{name: "pinch over key", hover: hover, a: pinchA, b: pinchB, fire: true},
		{name: "no hover", hover: nil, a: pinchA, b: pinchB, fire: false},
		{name: "fingers apart", hover: hover, a: pinchA, b: apartB, fire: false},
		{name: "exactly at threshold", hover: hover, a: image.Point{X: 0, Y: 0}, b: image.Point{X: 40, Y: 0}, fire: false},
		{name: "just under threshold", hover: hover, a: image.Point{X: 0, Y: 0}, b: image.Point{X: 39, Y: 0}, fire: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer()
			ev, ok := d.Consider(tt.hover, tt.a, tt.b)
			assert.Equal(t, tt.fire, ok)
			if tt.fire {
				assert.Equal(t, KeyEvent{Row: 1, Col: 2}, ev)
				assert.Equal(t, ClickDelay, d.Timer())
			} else {
				assert.Equal(t, 0, d.Timer())
			}
		})
	}
}

func TestDebouncer_Window(t *testing.T) {
	d := NewDebouncer()
	hover := &keyboard.KeyRef{Row: 0, Col: 0}

	// Frame 0 fires and arms the window.
	_, ok := d.Consider(hover, pinchA, pinchB)
	require.True(t, ok)
	require.Equal(t, ClickDelay, d.Timer())
	d.Tick()

	// Frames 1..ClickDelay-1 are suppressed even with a held pinch.
	for frame := 1; frame < ClickDelay; frame++ {
		_, ok := d.Consider(hover, pinchA, pinchB)
		assert.False(t, ok, "frame %d", frame)
		d.Tick()
	}

	// ClickDelay frames after the first press the window is open again.
	assert.Equal(t, 0, d.Timer())
	assert.True(t, d.Ready())
	_, ok = d.Consider(hover, pinchA, pinchB)
	assert.True(t, ok)
}

func TestDebouncer_TimerBounds(t *testing.T) {
	d := NewDebouncerWith(ClickThreshold, 3)
	hover := &keyboard.KeyRef{}

	for i := 0; i < 20; i++ {
		d.Consider(hover, pinchA, pinchB)
		assert.GreaterOrEqual(t, d.Timer(), 0)
		assert.LessOrEqual(t, d.Timer(), d.Delay())
		d.Tick()
	}

	idle := NewDebouncer()
	idle.Tick()
	assert.Equal(t, 0, idle.Timer())
}

func TestDebouncer_SpecialKeysShareWindow(t *testing.T) {
	// Space and BackSpace presses arm the debounce window like any other key.
	l := keyboard.NewLayout()
	for _, label := range []string{keyboard.LabelSpace, keyboard.LabelBackSpace, "Q"} {
		t.Run(label, func(t *testing.T) {
			var ref keyboard.KeyRef
			found := false
			l.Keys(func(k keyboard.Key, _ keyboard.Rect) {
				if k.Label == label {
					ref, found = k.Ref(), true
				}
			})
			require.True(t, found)

			d := NewDebouncer()
			_, ok := d.Consider(&ref, pinchA, pinchB)
			require.True(t, ok)
			assert.Equal(t, ClickDelay, d.Timer())

			d.Tick()
			_, ok = d.Consider(&ref, pinchA, pinchB)
			assert.False(t, ok)
		})
	}
}

func TestNewDebouncerWith_Defaults(t *testing.T) {
	d := NewDebouncerWith(0, -1)
	assert.Equal(t, ClickDelay, d.Delay())
	assert.Equal(t, ClickThreshold, d.threshold)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(image.Point{X: 0, Y: 0}, image.Point{X: 3, Y: 4}))
	assert.Equal(t, 0.0, Distance(image.Point{X: 7, Y: 7}, image.Point{X: 7, Y: 7}))
}
