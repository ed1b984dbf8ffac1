package typing

// BlinkDelay is the number of frames the cursor stays in one state.
const BlinkDelay = 30

// Blinker is the frame-counted on/off state of the text cursor.
type Blinker struct {
	delay   int
	counter int
	visible bool
}

// NewBlinker returns a visible cursor with the default blink delay.
func NewBlinker() *Blinker {
	return NewBlinkerWith(BlinkDelay)
}

// NewBlinkerWith returns a visible cursor that toggles every delay frames.
func NewBlinkerWith(delay int) *Blinker {
	if delay <= 0 {
		delay = BlinkDelay
	}
	return &Blinker{delay: delay, visible: true}
}

// Tick advances the animation by one frame.
func (b *Blinker) Tick() {
	b.counter++
	if b.counter >= b.delay {
		b.visible = !b.visible
		b.counter = 0
	}
}

// Visible reports whether the cursor should be drawn.
func (b *Blinker) Visible() bool {
	return b.visible
}

// Counter returns the frames elapsed in the current state.
func (b *Blinker) Counter() int {
	return b.counter
}
