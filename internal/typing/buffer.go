package typing

import "github.com/ayusman/airkeys/internal/keyboard"

// Buffer holds the typed text. It only grows at the end or shrinks from it.
type Buffer struct {
	text []rune
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Apply edits the buffer according to a key label.
// BackSpace drops the last character, Space appends a blank, and every other
// label is appended as-is.
func (b *Buffer) Apply(label string) {
	switch label {
	case keyboard.LabelBackSpace:
		b.Backspace()
	case keyboard.LabelSpace:
		b.Space()
	default:
		b.Append(label)
	}
}

// Append adds s to the end of the buffer.
func (b *Buffer) Append(s string) {
	b.text = append(b.text, []rune(s)...)
}

// Space appends a single space.
func (b *Buffer) Space() {
	b.text = append(b.text, ' ')
}

// Backspace removes the last character. It does nothing on an empty buffer.
func (b *Buffer) Backspace() {
	if len(b.text) == 0 {
		return
	}
	b.text = b.text[:len(b.text)-1]
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.text)
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}
