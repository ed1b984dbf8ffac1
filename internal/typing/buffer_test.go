package typing

import (
	"testing"

	"github.com/ayusman/airkeys/internal/keyboard"
	"github.com/stretchr/testify/assert"
)

func TestBuffer_HelloScenario(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, "", b.String())

	for _, label := range []string{"H", "E", "L", "L", "O"} {
		b.Apply(label)
	}
	assert.Equal(t, "HELLO", b.String())

	b.Apply(keyboard.LabelSpace)
	assert.Equal(t, "HELLO ", b.String())

	b.Apply(keyboard.LabelBackSpace)
	assert.Equal(t, "HELLO", b.String())
	assert.Equal(t, 5, b.Len())
}

func TestBuffer_BackspaceOnEmpty(t *testing.T) {
	b := NewBuffer()

	b.Apply(keyboard.LabelBackSpace)
	b.Backspace()

	assert.Equal(t, "", b.String())
	assert.Equal(t, 0, b.Len())
}

func TestBuffer_Apply(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		labels []string
		want   string
	}{
		{name: "symbols", labels: []string{"#", "@", "{", "]"}, want: "#@{]"},
		{name: "multi-character label", start: "a", labels: []string{"Tab"}, want: "aTab"},
		{name: "backspace after multi-character label drops one char", labels: []string{"Shift", keyboard.LabelBackSpace}, want: "Shif"},
		{name: "unicode label", labels: []string{"é", "ß"}, want: "éß"},
		{name: "backspace removes a whole rune", start: "aé", labels: []string{keyboard.LabelBackSpace}, want: "a"},
		{name: "spaces", labels: []string{keyboard.LabelSpace, keyboard.LabelSpace}, want: "  "},
		{name: "drain past empty", start: "ab", labels: []string{keyboard.LabelBackSpace, keyboard.LabelBackSpace, keyboard.LabelBackSpace}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer()
			b.Append(tt.start)
			for _, l := range tt.labels {
				b.Apply(l)
			}
			assert.Equal(t, tt.want, b.String())
		})
	}
}
