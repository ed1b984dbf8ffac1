package render

import "strings"

// Output box constants.
const (
	// WrapLimit is the maximum number of characters on one output line.
	WrapLimit = 30
	// OutputPrefix labels the first output line.
	OutputPrefix = "Output: "
	// LineSpacing is the distance between output line baselines.
	LineSpacing = 50
	// TextPadding is the horizontal inset of output text inside the box.
	TextPadding = 10
)

// continuationPrefix pads later lines so they align with the first one.
var continuationPrefix = strings.Repeat(" ", len(OutputPrefix))

// Wrap splits text into lines of at most limit characters, with no regard
// for word boundaries. Empty text yields one empty line.
func Wrap(text string, limit int) []string {
	if limit <= 0 {
		limit = WrapLimit
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		lines = append(lines, string(runes[start:end]))
	}
	return lines
}

// Prefix returns the label drawn before output line i.
func Prefix(i int) string {
	if i == 0 {
		return OutputPrefix
	}
	return continuationPrefix
}
