package keyboard

import "image"

// Locate returns the key whose rectangle contains p.
// Keys are tested row by row, left to right, so a point on an edge shared by
// two keys belongs to the one tested first.
func (l *Layout) Locate(p image.Point) (KeyRef, bool) {
	for row := range l.rects {
		for col, r := range l.rects[row] {
			if r.Contains(p) {
				return KeyRef{Row: row, Col: col}, true
			}
		}
	}
	return KeyRef{}, false
}

// LocateKey is Locate returning the full key.
func (l *Layout) LocateKey(p image.Point) (Key, bool) {
	ref, ok := l.Locate(p)
	if !ok {
		return Key{}, false
	}
	return l.Lookup(ref)
}
