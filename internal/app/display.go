package app

import "gocv.io/x/gocv"

// EscKey is the key code that closes the window.
const EscKey = 27

// Display shows rendered frames. Show returns ErrStopRequested when the user
// asks to stop.
type Display interface {
	Show(frame *gocv.Mat) error
	Close() error
}

// Window shows frames in a local OpenCV window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show draws frame and polls the keyboard for Esc.
func (w *Window) Show(frame *gocv.Mat) error {
	w.window.IMShow(*frame)
	if w.window.WaitKey(1) == EscKey {
		return ErrStopRequested
	}
	return nil
}

// Close closes the window.
func (w *Window) Close() error {
	return w.window.Close()
}
