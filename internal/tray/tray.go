// Package tray shows airkeys in the system tray: typing on/off, the last
// key pressed, a text preview, the browser viewer and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// PreviewLength is the number of trailing runes shown in the text preview.
const PreviewLength = 24

// Tray is the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	lastKey  string
	text     string
	mu       sync.RWMutex

	menuToggle  *systray.MenuItem
	menuLastKey *systray.MenuItem
	menuText    *systray.MenuItem
}

// New creates a Tray with typing enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback run when typing is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback run by "Open Viewer".
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback run by "Quit".
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("airkeys")
	systray.SetTooltip("airkeys virtual keyboard")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume typing")
	systray.AddSeparator()

	t.menuLastKey = systray.AddMenuItem(lastKeyTitle(t.lastKey), "Last key pressed")
	t.menuLastKey.Disable()
	t.menuText = systray.AddMenuItem(textTitle(t.text), "Typed text")
	t.menuText.Disable()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer", "Open the keyboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit airkeys")
	toggle := t.menuToggle
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Outside the lock: the callback may call SetEnabled.
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled reflects a pause or resume made elsewhere, e.g. in the viewer.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastKey updates the last key item.
func (t *Tray) SetLastKey(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastKey = label
	if t.menuLastKey != nil {
		t.menuLastKey.SetTitle(lastKeyTitle(label))
	}
}

// SetText updates the text preview.
func (t *Tray) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.text = text
	if t.menuText != nil {
		t.menuText.SetTitle(textTitle(text))
	}
}

// IsEnabled returns whether typing is on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastKey returns the last key shown.
func (t *Tray) LastKey() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastKey
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Typing"
	}
	return "○ Paused"
}

func lastKeyTitle(label string) string {
	if label == "" {
		return "Last key: none"
	}
	return "Last key: " + label
}

func textTitle(text string) string {
	if text == "" {
		return "Text: (empty)"
	}
	r := []rune(text)
	if len(r) > PreviewLength {
		return "Text: …" + string(r[len(r)-PreviewLength:])
	}
	return "Text: " + text
}
