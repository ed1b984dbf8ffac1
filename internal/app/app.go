// Package app runs the airkeys frame loop: it reads camera frames, turns
// detected hands into key presses and hands the rendered result to every
// output.
package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ayusman/airkeys/internal/capture"
	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/logging"
	"github.com/ayusman/airkeys/internal/plugin"
	"github.com/ayusman/airkeys/internal/render"
	"github.com/ayusman/airkeys/internal/server"
	"github.com/ayusman/airkeys/internal/session"
	"github.com/ayusman/airkeys/internal/store"
)

var (
	// ErrFrameSource wraps camera failures that end the loop.
	ErrFrameSource = errors.New("frame source failed")
	// ErrStopRequested is returned by a Display to stop the loop.
	ErrStopRequested = errors.New("stop requested")
)

// Forwarder receives every accepted key press.
type Forwarder interface {
	Forward(k plugin.Keystroke) bool
}

// Hooks are optional callbacks.
type Hooks struct {
	// OnKey runs on the frame loop after a key press with the text that
	// resulted from it.
	OnKey func(p session.Press, text string)
	// OnEnabled runs on the caller of SetEnabled when typing is paused or
	// resumed.
	OnEnabled func(enabled bool)
}

// Config holds the components of an App. Camera and Detector are required;
// every other output is optional.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector

	Session session.Options
	Render  render.Options

	// FPS paces Run. Zero uses the camera's default.
	FPS int
	// Mirror flips frames horizontally before detection.
	Mirror bool
	// MotionThreshold enables the motion gate when > 0: frames without
	// motion reuse the previous detection.
	MotionThreshold float64

	Store     *store.Store
	Forwarder Forwarder
	Frames    *server.FrameHub
	Events    *server.EventHub
	Displays  []Display
	Hooks     Hooks

	Logger *slog.Logger
}

// App owns the typing session and everything a frame passes through.
type App struct {
	camera    capture.Camera
	detector  detector.Detector
	motion    *capture.MotionDetector
	session   *session.Session
	renderer  *render.Renderer
	fps       int
	mirror    bool
	store     *store.Store
	forwarder Forwarder
	frames    *server.FrameHub
	events    *server.EventHub
	displays  []Display
	hooks     Hooks
	logger    *slog.Logger

	// Frame loop state.
	lastHands []detector.HandLandmarks
	sessionID string

	mu      sync.RWMutex
	enabled bool
	seq     int64
	text    string
	cursor  bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates an App with typing enabled.
func New(config Config) *App {
	fps := config.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	sess := session.New(config.Session)

	a := &App{
		camera:    config.Camera,
		detector:  config.Detector,
		motion:    capture.NewMotionDetector(config.MotionThreshold),
		session:   sess,
		renderer:  render.New(sess.Layout(), config.Render),
		fps:       fps,
		mirror:    config.Mirror,
		store:     config.Store,
		forwarder: config.Forwarder,
		frames:    config.Frames,
		events:    config.Events,
		displays:  config.Displays,
		hooks:     config.Hooks,
		logger:    logging.OrDefault(config.Logger).With("component", "app"),
		enabled:   true,
		cursor:    true,
		stopCh:    make(chan struct{}),
	}

	if a.events != nil {
		a.events.SetSnapshot(a.stateEvent)
	}
	return a
}

// Text returns the text typed so far.
func (a *App) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

// CursorVisible reports the cursor blink state of the last frame.
func (a *App) CursorVisible() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cursor
}

// Enabled reports whether hands are being turned into key presses.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetEnabled pauses or resumes typing. While paused the keyboard is still
// drawn but no detection runs.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if !changed {
		return
	}

	a.logger.Info("typing toggled", "enabled", enabled)
	if a.events != nil {
		a.events.Publish(a.stateEvent())
	}
	if a.hooks.OnEnabled != nil {
		a.hooks.OnEnabled(enabled)
	}
}

// Stop makes Run return. It is safe to call more than once.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
}

// Session returns the typing session. Only the frame loop may step it.
func (a *App) Session() *session.Session {
	return a.session
}

// SessionID returns the ID of the stored history session, or "" when
// history is off.
func (a *App) SessionID() string {
	return a.sessionID
}

func (a *App) stateEvent() server.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return server.Event{
		Type:    server.EventState,
		Seq:     a.seq,
		Text:    a.text,
		Enabled: a.enabled,
	}
}
