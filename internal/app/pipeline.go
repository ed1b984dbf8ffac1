package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/plugin"
	"github.com/ayusman/airkeys/internal/server"
	"github.com/ayusman/airkeys/internal/session"
	"github.com/ayusman/airkeys/internal/store"
	"gocv.io/x/gocv"
)

// Start opens the camera and, when a store is configured, begins a history
// session. Run calls it; tests driving ProcessFrame call it directly.
func (a *App) Start() error {
	if !a.camera.IsOpen() {
		if err := a.camera.Open(); err != nil {
			return fmt.Errorf("%w: open camera: %w", ErrFrameSource, err)
		}
	}
	a.camera.SetFPS(a.fps)

	if a.store != nil && a.sessionID == "" {
		rec := &store.Session{}
		if err := a.store.Sessions().Create(rec); err != nil {
			a.logger.Warn("history disabled", "error", err)
		} else {
			a.sessionID = rec.ID
			a.logger.Debug("history session started", "session", rec.ID)
		}
	}
	return nil
}

// Close ends the history session and releases the camera, detector and
// displays.
func (a *App) Close() error {
	var errs []error

	if a.sessionID != "" {
		sessions := a.store.Sessions()
		if err := sessions.UpdateText(a.sessionID, a.Text()); err != nil {
			errs = append(errs, fmt.Errorf("save text: %w", err))
		}
		if err := sessions.End(a.sessionID); err != nil {
			errs = append(errs, fmt.Errorf("end session: %w", err))
		}
		a.sessionID = ""
	}

	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	for _, d := range a.displays {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run processes frames until ctx is cancelled, Stop is called, a display
// asks to stop or the camera fails. Only camera failures are returned, wrapped
// in ErrFrameSource.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.logger.Warn("shutdown incomplete", "error", cerr)
		}
	}()

	a.logger.Info("frame loop started", "fps", a.fps, "mirror", a.mirror, "motion_gate", a.motion.Enabled())

	ticker := time.NewTicker(time.Second / time.Duration(a.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("frame loop stopped", "reason", "context", "frames", a.session.Frames())
			return nil
		case <-a.stopCh:
			a.logger.Info("frame loop stopped", "reason", "stop", "frames", a.session.Frames())
			return nil
		case <-ticker.C:
			if _, err := a.ProcessFrame(); err != nil {
				if errors.Is(err, ErrStopRequested) {
					a.logger.Info("frame loop stopped", "reason", "display", "frames", a.session.Frames())
					return nil
				}
				return err
			}
		}
	}
}

// ProcessFrame runs one iteration of the loop: read, mirror, detect, step,
// draw and publish. It returns the session frame that was drawn.
func (a *App) ProcessFrame() (session.Frame, error) {
	src, err := a.camera.ReadFrame()
	if err != nil {
		return session.Frame{}, fmt.Errorf("%w: %w", ErrFrameSource, err)
	}
	defer src.Close()

	frame := src
	if a.mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(*src, &flipped, 1)
		frame = &flipped
	}

	var hands []detector.HandLandmarks
	if a.Enabled() {
		hands = a.detect(frame)
	} else {
		a.lastHands = nil
	}

	f := a.session.Step(hands, frame.Cols(), frame.Rows())
	a.renderer.Draw(frame, f)

	a.mu.Lock()
	a.seq = f.Seq
	a.text = f.Text
	a.cursor = f.CursorVisible
	a.mu.Unlock()

	if f.Press != nil {
		a.handlePress(f)
	}

	if a.frames != nil {
		if err := a.frames.Publish(frame); err != nil {
			a.logger.Warn("stream publish failed", "error", err)
		}
	}
	for _, d := range a.displays {
		if err := d.Show(frame); err != nil {
			return f, err
		}
	}
	return f, nil
}

// detect runs the hand detector unless the motion gate reports a static
// frame, in which case the previous hands are reused. Detector errors count
// as no hands.
func (a *App) detect(frame *gocv.Mat) []detector.HandLandmarks {
	if a.motion.Enabled() {
		if moved, _ := a.motion.Detect(frame); !moved {
			return a.lastHands
		}
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.logger.Warn("hand detection failed", "error", err)
		hands = nil
	}
	a.lastHands = hands
	return hands
}

func (a *App) handlePress(f session.Frame) {
	p := f.Press
	a.logger.Debug("key pressed",
		"key", p.Key.Label,
		"row", p.Event.Row,
		"col", p.Event.Col,
		"frame", f.Seq,
	)

	if a.sessionID != "" {
		a.record(f)
	}

	if a.events != nil {
		a.events.Publish(server.Event{
			Type:    server.EventKey,
			Seq:     f.Seq,
			Key:     &server.KeyInfo{Row: p.Event.Row, Col: p.Event.Col, Label: p.Key.Label},
			Text:    f.Text,
			Enabled: true,
		})
	}

	if a.forwarder != nil {
		if !a.forwarder.Forward(plugin.Keystroke{Label: p.Key.Label, Text: f.Text}) {
			a.logger.Debug("key not forwarded", "key", p.Key.Label)
		}
	}

	if a.hooks.OnKey != nil {
		a.hooks.OnKey(*p, f.Text)
	}
}

func (a *App) record(f session.Frame) {
	p := f.Press
	err := a.store.KeyPresses().Create(&store.KeyPress{
		SessionID: a.sessionID,
		FrameSeq:  f.Seq,
		Row:       p.Event.Row,
		Col:       p.Event.Col,
		Label:     p.Key.Label,
		TextAfter: f.Text,
	})
	if err == nil {
		err = a.store.Sessions().UpdateText(a.sessionID, f.Text)
	}
	if err != nil {
		a.logger.Warn("failed to record key press", "session", a.sessionID, "error", err)
	}
}
