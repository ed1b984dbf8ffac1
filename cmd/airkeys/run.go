package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/airkeys/internal/app"
	"github.com/ayusman/airkeys/internal/capture"
	"github.com/ayusman/airkeys/internal/config"
	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/plugin"
	"github.com/ayusman/airkeys/internal/render"
	"github.com/ayusman/airkeys/internal/server"
	"github.com/ayusman/airkeys/internal/session"
	"github.com/ayusman/airkeys/internal/store"
	"github.com/ayusman/airkeys/internal/tray"
)

// RunCmd starts the camera loop with every configured output.
type RunCmd struct {
	Quality int `help:"JPEG quality of the browser stream (1-100, 0 for the OpenCV default)." default:"80"`
}

// Run is called by kong when the run command is executed.
func (c *RunCmd) Run(logger *slog.Logger, s *config.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(s.Storage.DB, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var fwd app.Forwarder
	if s.Plugins.Forward != "" {
		f, err := startForwarder(s.Plugins, logger)
		if err != nil {
			return err
		}
		defer f.Close()
		fwd = f
	}

	frames := server.NewFrameHub(c.Quality)
	events := server.NewEventHub(logger)

	var displays []app.Display
	if s.Output.Window {
		displays = append(displays, app.NewWindow("airkeys"))
	}

	var t *tray.Tray
	hooks := app.Hooks{}
	if s.Output.Tray {
		t = tray.New()
		hooks.OnKey = func(p session.Press, text string) {
			t.SetLastKey(p.Key.Label)
			t.SetText(text)
		}
		hooks.OnEnabled = t.SetEnabled
	}

	application := app.New(app.Config{
		Camera: capture.NewCameraWithOptions(capture.Options{
			Device: s.Capture.Device,
			Width:  s.Capture.Width,
			Height: s.Capture.Height,
			FPS:    s.Capture.FPS,
		}),
		Detector: newDetector(s.Capture.MediaPipe, logger),
		Session: session.Options{
			ClickThreshold: s.Typing.ClickThreshold,
			ClickDelay:     s.Typing.ClickDelay,
			BlinkDelay:     s.Typing.BlinkDelay,
		},
		Render:          render.Options{Skeleton: s.Typing.Skeleton},
		FPS:             s.Capture.FPS,
		Mirror:          s.Capture.Mirror,
		MotionThreshold: s.Capture.Motion,
		Store:           st,
		Forwarder:       fwd,
		Frames:          frames,
		Events:          events,
		Displays:        displays,
		Hooks:           hooks,
		Logger:          logger,
	})

	if s.Output.Serve != "" {
		srv := server.New(server.Config{
			StaticDir:  s.Output.Static,
			Store:      st,
			Frames:     frames,
			Events:     events,
			Controller: application,
			Logger:     logger,
		})
		go func() {
			if err := srv.Serve(ctx, s.Output.Serve); err != nil {
				logger.Error("server failed", "addr", s.Output.Serve, "error", err)
			}
		}()
		logger.Info("viewer available", "url", viewerURL(s.Output.Serve))
	} else {
		defer frames.Close()
		defer events.Close()
	}

	if t == nil {
		return finish(application.Run(ctx), logger)
	}

	// The tray owns the main thread; the frame loop runs beside it.
	t.OnToggle(application.SetEnabled)
	t.OnQuit(stop)
	if s.Output.Serve != "" {
		url := viewerURL(s.Output.Serve)
		t.OnViewer(func() {
			if err := openBrowser(url); err != nil {
				logger.Warn("failed to open viewer", "url", url, "error", err)
			}
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
		t.Quit()
	}()
	t.Run()
	stop()
	return finish(<-done, logger)
}

// finish logs a frame source failure and exits cleanly.
func finish(err error, logger *slog.Logger) error {
	if errors.Is(err, app.ErrFrameSource) {
		logger.Error("camera stopped", "error", err)
		return nil
	}
	return err
}

func openStore(path string, logger *slog.Logger) (*store.Store, error) {
	if path == "" {
		logger.Info("typing history disabled")
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("store opened", "path", path)
	return st, nil
}

func startForwarder(cfg config.Plugins, logger *slog.Logger) (*plugin.Forwarder, error) {
	mgr := plugin.NewManager(cfg.Dir, logger)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}
	p, err := mgr.Get(cfg.Forward)
	if err != nil {
		return nil, fmt.Errorf("forward plugin %q: %w", cfg.Forward, err)
	}
	if !p.Manifest.Supports(plugin.ActionKeystroke) {
		return nil, fmt.Errorf("plugin %q does not support %s", p.Manifest.Name, plugin.ActionKeystroke)
	}
	logger.Info("forwarding keys", "plugin", p.Manifest.Name)
	return plugin.NewForwarder(plugin.NewExecutor(cfg.Timeout), p, plugin.DefaultQueueSize, logger), nil
}

// newDetector prefers MediaPipe and falls back to a detector that never sees
// hands, so the keyboard still renders.
func newDetector(script string, logger *slog.Logger) detector.Detector {
	cfg := detector.DefaultConfig()
	cfg.ScriptPath = script

	mp, err := detector.NewMediaPipeDetector(cfg)
	if err != nil {
		logger.Warn("MediaPipe not available, no hands will be detected", "error", err)
		return detector.NewMockDetector()
	}
	logger.Info("using MediaPipe hand detection")
	return mp
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
