package plugin

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ayusman/airkeys/internal/logging"
)

// DefaultQueueSize is the number of key presses a Forwarder buffers.
const DefaultQueueSize = 64

// Keystroke is a key press handed to a plugin.
type Keystroke struct {
	Label string
	Text  string
}

// Forwarder sends key presses to one plugin on a background goroutine so
// the frame loop never waits on a subprocess. When the queue is full new
// key presses are dropped.
type Forwarder struct {
	runner Runner
	plugin *Plugin
	logger *slog.Logger
	queue  chan Keystroke

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewForwarder starts a worker that delivers keystrokes to p through runner.
func NewForwarder(runner Runner, p *Plugin, queueSize int, logger *slog.Logger) *Forwarder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &Forwarder{
		runner: runner,
		plugin: p,
		logger: logging.OrDefault(logger).With("component", "forwarder", "plugin", p.Manifest.Name),
		queue:  make(chan Keystroke, queueSize),
		cancel: cancel,
	}

	f.wg.Add(1)
	go f.run(ctx)
	return f
}

// Forward queues a key press. It reports false when the key was dropped
// or the forwarder is closed.
func (f *Forwarder) Forward(k Keystroke) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false
	}

	select {
	case f.queue <- k:
		return true
	default:
		f.dropped.Add(1)
		f.logger.Warn("dropping key press, plugin is behind", "label", k.Label)
		return false
	}
}

func (f *Forwarder) run(ctx context.Context) {
	defer f.wg.Done()

	for k := range f.queue {
		params, _ := json.Marshal(KeystrokeParams{Key: k.Label})
		req := &Request{
			Action: ActionKeystroke,
			Key:    k.Label,
			Text:   k.Text,
			Params: params,
		}

		resp, err := f.runner.Execute(ctx, f.plugin, req)
		switch {
		case err != nil:
			f.failed.Add(1)
			f.logger.Error("plugin execution failed", "label", k.Label, "error", err)
		case !resp.Success:
			f.failed.Add(1)
			f.logger.Warn("plugin rejected key press", "label", k.Label, "error", resp.Error)
		default:
			f.sent.Add(1)
			f.logger.Debug("forwarded key press", "label", k.Label)
		}
	}
}

// Stats returns counts of delivered, failed and dropped key presses.
func (f *Forwarder) Stats() (sent, failed, dropped int64) {
	return f.sent.Load(), f.failed.Load(), f.dropped.Load()
}

// Close drains queued key presses and stops the worker.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	f.wg.Wait()
	f.cancel()
}

// Abort stops the worker without waiting for queued key presses.
func (f *Forwarder) Abort() {
	f.cancel()
	f.Close()
}
