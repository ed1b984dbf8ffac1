// Package logging builds the application's slog.Logger.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, everything at or above the level goes to stderr
// and to the file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below Debug and logs every processed frame.
const LevelTrace slog.Level = -8

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// below passes only records under a level to the wrapped handler.
type below struct {
	max slog.Level
	slog.Handler
}

func (b below) Enabled(ctx context.Context, level slog.Level) bool {
	return level < b.max && b.Handler.Enabled(ctx, level)
}

func (b below) WithAttrs(attrs []slog.Attr) slog.Handler {
	return below{max: b.max, Handler: b.Handler.WithAttrs(attrs)}
}

func (b below) WithGroup(name string) slog.Handler {
	return below{max: b.max, Handler: b.Handler.WithGroup(name)}
}

// New builds a logger writing to the given console streams and an optional file.
func New(level slog.Level, stdout, stderr, file io.Writer) *slog.Logger {
	var hs fanout
	if file == nil {
		hs = append(hs,
			below{max: slog.LevelError, Handler: slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level})},
			slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}),
		)
	} else {
		hs = append(hs,
			slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}),
		)
	}
	return slog.New(hs)
}

// Setup creates the process logger from a level name and optional file path.
// The returned closers must be closed on exit.
func Setup(levelName, path string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(levelName)
	if path == "" {
		return New(level, os.Stdout, os.Stderr, nil), nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(level, os.Stdout, os.Stderr, f), []io.Closer{f}, nil
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
