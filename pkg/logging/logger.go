// Package logging is kiwi's diagnostic logger. Repository operations report
// non-fatal trouble (an object that could not be removed, a file that could
// not be hashed) through a Logger; the CLI builds one from config.toml and
// the --log-level/--log-format flags. A nil or Nop logger discards records.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger receives leveled records with slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that adds args to every record.
	With(args ...any) Logger
}

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type handlerLogger struct {
	sl *slog.Logger
}

func (h handlerLogger) Debug(msg string, args ...any) { h.sl.Debug(msg, args...) }
func (h handlerLogger) Info(msg string, args ...any)  { h.sl.Info(msg, args...) }
func (h handlerLogger) Warn(msg string, args ...any)  { h.sl.Warn(msg, args...) }
func (h handlerLogger) Error(msg string, args ...any) { h.sl.Error(msg, args...) }

func (h handlerLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return h
	}
	return handlerLogger{sl: h.sl.With(args...)}
}

// NewText logs logfmt-style lines to w (stderr when nil).
func NewText(w io.Writer, level slog.Leveler) Logger {
	return fromHandler(slog.NewTextHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

// NewJSON logs one JSON object per record to w (stderr when nil).
func NewJSON(w io.Writer, level slog.Leveler) Logger {
	return fromHandler(slog.NewJSONHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

func fromHandler(h slog.Handler) Logger { return handlerLogger{sl: slog.New(h)} }

func orStderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// New builds a logger from the [log] settings of config.toml.
func New(w io.Writer, format, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewText(w, lvl), nil
	case FormatJSON:
		return NewJSON(w, lvl), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// ParseLevel maps a level name to a slog.Level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Nop returns a Logger that drops everything.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
func (n nop) With(...any) Logger { return n }
