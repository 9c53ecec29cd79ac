// Package logger writes structured JSON log lines through log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a leveled JSON logger. Arguments after the message are
// alternating keys and values, as with slog.
type Logger struct {
	sl *slog.Logger
}

// ParseLevel maps a LOG_LEVEL value onto a slog level. Unknown values
// log at info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// New returns a Logger writing to w at the given minimum level.
// A nil w writes to stdout.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{sl: slog.New(h)}
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return &Logger{sl: slog.New(slog.DiscardHandler)}
}

// With returns a Logger that adds args to every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

// Enabled reports whether lines at lvl are written.
func (l *Logger) Enabled(lvl slog.Level) bool {
	return l.sl.Enabled(context.Background(), lvl)
}

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }
