// Package logging provides the leveled, prefix-scoped console logger shared by
// the desktop host, the MCP tool server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config value such as "debug" or "warn" to a Level.
// Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// Logger writes timestamped lines to an io.Writer. A nil *Logger discards
// everything, so components can be constructed without one.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	minLevel Level
	prefix   string
}

// New creates a logger writing to out (stderr when nil).
func New(out io.Writer, minLevel Level, prefix string) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{mu: &sync.Mutex{}, out: out, minLevel: minLevel, prefix: prefix}
}

// Default returns an info-level logger on stderr.
func Default() *Logger {
	return New(os.Stderr, LevelInfo, "")
}

// WithPrefix creates a sub-logger sharing the same output.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	p := prefix
	if l.prefix != "" {
		p = l.prefix + "/" + prefix
	}
	return &Logger{mu: l.mu, out: l.out, minLevel: l.minLevel, prefix: p}
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.minLevel
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}
	msg := fmt.Sprintf(format, args...)
	levelColors[level].Fprintf(l.out, "%s %-5s %s%s\n", time.Now().Format("15:04:05.000"), level, prefix, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

// Writer returns an io.Writer that logs each write as one line at level.
// It lets libraries with their own access log share this output.
func (l *Logger) Writer(level Level) io.Writer {
	return lineWriter{l: l, level: level}
}

type lineWriter struct {
	l     *Logger
	level Level
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.l.log(w.level, "%s", strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}
