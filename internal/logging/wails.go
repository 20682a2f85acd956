package logging

import (
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// wailsAdapter routes Wails framework logs through a Logger.
type wailsAdapter struct {
	l *Logger
}

// Wails adapts l to the logger interface expected by wails options.
func Wails(l *Logger) wailslogger.Logger {
	return &wailsAdapter{l: l.WithPrefix("wails")}
}

// WailsLevel maps a Level to the matching Wails log level.
func WailsLevel(level Level) wailslogger.LogLevel {
	switch level {
	case LevelDebug:
		return wailslogger.DEBUG
	case LevelWarn:
		return wailslogger.WARNING
	case LevelError:
		return wailslogger.ERROR
	default:
		return wailslogger.INFO
	}
}

func (w *wailsAdapter) Print(message string)   { w.l.Infof("%s", message) }
func (w *wailsAdapter) Trace(message string)   { w.l.Debugf("%s", message) }
func (w *wailsAdapter) Debug(message string)   { w.l.Debugf("%s", message) }
func (w *wailsAdapter) Info(message string)    { w.l.Infof("%s", message) }
func (w *wailsAdapter) Warning(message string) { w.l.Warnf("%s", message) }
func (w *wailsAdapter) Error(message string)   { w.l.Errorf("%s", message) }
func (w *wailsAdapter) Fatal(message string)   { w.l.Errorf("fatal: %s", message) }
