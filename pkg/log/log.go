package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Level names prefixed to every line.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger. Obtain one with ForService.
type Logger struct {
	name string
	std  *log.Logger
}

// writerHolder keeps atomic.Value storing a single concrete type no matter
// which io.Writer is installed.
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug  atomic.Bool
	serviceDebug sync.Map // map[string]*atomic.Bool
	loggers      sync.Map // map[string]*Logger
	outputWriter atomic.Value
)

func init() {
	outputWriter.Store(writerHolder{w: os.Stderr})
}

// ForService returns the memoized logger for name.
func ForService(name string) *Logger {
	if name == "" {
		name = "reposearch"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	w := outputWriter.Load().(writerHolder).w
	logger := &Logger{name: name, std: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

// SetGlobalDebug turns debug output on or off for every logger.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// GlobalDebug reports whether debug output is enabled globally.
func GlobalDebug() bool {
	return globalDebug.Load()
}

// EnableDebugFor turns on debug output for a single logger.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor reverts EnableDebugFor.
func DisableDebugFor(name string) {
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether name logs debug lines.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput routes existing and future loggers to w. A nil writer is ignored.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputWriter.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) output(level, msg string) {
	l.std.Println(level + " [" + l.name + ">] " + msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.output(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.output(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.output(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs only when debug is enabled for this logger.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.output(LevelDebug, fmt.Sprintf(format, args...))
}
