package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger defines a minimal, printf-style logging contract shared by every
// component in the application.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

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

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

var (
	rootInstance *fileLogger
	rootOnce     sync.Once
)

// fileLogger writes timestamped component-tagged lines to aura-debug.log in
// the user's home directory. All components created through
// NewComponentLogger share one file handle.
type fileLogger struct {
	mu        sync.Mutex
	out       *log.Logger
	file      *os.File
	level     Level
	component string
}

func root() *fileLogger {
	rootOnce.Do(func() {
		rootInstance = &fileLogger{level: LevelDebug}
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path := filepath.Join(home, "aura-debug.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return
		}
		rootInstance.file = file
		rootInstance.out = log.New(file, "", 0)
	})
	return rootInstance
}

// SetLevel sets the minimum level for all component loggers.
func SetLevel(level Level) {
	r := root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level = level
}

// NewComponentLogger returns the shared application logger scoped to a
// component tag.
func NewComponentLogger(component string) Logger {
	r := root()
	return &fileLogger{
		out:       r.out,
		file:      r.file,
		level:     r.level,
		component: component,
	}
}

func (l *fileLogger) logAt(level Level, format string, args ...any) {
	r := root()
	r.mu.Lock()
	defer r.mu.Unlock()
	if level < r.level || l.out == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	if l.component != "" {
		l.out.Printf("[%s] [%s] [%s] %s", ts, level, l.component, msg)
		return
	}
	l.out.Printf("[%s] [%s] %s", ts, level, msg)
}

func (l *fileLogger) Debug(format string, args ...any) { l.logAt(LevelDebug, format, args...) }
func (l *fileLogger) Info(format string, args ...any)  { l.logAt(LevelInfo, format, args...) }
func (l *fileLogger) Warn(format string, args ...any)  { l.logAt(LevelWarn, format, args...) }
func (l *fileLogger) Error(format string, args ...any) { l.logAt(LevelError, format, args...) }
