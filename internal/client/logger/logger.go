package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"nexus/internal/client/events"
)

// Level orders log severities.
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
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a NEXUS_LOG_LEVEL value to a Level. Unknown values
// fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Logger wraps standard logging with event bus integration for TUI mode.
type Logger struct {
	mu       sync.RWMutex
	eventBus *events.Bus
	tuiMode  bool
	level    Level
}

var (
	defaultLogger  = &Logger{level: LevelInfo}
	originalWriter io.Writer
)

// SetEventBus sets the event bus for TUI mode logging.
func SetEventBus(bus *events.Bus) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.eventBus = bus
}

// SetLevel sets the minimum level that is emitted.
func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// SetTUIMode enables or disables TUI mode.
// In TUI mode, logs are sent to event bus instead of stderr.
func SetTUIMode(enabled bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if defaultLogger.tuiMode == enabled {
		return
	}
	defaultLogger.tuiMode = enabled

	if enabled {
		// Capture original writer and discard standard log output
		originalWriter = log.Writer()
		log.SetOutput(io.Discard)
	} else if originalWriter != nil {
		log.SetOutput(originalWriter)
	}
}

// Debug logs a diagnostic message.
func Debug(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, format, args...)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	tuiMode := l.tuiMode
	bus := l.eventBus
	minLevel := l.level
	l.mu.RUnlock()

	if level < minLevel {
		return
	}
	message := fmt.Sprintf(format, args...)

	if tuiMode && bus != nil {
		bus.PublishLog(level.String(), message)
	} else {
		// Fallback to standard log
		log.Print(message)
	}
}
