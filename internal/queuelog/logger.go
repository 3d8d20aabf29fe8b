// Package queuelog provides structured, level-gated logging for the
// dedupqueue variants.
//
// Construction and Stop are the only calls that ever log — TryWrite and
// Read are hot paths and never touch a Logger — so the minimum level is
// resolved once, at construction, rather than threaded through every call:
//
//	log := queuelog.New("1LOCK", "")                     // reads DEDUPQUEUE_LOG_LEVEL
//	log := queuelog.New("1LOCK", cfg.LogLevel)           // explicit override
//	log.Infof("construct", "capacity=%s", queuelog.Grouped(capacity))
//
// Each entry is written as a single line with fixed-width columns:
//
//	2006-01-02 15:04:05.000 | MODULE         | ACTION                 | LEVEL | message
package queuelog

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Level represents a log severity, ordered lowest to highest.
type Level int

const (
	LevelDebug Level = iota // fine-grained diagnostic output
	LevelInfo               // normal operational messages
	LevelWarn               // unexpected but recoverable conditions
	LevelError              // failures requiring attention
)

// label is the fixed-width column each Level renders as.
func (l Level) label() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN "
	case LevelError:
		return "ERROR"
	default:
		return "INFO "
	}
}

// Logger writes structured log lines for a single queue variant.
type Logger struct {
	module string
	level  Level
	out    *log.Logger
}

// New creates a Logger for the given module (e.g. "1LOCK", "SPLIT-SHARDED").
// If levelOverride is empty, the minimum level comes from the
// DEDUPQUEUE_LOG_LEVEL environment variable (default "info"); otherwise
// levelOverride is used directly. The queue variants pass an empty
// override, so cmd/queuebench forwards its layered-config log level by
// setting DEDUPQUEUE_LOG_LEVEL before it constructs a queue.
func New(module, levelOverride string) *Logger {
	if levelOverride == "" {
		levelOverride = os.Getenv("DEDUPQUEUE_LOG_LEVEL")
	}
	return &Logger{
		module: strings.ToUpper(module),
		level:  parseLevel(levelOverride),
		out:    log.New(os.Stderr, "", 0),
	}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(action, msg string) { l.emit(LevelDebug, action, msg) }

// Info logs at INFO level.
func (l *Logger) Info(action, msg string) { l.emit(LevelInfo, action, msg) }

// Warn logs at WARN level.
func (l *Logger) Warn(action, msg string) { l.emit(LevelWarn, action, msg) }

// Error logs at ERROR level.
func (l *Logger) Error(action, msg string) { l.emit(LevelError, action, msg) }

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(action, format string, args ...any) {
	l.emit(LevelDebug, action, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(action, format string, args ...any) {
	l.emit(LevelInfo, action, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at WARN level.
func (l *Logger) Warnf(action, format string, args ...any) {
	l.emit(LevelWarn, action, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(action, format string, args ...any) {
	l.emit(LevelError, action, fmt.Sprintf(format, args...))
}

// emit writes one log line if level meets the Logger's configured minimum.
func (l *Logger) emit(level Level, action, msg string) {
	if level < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.out.Printf("%s | %-14s | %-22s | %s | %s", ts, l.module, action, level.label(), msg)
}

// parseLevel converts a string to a Level, defaulting to LevelInfo for an
// empty or unrecognized string.
func parseLevel(s string) Level {
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

// groupPrinter renders integers with a thousands separator, the Go
// equivalent of the original C++ implementation's locale-grouped
// printf("%'u") capacity message.
var groupPrinter = message.NewPrinter(language.English)

// Grouped renders n with a thousands separator, e.g. Grouped(12345) == "12,345".
func Grouped(n uint32) string {
	return groupPrinter.Sprintf("%d", n)
}
