// Package logger is a small leveled logger shared by the wizard, the
// submission client and the CLI. Output is discarded unless a log file is
// configured, so the full-screen terminal UI is never written over.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Environment variables read by New.
const (
	EnvLevel = "LEADWIZARD_LOG_LEVEL"
	EnvFile  = "LEADWIZARD_LOG_FILE"
)

// String returns the string representation of a log level
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

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

type sink struct {
	mu     sync.Mutex
	level  Level
	logger *log.Logger
	file   *os.File
}

// Logger writes leveled, printf-style messages. Loggers returned by Named
// share their parent's output and level.
type Logger struct {
	*sink
	component string
}

// Default is the process-wide logger.
var Default *Logger

func init() {
	Default = New()
}

// New creates a logger configured from LEADWIZARD_LOG_LEVEL and
// LEADWIZARD_LOG_FILE.
func New() *Logger {
	l := &Logger{sink: &sink{
		level:  LevelInfo,
		logger: log.New(io.Discard, "", log.LstdFlags),
	}}
	_ = l.Configure(os.Getenv(EnvLevel), os.Getenv(EnvFile))
	return l
}

// Configure applies a level and log file. Empty values leave the current
// setting alone. An invalid level is reported but the file is still applied.
func (l *Logger) Configure(level, file string) error {
	var levelErr error
	if level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			levelErr = err
		} else {
			l.SetLevel(parsed)
		}
	}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		l.mu.Lock()
		if l.file != nil {
			_ = l.file.Close()
		}
		l.file = f
		l.logger.SetOutput(f)
		l.mu.Unlock()
	}
	return levelErr
}

// Named returns a logger that prefixes messages with component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// Close closes the logger and any open file handles
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.logger.SetOutput(io.Discard)
		return err
	}
	return nil
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	if l.component != "" {
		l.logger.Printf("[%s] %s: %s", level, l.component, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// Package-level functions that use the default logger

// Debug logs a debug message using the default logger
func Debug(format string, v ...interface{}) {
	Default.Debug(format, v...)
}

// Info logs an info message using the default logger
func Info(format string, v ...interface{}) {
	Default.Info(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...interface{}) {
	Default.Warn(format, v...)
}

// Error logs an error message using the default logger
func Error(format string, v ...interface{}) {
	Default.Error(format, v...)
}

// Named returns a component logger derived from the default logger.
func Named(component string) *Logger {
	return Default.Named(component)
}

// Close closes the default logger
func Close() error {
	return Default.Close()
}
