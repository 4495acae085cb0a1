// Package log provides a simple leveled logger built on top of the standard
// library's slog package.
//
// By default it configures a global logger writing JSON (or text if
// LOG_FORMAT=text) to os.Stderr. The level is controlled globally via
// SetLevel and is typically initialized from flags in cmd/vup/root.go.
//
// SetOutput redirects log output, primarily for testing; it returns a
// function that restores the previous writer.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	logger *slog.Logger
	// globalLeveler allows dynamic level changes without rebuilding handlers.
	globalLeveler           = &slog.LevelVar{}
	outputWriter  io.Writer = os.Stderr

	// ErrInvalidLogLevel indicates an invalid log level string was provided.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")
)

func init() {
	globalLeveler.Set(slog.LevelInfo)
	configureLogger()
}

// configureLogger rebuilds the handler from the current global state
// (outputWriter and globalLeveler).
func configureLogger() {
	opts := &slog.HandlerOptions{Level: globalLeveler}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		handler = slog.NewTextHandler(outputWriter, opts)
	} else {
		handler = slog.NewJSONHandler(outputWriter, opts)
	}
	logger = slog.New(handler)
}

// SetOutput changes the output destination for the logger and returns a
// function that restores the original writer. Primarily intended for testing.
func SetOutput(w io.Writer) (restore func()) {
	originalWriter := outputWriter
	outputWriter = w
	configureLogger()
	return func() {
		outputWriter = originalWriter
		configureLogger()
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger.
func Logger() *slog.Logger {
	return logger
}

// Level is the log level type exposed by this package.
type Level int8

// Log level definitions.
const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// String returns the string representation of the log level.
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

// SetLevel changes the log level at runtime.
func SetLevel(level Level) {
	globalLeveler.Set(slog.Level(level))
}

// CurrentLevel returns the currently configured level.
func CurrentLevel() Level {
	return Level(globalLeveler.Level())
}

// ParseLevel parses a string and returns the corresponding Level. Unknown
// strings return LevelInfo together with ErrInvalidLogLevel.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLogLevel, levelStr)
	}
}
