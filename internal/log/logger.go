// SPDX-License-Identifier: MIT
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelFatal
)

// statusChar is the single-column marker that leads every line.
func (l LogLevel) statusChar() byte {
	switch l {
	case LevelDebug:
		return 'D'
	case LevelInfo:
		return '-'
	case LevelWarn:
		return 'W'
	case LevelError:
		return 'E'
	default:
		return '!'
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "CRITICAL":
		return LevelCritical, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// --- Global Logger State ---

// currentLevel holds the current global log level atomically.
var currentLevel atomic.Uint32

// logger is the standard logger instance used internally. Lines carry their
// own frame and elapsed time columns instead of a wall-clock prefix.
var logger = stdlog.New(os.Stderr, "", 0)

var (
	startTime   atomic.Int64
	frameSource atomic.Pointer[func() uint64]
)

func init() {
	SetLevel(LevelInfo)
	ResetElapsed()
}

// ResetElapsed restarts the elapsed milliseconds column from zero.
func ResetElapsed() {
	startTime.Store(time.Now().UnixMilli())
}

// SetFrameSource installs the function that reports how many sample frames
// have been processed. A nil source prints zero.
func SetFrameSource(fn func() uint64) {
	if fn == nil {
		frameSource.Store(nil)
		return
	}
	frameSource.Store(&fn)
}

func currentFrame() uint64 {
	if fn := frameSource.Load(); fn != nil {
		return (*fn)()
	}
	return 0
}

// prefix renders the status, frame and elapsed time columns.
func prefix(level LogLevel) string {
	elapsed := time.Now().UnixMilli() - startTime.Load()
	return fmt.Sprintf("%c %08d %06d [%s]", level.statusChar(), currentFrame(), elapsed, level)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects all log output. Tests use this to capture lines.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// shouldLog checks if a message at the given level should be logged based on the current global level.
func shouldLog(level LogLevel) bool {
	return level >= GetLevel()
}

func output(level LogLevel, msg string) {
	if shouldLog(level) {
		logger.Printf("%s %s", prefix(level), msg)
	}
}

// --- Public Logging Functions ---

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) {
	output(LevelDebug, fmt.Sprintf(format, v...))
}

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) {
	output(LevelInfo, fmt.Sprintf(format, v...))
}

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) {
	output(LevelWarn, fmt.Sprintf(format, v...))
}

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) {
	output(LevelError, fmt.Sprintf(format, v...))
}

// Criticalf logs a formatted critical message. Critical messages describe
// conditions that abort the current run.
func Criticalf(format string, v ...any) {
	output(LevelCritical, fmt.Sprintf(format, v...))
}

// Fatalf logs a formatted fatal message and exits the application.
// Fatal messages are always logged regardless of the current level.
func Fatalf(format string, v ...any) {
	logger.Fatalf("%s %s", prefix(LevelFatal), fmt.Sprintf(format, v...))
}

// InternalErrorf reports a condition that should not be reachable no matter
// what the user passed in. These are kept apart from configuration errors so
// that they stand out in a log.
func InternalErrorf(format string, v ...any) {
	output(LevelCritical, "internal error: "+fmt.Sprintf(format, v...))
}

// Unsupportedf reports a requested feature that this host does not provide.
func Unsupportedf(format string, v ...any) {
	output(LevelWarn, "unsupported feature: "+fmt.Sprintf(format, v...))
}

// Deprecatedf reports use of a deprecated host call by a plugin.
func Deprecatedf(format string, v ...any) {
	output(LevelWarn, "deprecated: "+fmt.Sprintf(format, v...))
}

// --- Functions without formatting (convenience) ---

// Debug logs a debug message if the level is appropriate.
func Debug(v ...any) {
	output(LevelDebug, fmt.Sprint(v...))
}

// Info logs an info message if the level is appropriate.
func Info(v ...any) {
	output(LevelInfo, fmt.Sprint(v...))
}

// Warn logs a warning message if the level is appropriate.
func Warn(v ...any) {
	output(LevelWarn, fmt.Sprint(v...))
}

// Error logs an error message if the level is appropriate.
func Error(v ...any) {
	output(LevelError, fmt.Sprint(v...))
}

// Fatal logs a fatal message and exits the application.
func Fatal(v ...any) {
	logger.Fatalf("%s %s", prefix(LevelFatal), fmt.Sprint(v...))
}
