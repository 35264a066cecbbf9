// Package logger provides leveled logging for the projctl CLI tool.
//
// The logger package outputs debug information to stderr, separate from
// the user-facing output that goes to stdout. This allows for verbose
// debugging without interfering with normal CLI output or JSON formatting.
// It is a thin package-level facade over a zap SugaredLogger.
//
// # Log Levels
//
// Four log levels are supported, in order of severity:
//   - Debug: Detailed information for debugging
//   - Info: General operational information
//   - Warn: Warning conditions that don't prevent operation
//   - Error: Error conditions that affect operation
//
// # Initialization
//
// Initialize the logger based on the --verbose flag:
//
//	logger.Init(verbose)  // verbose=true enables Debug level
//
// By default (verbose=false), only Warn and Error messages are shown.
//
// # Usage
//
//	logger.Debug("Writing %s", path)
//	logger.Warn("Service %s shares domain %s with %s", svc, domain, other)
//
//	logger.DebugFields("Artifact written", map[string]interface{}{
//	    "path": path,
//	    "mode": "0644",
//	})
//
// # Output Format
//
//	[LEVEL] YYYY-MM-DD HH:MM:SS message {"key": "value"}
//	[DEBUG] 2026-10-19 10:30:45 Writing /opt/projects/myapp/README.md
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
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

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	mu     sync.Mutex
	level  Level
	atom   zap.AtomicLevel
	output io.Writer
	sugar  *zap.SugaredLogger
}

// Global logger instance.
var std = newLogger(LevelWarn, os.Stderr)

func newLogger(level Level, w io.Writer) *Logger {
	l := &Logger{
		level:  level,
		atom:   zap.NewAtomicLevelAt(level.zapLevel()),
		output: w,
	}
	l.build()
	return l
}

// build recreates the zap core for the current output. Callers hold mu
// (or own l exclusively).
func (l *Logger) build() {
	encCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      bracketLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(l.output)),
		l.atom,
	)
	l.sugar = zap.New(core).Sugar()
}

// bracketLevelEncoder writes "[LEVEL] timestamp" so that every line starts
// with the level, which the console encoder's fixed key order can't do on
// its own.
func bracketLevelEncoder(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + lvl.CapitalString() + "]")
	enc.AppendString(time.Now().Format("2006-01-02 15:04:05"))
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug and Info levels are enabled.
// When verbose is false, only Warn and Error are shown.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
	std.atom.SetLevel(level.zapLevel())
}

// SetOutput sets the output destination for the global logger.
// A nil writer restores the default, os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.output = w
	std.build()
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// log writes a formatted message at the specified level.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	switch level {
	case LevelDebug:
		l.sugar.Debug(msg)
	case LevelInfo:
		l.sugar.Info(msg)
	case LevelWarn:
		l.sugar.Warn(msg)
	default:
		l.sugar.Error(msg)
	}
}

// logFields writes a message with structured key-value fields.
func (l *Logger) logFields(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Sort field keys for consistent output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}

	switch level {
	case LevelDebug:
		l.sugar.Debugw(msg, kv...)
	case LevelInfo:
		l.sugar.Infow(msg, kv...)
	case LevelWarn:
		l.sugar.Warnw(msg, kv...)
	default:
		l.sugar.Errorw(msg, kv...)
	}
}

// Debug logs a debug message.
// Only shown when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message.
// Only shown when verbose mode is enabled.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
// Always shown regardless of verbose mode.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message.
// Always shown regardless of verbose mode.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelError, msg, fields)
}

// LogError logs an error with additional context message.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	std.log(LevelError, "%s: %v", msg, err)
}

// Sync flushes any buffered log entries.
func Sync() {
	std.mu.Lock()
	defer std.mu.Unlock()
	_ = std.sugar.Sync()
}
