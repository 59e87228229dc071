// FILE: lixenwraith/sinklog/default.go
package sinklog

import (
	"os"
	"sync/atomic"

	"github.com/lixenwraith/sinklog/record"
)

// Global instance for package-level functions
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(newStderrLogger())
}

// newStderrLogger builds a logger with one INFO stream sink on stderr
func newStderrLogger() *Logger {
	l := NewLogger()
	sink, err := NewStreamSink(os.Stderr, nil)
	if err != nil {
		// The default template always compiles
		panic(err)
	}
	l.Add(sink, WithLevel(record.LevelInfo))
	return l
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the package-level logger and returns the previous one.
// The caller owns the previous logger and is responsible for closing it.
func SetDefault(l *Logger) *Logger {
	if l == nil {
		l = newStderrLogger()
	}
	return defaultLogger.Swap(l)
}

// Default package-level functions that delegate to the default logger

// Trace logs a message at trace level
func Trace(msg string, kv ...any) {
	Default().log(record.LevelTrace, msg, kv, nil)
}

// Debug logs a message at debug level
func Debug(msg string, kv ...any) {
	Default().log(record.LevelDebug, msg, kv, nil)
}

// Info logs a message at info level
func Info(msg string, kv ...any) {
	Default().log(record.LevelInfo, msg, kv, nil)
}

// Success logs a message at success level
func Success(msg string, kv ...any) {
	Default().log(record.LevelSuccess, msg, kv, nil)
}

// Warning logs a message at warning level
func Warning(msg string, kv ...any) {
	Default().log(record.LevelWarning, msg, kv, nil)
}

// Error logs a message at error level
func Error(msg string, kv ...any) {
	Default().log(record.LevelError, msg, kv, nil)
}

// Critical logs a message at critical level
func Critical(msg string, kv ...any) {
	Default().log(record.LevelCritical, msg, kv, nil)
}

// Exception logs a message at error level with exception info
func Exception(err error, msg string, kv ...any) {
	Default().log(record.LevelError, msg, kv, err)
}
