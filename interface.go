// FILE: lixenwraith/sinklog/interface.go
package sinklog

import (
	"fmt"

	"github.com/lixenwraith/sinklog/record"
)

// Sink is one log output destination. Emit must be safe for concurrent use;
// after Close it returns ErrSinkClosed without doing I/O.
type Sink interface {
	Emit(r *record.Record) error
	Close() error
}

// Flusher is implemented by sinks that buffer output
type Flusher interface {
	Flush() error
}

// StatsReporter is implemented by sinks that keep counters
type StatsReporter interface {
	Stats() SinkStats
}

// Logger methods for logging at the default levels.
// Arguments after the message are alternating keys and values stored in Record.Extra.

// Trace logs a message at trace level.
func (l *Logger) Trace(msg string, kv ...any) {
	l.log(record.LevelTrace, msg, kv, nil)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(record.LevelDebug, msg, kv, nil)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(record.LevelInfo, msg, kv, nil)
}

// Success logs a message at success level.
func (l *Logger) Success(msg string, kv ...any) {
	l.log(record.LevelSuccess, msg, kv, nil)
}

// Warning logs a message at warning level.
func (l *Logger) Warning(msg string, kv ...any) {
	l.log(record.LevelWarning, msg, kv, nil)
}

// Warn is an alias of Warning.
func (l *Logger) Warn(msg string, kv ...any) {
	l.log(record.LevelWarning, msg, kv, nil)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, kv ...any) {
	l.log(record.LevelError, msg, kv, nil)
}

// Critical logs a message at critical level.
func (l *Logger) Critical(msg string, kv ...any) {
	l.log(record.LevelCritical, msg, kv, nil)
}

// Log logs a message at an arbitrary level, including custom ones.
func (l *Logger) Log(level record.Level, msg string, kv ...any) {
	l.log(level, msg, kv, nil)
}

// Logf formats the message with fmt.Sprintf before logging it.
func (l *Logger) Logf(level record.Level, format string, args ...any) {
	if level.No < l.core.minLevel.Load() {
		return
	}
	l.log(level, fmt.Sprintf(format, args...), nil, nil)
}

// Exception logs a message at error level with err attached as exception info.
func (l *Logger) Exception(err error, msg string, kv ...any) {
	l.log(record.LevelError, msg, kv, err)
}

// Catch runs fn and logs a returned error or recovered panic at error level.
// The error, or the panic converted to an error, is returned.
func (l *Logger) Catch(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = recoveredError(p)
			l.log(record.LevelError, "An error has been caught in function", []any{"panic", true}, err)
		}
	}()
	if err = fn(); err != nil {
		l.log(record.LevelError, "An error has been caught in function", nil, err)
	}
	return err
}
