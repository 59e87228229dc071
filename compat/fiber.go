// FILE: lixenwraith/sinklog/compat/fiber.go
package compat

import (
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/record"
)

// FiberAdapter wraps a sinklog.Logger with the method set of Fiber's
// AllLogger interface (plain, printf and key-value variants per level)
type FiberAdapter struct {
	logger       *sinklog.Logger
	out          *sinklog.Logger
	fatalHandler func(msg string)
	panicHandler func(msg string)
}

// NewFiberAdapter creates a Fiber-compatible logger adapter
func NewFiberAdapter(logger *sinklog.Logger, opts ...FiberOption) *FiberAdapter {
	adapter := &FiberAdapter{
		logger: logger,
		// Two frames: the public method and emit, fatal or raise
		out: logger.Named("fiber").Opt(sinklog.CallOptions{Depth: 2}),
		fatalHandler: func(msg string) {
			os.Exit(1)
		},
		panicHandler: func(msg string) {
			panic(msg)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FiberOption allows customizing adapter behavior
type FiberOption func(*FiberAdapter)

// WithFiberFatalHandler replaces the default os.Exit(1) run after Fatal
func WithFiberFatalHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.fatalHandler = handler
	}
}

// WithFiberPanicHandler replaces the default panic run after Panic
func WithFiberPanicHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.panicHandler = handler
	}
}

func (a *FiberAdapter) emit(level record.Level, msg string, kv []any) {
	a.out.Log(level, msg, kv...)
}

func (a *FiberAdapter) fatal(msg string, kv []any) {
	a.out.Log(record.LevelCritical, msg, append(kv, "fatal", true)...)
	flushBeforeExit(a.logger)
	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

func (a *FiberAdapter) raise(msg string, kv []any) {
	a.out.Log(record.LevelCritical, msg, append(kv, "panic", true)...)
	flushBeforeExit(a.logger)
	if a.panicHandler != nil {
		a.panicHandler(msg)
	}
}

func (a *FiberAdapter) Trace(v ...any) { a.emit(record.LevelTrace, fmt.Sprint(v...), nil) }
func (a *FiberAdapter) Debug(v ...any) { a.emit(record.LevelDebug, fmt.Sprint(v...), nil) }
func (a *FiberAdapter) Info(v ...any)  { a.emit(record.LevelInfo, fmt.Sprint(v...), nil) }
func (a *FiberAdapter) Warn(v ...any)  { a.emit(record.LevelWarning, fmt.Sprint(v...), nil) }
func (a *FiberAdapter) Error(v ...any) { a.emit(record.LevelError, fmt.Sprint(v...), nil) }

// Fatal logs at critical level, flushes and runs the fatal handler
func (a *FiberAdapter) Fatal(v ...any) { a.fatal(fmt.Sprint(v...), nil) }

// Panic logs at critical level, flushes and runs the panic handler
func (a *FiberAdapter) Panic(v ...any) { a.raise(fmt.Sprint(v...), nil) }

func (a *FiberAdapter) Tracef(format string, v ...any) {
	a.emit(record.LevelTrace, fmt.Sprintf(format, v...), nil)
}

func (a *FiberAdapter) Debugf(format string, v ...any) {
	a.emit(record.LevelDebug, fmt.Sprintf(format, v...), nil)
}

func (a *FiberAdapter) Infof(format string, v ...any) {
	a.emit(record.LevelInfo, fmt.Sprintf(format, v...), nil)
}

func (a *FiberAdapter) Warnf(format string, v ...any) {
	a.emit(record.LevelWarning, fmt.Sprintf(format, v...), nil)
}

func (a *FiberAdapter) Errorf(format string, v ...any) {
	a.emit(record.LevelError, fmt.Sprintf(format, v...), nil)
}

func (a *FiberAdapter) Fatalf(format string, v ...any) { a.fatal(fmt.Sprintf(format, v...), nil) }
func (a *FiberAdapter) Panicf(format string, v ...any) { a.raise(fmt.Sprintf(format, v...), nil) }

func (a *FiberAdapter) Tracew(msg string, kv ...any) { a.emit(record.LevelTrace, msg, kv) }
func (a *FiberAdapter) Debugw(msg string, kv ...any) { a.emit(record.LevelDebug, msg, kv) }
func (a *FiberAdapter) Infow(msg string, kv ...any)  { a.emit(record.LevelInfo, msg, kv) }
func (a *FiberAdapter) Warnw(msg string, kv ...any)  { a.emit(record.LevelWarning, msg, kv) }
func (a *FiberAdapter) Errorw(msg string, kv ...any) { a.emit(record.LevelError, msg, kv) }
func (a *FiberAdapter) Fatalw(msg string, kv ...any) { a.fatal(msg, kv) }
func (a *FiberAdapter) Panicw(msg string, kv ...any) { a.raise(msg, kv) }

// Write logs p at info level so the adapter can serve as an io.Writer
func (a *FiberAdapter) Write(p []byte) (int, error) {
	a.emit(record.LevelInfo, strings.TrimRight(string(p), "\r\n"), nil)
	return len(p), nil
}
