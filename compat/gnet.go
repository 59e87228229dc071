// FILE: lixenwraith/sinklog/compat/gnet.go
package compat

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/record"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

// fatalFlushTimeout bounds the flush performed before the fatal handler runs
const fatalFlushTimeout = 2 * time.Second

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps a sinklog.Logger to implement the gnet logging.Logger interface
type GnetAdapter struct {
	logger       *sinklog.Logger
	out          *sinklog.Logger
	fatalHandler func(msg string)
}

// NewGnetAdapter creates a gnet-compatible logger adapter.
// Records are named "gnet" and carry the source location of the gnet call site.
func NewGnetAdapter(logger *sinklog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		out:    logger.Named("gnet").Opt(sinklog.CallOptions{Depth: 1}),
		fatalHandler: func(msg string) {
			os.Exit(1)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler replaces the default os.Exit(1) run after Fatalf
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.out.Logf(record.LevelDebug, format, args...)
}

// Infof logs at info level
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.out.Logf(record.LevelInfo, format, args...)
}

// Warnf logs at warning level
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.out.Logf(record.LevelWarning, format, args...)
}

// Errorf logs at error level
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.out.Logf(record.LevelError, format, args...)
}

// Fatalf logs at critical level, flushes every sink and runs the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.out.Log(record.LevelCritical, msg, "fatal", true)
	flushBeforeExit(a.logger)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

func flushBeforeExit(l *sinklog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), fatalFlushTimeout)
	defer cancel()
	_ = l.Flush(ctx)
}
