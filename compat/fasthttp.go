// FILE: lixenwraith/sinklog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/record"
	"github.com/valyala/fasthttp"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps a sinklog.Logger to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	logger        *sinklog.Logger
	out           *sinklog.Logger
	defaultLevel  record.Level
	levelDetector func(string) (record.Level, bool)
}

// NewFastHTTPAdapter creates a fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *sinklog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		out:           logger.Named("fasthttp").Opt(sinklog.CallOptions{Depth: 1}),
		defaultLevel:  record.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when the detector finds no match
func WithDefaultLevel(level record.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector replaces the message-based level detection. A nil detector disables it.
func WithLevelDetector(detector func(string) (record.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp.Logger
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\r\n")

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}
	a.out.Log(level, msg)
}

// DetectLogLevel guesses a level from keywords in a fasthttp message.
// It reports false when no keyword matches.
func DetectLogLevel(msg string) (record.Level, bool) {
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, "error", "failed", "fatal", "panic"):
		return record.LevelError, true
	case containsAny(lower, "warn", "deprecated"):
		return record.LevelWarning, true
	case containsAny(lower, "debug", "trace"):
		return record.LevelDebug, true
	}
	return record.Level{}, false
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
