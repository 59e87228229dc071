// FILE: lixenwraith/sinklog/compat/structured_gnet.go
package compat

import (
	"fmt"
	"regexp"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/record"
)

var (
	verbPattern = regexp.MustCompile(`%[-+# 0]*\d*(?:\.\d+)?[a-zA-Z%]`)
	keyPattern  = regexp.MustCompile(`(\w+)\s*[:=]\s*$`)
)

// extractFields pairs "key=%v" and "key: %v" placeholders in a printf format
// with their arguments. Verbs without a key still consume an argument.
func extractFields(format string, args []any) []any {
	var kv []any
	arg, prev := 0, 0
	for _, loc := range verbPattern.FindAllStringIndex(format, -1) {
		if format[loc[1]-1] == '%' {
			prev = loc[1]
			continue
		}
		if arg >= len(args) {
			break
		}
		if m := keyPattern.FindStringSubmatch(format[prev:loc[0]]); m != nil {
			kv = append(kv, m[1], args[arg])
		}
		arg++
		prev = loc[1]
	}
	return kv
}

// StructuredGnetAdapter is a gnet adapter that also records the key=value
// placeholders of each format string as extra fields
type StructuredGnetAdapter struct {
	*GnetAdapter
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *sinklog.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{GnetAdapter: NewGnetAdapter(logger, opts...)}
}

// Debugf logs at debug level with extracted fields
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	if a.out.Enabled(record.LevelDebug) {
		a.out.Log(record.LevelDebug, fmt.Sprintf(format, args...), extractFields(format, args)...)
	}
}

// Infof logs at info level with extracted fields
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	if a.out.Enabled(record.LevelInfo) {
		a.out.Log(record.LevelInfo, fmt.Sprintf(format, args...), extractFields(format, args)...)
	}
}

// Warnf logs at warning level with extracted fields
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	if a.out.Enabled(record.LevelWarning) {
		a.out.Log(record.LevelWarning, fmt.Sprintf(format, args...), extractFields(format, args)...)
	}
}

// Errorf logs at error level with extracted fields
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	if a.out.Enabled(record.LevelError) {
		a.out.Log(record.LevelError, fmt.Sprintf(format, args...), extractFields(format, args)...)
	}
}

// Fatalf logs at critical level with extracted fields, flushes and runs the fatal handler
func (a *StructuredGnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.out.Log(record.LevelCritical, msg, append(extractFields(format, args), "fatal", true)...)
	flushBeforeExit(a.logger)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
