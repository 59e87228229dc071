// FILE: lixenwraith/sinklog/utility.go
package sinklog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/multierr"
)

// diagnosticPrefix marks lines on the diagnostic stream
const diagnosticPrefix = "sinklog: "

var (
	diagMu  sync.Mutex
	diagOut io.Writer = os.Stderr
)

// SetDiagnosticOutput redirects the diagnostic stream; nil silences it.
// It returns the previous writer.
func SetDiagnosticOutput(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	diagMu.Lock()
	prev := diagOut
	diagOut = w
	diagMu.Unlock()
	return prev
}

// internalLog writes to the diagnostic stream. The logging system cannot report its own failures through itself.
func internalLog(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	diagMu.Lock()
	fmt.Fprint(diagOut, diagnosticPrefix+msg)
	diagMu.Unlock()
}

// getTrace returns a function call trace string.
func getTrace(depth int64, skip int) string {
	if depth <= 0 || depth > 10 {
		return ""
	}
	pc := make([]uintptr, int(depth)+1)
	n := runtime.Callers(skip+1, pc)
	if n == 0 {
		return "(unknown)"
	}
	frames := runtime.CallersFrames(pc[:n])
	var trace []string
	for len(trace) < int(depth) {
		frame, more := frames.Next()
		trace = append(trace, shortFuncName(frame.Function))
		if !more {
			break
		}
	}
	if len(trace) == 0 {
		return "(unknown)"
	}
	// Reverse for caller -> callee order
	for i, j := 0, len(trace)-1; i < j; i, j = i+1, j-1 {
		trace[i], trace[j] = trace[j], trace[i]
	}
	return strings.Join(trace, " -> ")
}

// shortFuncName reduces a qualified function name to its last element, naming closures by their parent
func shortFuncName(full string) string {
	funcName := filepath.Base(full)
	parts := strings.Split(funcName, ".")
	lastPart := parts[len(parts)-1]
	if strings.HasPrefix(lastPart, "func") && len(lastPart) > 4 {
		for _, r := range lastPart[4:] {
			if !unicode.IsDigit(r) {
				return lastPart
			}
		}
		return fmt.Sprintf("(anonymous in %s)", strings.Join(parts[1:len(parts)-1], "."))
	}
	return lastPart
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, diagnosticPrefix) {
		format = diagnosticPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(errs ...error) error {
	return multierr.Combine(errs...)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}
