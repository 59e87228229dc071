// FILE: lixenwraith/sinklog/record/errinfo.go
package record

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Frame is one stack frame of an ErrorInfo
type Frame struct {
	Function string
	File     string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
}

// ErrorInfo is the captured form of an error attached to a record
type ErrorInfo struct {
	Type    string
	Message string
	Frames  []Frame
}

// stackTracer is implemented by errors created with github.com/pkg/errors
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// NewErrorInfo captures err. Frames come from the deepest pkg/errors stack in the chain,
// otherwise from the caller's stack starting skip frames above NewErrorInfo.
func NewErrorInfo(err error, skip int) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{
		Type:    strings.TrimPrefix(fmt.Sprintf("%T", err), "*"),
		Message: err.Error(),
	}

	var deepest stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			deepest = st
		}
	}

	if deepest != nil {
		for _, f := range deepest.StackTrace() {
			pc := uintptr(f) - 1
			fn := runtime.FuncForPC(pc)
			if fn == nil {
				continue
			}
			file, line := fn.FileLine(pc)
			info.Frames = append(info.Frames, Frame{Function: fn.Name(), File: file, Line: line})
		}
		return info
	}

	info.Frames = CallerFrames(skip+1, 32)
	return info
}

// Format renders the error block: a "Type: message" header then one indented line per frame
func (e *ErrorInfo) Format() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Type)
	b.WriteString(": ")
	b.WriteString(e.Message)
	for _, f := range e.Frames {
		b.WriteString("\n  at ")
		b.WriteString(f.String())
	}
	return b.String()
}

// CallerFrames returns up to max frames of the calling goroutine, skip frames above CallerFrames
func CallerFrames(skip, max int) []Frame {
	pc := make([]uintptr, max)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pc[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return out
}
