// FILE: lixenwraith/sinklog/record/record.go
// Package record defines the immutable log event passed from the dispatcher to sinks.
package record

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Source is the call site that produced a record
type Source struct {
	File     string // base name
	Path     string // full path
	Function string // short function name
	Module   string // last element of the package path
	Package  string // full package path
	Line     int
}

// Process identifies the emitting process
type Process struct {
	ID   int
	Name string
}

// Thread identifies the emitting goroutine
type Thread struct {
	ID   uint64
	Name string
}

// Record is one log event. It is built once per log call and treated as read-only afterwards.
type Record struct {
	Time    time.Time
	Elapsed time.Duration
	Level   Level
	Message string
	Name    string // logger name, defaults to the caller package path
	Source  Source
	Process Process
	Thread  Thread
	Extra   Extras
	Err     *ErrorInfo
	Trace   string
}

// Map returns the serialization view of the record
func (r *Record) Map() map[string]any {
	m := map[string]any{
		"time":     r.Time,
		"elapsed":  r.Elapsed.Seconds(),
		"level":    map[string]any{"name": r.Level.Name, "no": r.Level.No},
		"message":  r.Message,
		"name":     r.Name,
		"module":   r.Source.Module,
		"function": r.Source.Function,
		"file":     map[string]any{"name": r.Source.File, "path": r.Source.Path},
		"line":     r.Source.Line,
		"process":  map[string]any{"id": r.Process.ID, "name": r.Process.Name},
		"thread":   map[string]any{"id": r.Thread.ID, "name": r.Thread.Name},
		"extra":    r.Extra.Map(),
	}
	if r.Trace != "" {
		m["trace"] = r.Trace
	}
	if r.Err != nil {
		frames := make([]map[string]any, 0, len(r.Err.Frames))
		for _, f := range r.Err.Frames {
			frames = append(frames, map[string]any{"function": f.Function, "file": f.File, "line": f.Line})
		}
		m["exception"] = map[string]any{"type": r.Err.Type, "message": r.Err.Message, "frames": frames}
	}
	return m
}

var (
	processOnce sync.Once
	process     Process
)

// CurrentProcess returns the cached identity of this process
func CurrentProcess() Process {
	processOnce.Do(func() {
		process = Process{ID: os.Getpid(), Name: filepath.Base(os.Args[0])}
	})
	return process
}

// CurrentThread returns the identity of the calling goroutine
func CurrentThread() Thread {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 18 [running]:"
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, _ := strconv.ParseUint(string(field), 10, 64)
	return Thread{ID: id, Name: "goroutine-" + strconv.FormatUint(id, 10)}
}

// CaptureSource resolves the call site skip frames above CaptureSource
func CaptureSource(skip int) Source {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Source{File: "?", Path: "?", Function: "?", Module: "?"}
	}
	src := Source{File: filepath.Base(file), Path: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		src.Package, src.Function = splitFuncName(fn.Name())
		src.Module = src.Package
		if i := strings.LastIndexByte(src.Package, '/'); i >= 0 {
			src.Module = src.Package[i+1:]
		}
	}
	return src
}

// splitFuncName splits "github.com/a/b.(*T).Method" into "github.com/a/b" and "(*T).Method"
func splitFuncName(full string) (pkg, fn string) {
	slash := strings.LastIndexByte(full, '/')
	if slash < 0 {
		slash = 0
	}
	dot := strings.IndexByte(full[slash:], '.')
	if dot < 0 {
		return full, full
	}
	return full[:slash+dot], full[slash+dot+1:]
}
