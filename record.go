// FILE: lixenwraith/sinklog/record.go
package sinklog

import (
	"fmt"

	"github.com/lixenwraith/sinklog/record"
)

// Frames between buildRecord and the application call site: log, then the public method
const callerSkip = 2

// log builds one record and dispatches it. Every public logging entry point calls it directly.
func (l *Logger) log(level record.Level, msg string, kv []any, err error) {
	c := l.core
	if level.No < c.minLevel.Load() {
		return
	}
	hs := c.snapshot()
	if len(hs) == 0 {
		return
	}
	c.dispatch(hs, l.buildRecord(level, msg, kv, err))
}

func (l *Logger) buildRecord(level record.Level, msg string, kv []any, err error) *record.Record {
	c := l.core
	now := c.now()
	skip := callerSkip + l.opts.Depth

	r := &record.Record{
		Time:    now,
		Elapsed: now.Sub(c.start),
		Level:   level,
		Message: msg,
		Source:  record.CaptureSource(skip),
		Process: record.CurrentProcess(),
		Thread:  record.CurrentThread(),
	}

	r.Name = l.name
	if r.Name == "" {
		r.Name = r.Source.Package
	}

	extra := l.extra
	if l.ctx != nil {
		if ce, ok := l.ctx.Value(contextKey{}).(record.Extras); ok {
			extra = extra.Merge(ce)
		}
	}
	r.Extra = extra.With(kv...)

	if err == nil {
		err = l.opts.Err
	}
	if err != nil {
		r.Err = record.NewErrorInfo(err, skip)
	}
	if l.opts.TraceDepth > 0 {
		// getTrace counts runtime.Callers and itself
		r.Trace = getTrace(l.opts.TraceDepth, skip+2)
	}
	return r
}

// recoveredError converts a recovered panic value into an error
func recoveredError(p any) error {
	if err, ok := p.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", p)
}
