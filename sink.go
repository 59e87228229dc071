// FILE: lixenwraith/sinklog/sink.go
package sinklog

import (
	"io"
	"os"
	"sync"

	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

// StreamSink writes formatted records to an io.Writer such as os.Stderr
type StreamSink struct {
	mu        sync.Mutex
	w         io.Writer
	formatter *formatter.Formatter
	closed    bool
	ownsClose bool
	stats     sinkStats
}

// NewStreamSink wraps w. A nil formatter uses the default template.
// Close closes w only if it is an io.Closer other than the process stdout or stderr.
func NewStreamSink(w io.Writer, f *formatter.Formatter) (*StreamSink, error) {
	if f == nil {
		f = formatter.New()
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	_, isCloser := w.(io.Closer)
	return &StreamSink{
		w:         w,
		formatter: f,
		ownsClose: isCloser && w != os.Stdout && w != os.Stderr,
	}, nil
}

// Emit formats and writes r
func (s *StreamSink) Emit(r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}
	line, err := s.formatter.Format(r)
	if err != nil {
		s.stats.formatErrors.Add(1)
		internalLog("stream: format: %v", err)
		line = formatter.Fallback(r, err)
	}
	n, err := s.w.Write(line)
	s.stats.bytes.Add(uint64(n))
	if err != nil {
		s.stats.writeErrors.Add(1)
		return &logerr.IOError{Op: "write", Path: "stream", Err: err}
	}
	s.stats.records.Add(1)
	return nil
}

// Flush syncs the writer when it is a file
func (s *StreamSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}
	if f, ok := s.w.(interface{ Sync() error }); ok {
		// Terminals and pipes reject fsync; that is not a failure of the sink
		_ = f.Sync()
	}
	return nil
}

// Stats returns a snapshot of the sink counters
func (s *StreamSink) Stats() SinkStats {
	return s.stats.snapshot()
}

// Close marks the sink closed
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsClose {
		return s.w.(io.Closer).Close()
	}
	return nil
}

func (s *StreamSink) String() string {
	switch s.w {
	case os.Stdout:
		return "stdout"
	case os.Stderr:
		return "stderr"
	}
	return "stream"
}

// CallbackFunc receives each record and its formatted line
type CallbackFunc func(r *record.Record, line []byte) error

// CallbackSink hands formatted records to a function. Calls are serialized.
type CallbackSink struct {
	mu        sync.Mutex
	fn        CallbackFunc
	formatter *formatter.Formatter
	closed    bool
}

// NewCallbackSink wraps fn. A nil formatter uses the default template.
func NewCallbackSink(fn CallbackFunc, f *formatter.Formatter) (*CallbackSink, error) {
	if fn == nil {
		return nil, logerr.Configf("callback", "nil", "function is required")
	}
	if f == nil {
		f = formatter.New()
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return &CallbackSink{fn: fn, formatter: f}, nil
}

// Emit formats r and calls the function. The line is only valid during the call.
func (s *CallbackSink) Emit(r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}
	line, err := s.formatter.Format(r)
	if err != nil {
		internalLog("callback: format: %v", err)
		line = formatter.Fallback(r, err)
	}
	return s.fn(r, line)
}

// Close marks the sink closed
func (s *CallbackSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *CallbackSink) String() string { return "callback" }
