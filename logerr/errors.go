// FILE: lixenwraith/sinklog/logerr/errors.go
// Package logerr defines the error taxonomy shared by the sink, policy and formatter packages.
package logerr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrSinkClosed is returned by any operation on a sink after Close
var ErrSinkClosed = errors.New("sinklog: sink closed")

// ConfigError reports an invalid rotation, retention, compression or formatter expression.
// It is returned at construction time and never deferred to the write path.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sinklog: invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("sinklog: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Configf builds a ConfigError with a formatted cause
func Configf(field, value, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: fmt.Errorf(format, args...)}
}

// FormatError reports a record that could not be rendered by the formatter
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "sinklog: format: " + e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a failed file system operation
type IOError struct {
	Op   string // write, sync, rename, open, close, delete, scan
	Path string
	Err  error
}

// Error reports op and path once; the op and path of a wrapped *fs.PathError or *os.LinkError are dropped.
func (e *IOError) Error() string {
	cause := e.Err
	switch err := cause.(type) {
	case *fs.PathError:
		cause = err.Err
	case *os.LinkError:
		cause = err.Err
	}
	return fmt.Sprintf("sinklog: %s %s: %v", e.Op, e.Path, cause)
}

func (e *IOError) Unwrap() error { return e.Err }

// CompressionError reports a failed compression; the source file is left in place
type CompressionError struct {
	Path   string
	Format string
	Err    error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("sinklog: compress %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// IsConfig reports whether err is or wraps a ConfigError
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
