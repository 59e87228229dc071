// FILE: lixenwraith/sinklog/type.go
package sinklog

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

// Error taxonomy, aliased from logerr
type (
	ConfigError      = logerr.ConfigError
	FormatError      = logerr.FormatError
	IOError          = logerr.IOError
	CompressionError = logerr.CompressionError
)

// ErrSinkClosed is returned by Emit, Write and Flush after Close
var ErrSinkClosed = logerr.ErrSinkClosed

// HandlerID identifies a sink registered on a Logger
type HandlerID uint64

// Filter decides whether a record reaches a sink
type Filter func(r *record.Record) bool

// ErrorHandler receives failures a sink cannot return to the caller.
// op is one of format, write, sync, rotate, rename, compress, retention, delete, drain.
type ErrorHandler func(op string, err error)

// Durability selects when written bytes are flushed to stable storage
type Durability int

const (
	DurabilityNone     Durability = iota // leave buffering to the OS
	DurabilityInterval                   // fsync on a background ticker
	DurabilitySync                       // fsync after every write
)

func (d Durability) String() string {
	switch d {
	case DurabilityInterval:
		return "interval"
	case DurabilitySync:
		return "sync"
	default:
		return "none"
	}
}

// ParseDurability converts "none", "interval" or "sync"
func ParseDurability(s string) (Durability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DurabilityNone, nil
	case "interval":
		return DurabilityInterval, nil
	case "sync":
		return DurabilitySync, nil
	default:
		return DurabilityNone, &logerr.ConfigError{Field: "durability", Value: s,
			Err: fmt.Errorf("use none, interval or sync")}
	}
}

// Overflow selects what an async sink does when its queue is full
type Overflow int

const (
	OverflowBlock Overflow = iota // wait for room
	OverflowDrop                  // drop the record and count it
)

// ParseOverflow converts "block" or "drop"
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return OverflowBlock, nil
	case "drop":
		return OverflowDrop, nil
	default:
		return OverflowBlock, &logerr.ConfigError{Field: "overflow", Value: s,
			Err: fmt.Errorf("use block or drop")}
	}
}
