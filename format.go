// FILE: lixenwraith/sinklog/format.go
package sinklog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/sanitizer"
)

// newFormatter builds the formatter described by cfg
func newFormatter(cfg *Config) (*formatter.Formatter, error) {
	policy, err := sanitizer.ParsePolicy(cfg.Sanitize)
	if err != nil {
		return nil, err
	}
	f := formatter.New(sanitizer.New().Policy(policy)).Type(cfg.Serialize)
	if cfg.Format != "" {
		f.Template(cfg.Format)
	}
	if cfg.TimestampFormat != "" {
		f.TimestampFormat(cfg.TimestampFormat)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// fileOptions translates the file lifecycle settings of cfg
func fileOptions(cfg *Config) ([]FileOption, error) {
	durability, err := ParseDurability(cfg.Durability)
	if err != nil {
		return nil, err
	}
	return []FileOption{
		WithLocalTime(cfg.LocalTime),
		WithRotationSpec(cfg.Rotation),
		WithCompression(cfg.Compression),
		WithRetentionSpec(cfg.Retention),
		WithDurability(durability, time.Duration(cfg.FlushIntervalMs)*time.Millisecond),
		WithDrainTimeout(time.Duration(cfg.DrainTimeoutMs) * time.Millisecond),
	}, nil
}

// NewSinkFromConfig validates cfg and builds the sink it describes
func NewSinkFromConfig(cfg *Config) (Sink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	f, err := newFormatter(cfg)
	if err != nil {
		return nil, err
	}

	var sink Sink
	if cfg.isStream() {
		var w io.Writer = os.Stderr
		if strings.EqualFold(cfg.Destination, "stdout") {
			w = os.Stdout
		}
		sink, err = NewStreamSink(w, f)
	} else {
		var opts []FileOption
		opts, err = fileOptions(cfg)
		if err == nil {
			sink, err = NewFileSink(cfg.Destination, append(opts, WithFormatter(f))...)
		}
	}
	if err != nil {
		return nil, err
	}

	if cfg.Enqueue {
		overflow, _ := ParseOverflow(cfg.Overflow)
		async, err := NewAsyncSink(sink, int(cfg.QueueSize), overflow, time.Duration(cfg.DrainTimeoutMs)*time.Millisecond)
		if err != nil {
			sink.Close()
			return nil, err
		}
		sink = async
	}
	return sink, nil
}

// AddConfig builds the sink described by cfg and registers it at the configured level.
// A positive heartbeat interval starts periodic stats records.
func (l *Logger) AddConfig(cfg *Config) (HandlerID, error) {
	sink, err := NewSinkFromConfig(cfg)
	if err != nil {
		return 0, err
	}
	level, err := l.Level(cfg.Level)
	if err != nil {
		sink.Close()
		return 0, err
	}
	if !cfg.InternalErrorsToStderr {
		SetDiagnosticOutput(io.Discard)
	}

	id := l.Add(sink, WithLevel(level))
	if cfg.HeartbeatIntervalS > 0 {
		l.StartHeartbeat(time.Duration(cfg.HeartbeatIntervalS) * time.Second)
	}
	return id, nil
}
