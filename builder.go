// FILE: lixenwraith/sinklog/builder.go
package sinklog

import (
	"time"

	"github.com/lixenwraith/sinklog/record"
)

// Builder provides a fluent API for building a Logger with one configured sink.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger with the sink described by the accumulated configuration.
// A configured trace depth applies to every call of the returned logger.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()
	if _, err := logger.AddConfig(b.cfg); err != nil {
		return nil, err
	}
	if b.cfg.TraceDepth > 0 {
		return logger.Opt(CallOptions{TraceDepth: b.cfg.TraceDepth}), nil
	}
	return logger, nil
}

// Config returns a copy of the accumulated configuration.
func (b *Builder) Config() *Config {
	return b.cfg.Clone()
}

// Level sets the sink threshold.
func (b *Builder) Level(level record.Level) *Builder {
	b.cfg.Level = level.Name
	return b
}

// LevelString sets the sink threshold from a name or number.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := record.ParseLevel(level); err != nil {
		b.err = &ConfigError{Field: "level", Value: level, Err: err}
		return b
	}
	b.cfg.Level = level
	return b
}

// File sends records to a file at path.
func (b *Builder) File(path string) *Builder {
	b.cfg.Destination = path
	return b
}

// Stdout sends records to the process stdout.
func (b *Builder) Stdout() *Builder {
	b.cfg.Destination = "stdout"
	return b
}

// Stderr sends records to the process stderr.
func (b *Builder) Stderr() *Builder {
	b.cfg.Destination = "stderr"
	return b
}

// Format sets the line template.
func (b *Builder) Format(template string) *Builder {
	b.cfg.Format = template
	return b
}

// Serialize sets the serialization mode: template, json or raw.
func (b *Builder) Serialize(mode string) *Builder {
	b.cfg.Serialize = mode
	return b
}

// TimestampFormat sets the time layout used by {time}.
func (b *Builder) TimestampFormat(layout string) *Builder {
	b.cfg.TimestampFormat = layout
	return b
}

// Sanitize sets the sanitizer policy.
func (b *Builder) Sanitize(policy string) *Builder {
	b.cfg.Sanitize = policy
	return b
}

// TraceDepth sets the number of caller functions recorded per record.
func (b *Builder) TraceDepth(depth int64) *Builder {
	b.cfg.TraceDepth = depth
	return b
}

// Rotation sets the rotation expression.
func (b *Builder) Rotation(spec string) *Builder {
	b.cfg.Rotation = spec
	return b
}

// Compression sets the archive compression tag.
func (b *Builder) Compression(tag string) *Builder {
	b.cfg.Compression = tag
	return b
}

// Retention sets the retention expression.
func (b *Builder) Retention(spec string) *Builder {
	b.cfg.Retention = spec
	return b
}

// LocalTime names archives and evaluates schedules in local time.
func (b *Builder) LocalTime(local bool) *Builder {
	b.cfg.LocalTime = local
	return b
}

// Durability sets the flush mode: none, interval or sync.
func (b *Builder) Durability(mode string) *Builder {
	b.cfg.Durability = mode
	return b
}

// FlushInterval sets the fsync period for interval durability.
func (b *Builder) FlushInterval(d time.Duration) *Builder {
	b.cfg.FlushIntervalMs = d.Milliseconds()
	return b
}

// DrainTimeout bounds the wait for background work at close.
func (b *Builder) DrainTimeout(d time.Duration) *Builder {
	b.cfg.DrainTimeoutMs = d.Milliseconds()
	return b
}

// Enqueue emits records from a dedicated goroutine with a queue of size entries.
func (b *Builder) Enqueue(size int64, overflow string) *Builder {
	b.cfg.Enqueue = true
	b.cfg.QueueSize = size
	b.cfg.Overflow = overflow
	return b
}

// HeartbeatIntervalS sets the heartbeat period in seconds, 0 disables it.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// InternalErrorsToStderr enables or silences the diagnostic stream.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Overrides applies "key=value" overrides on top of the values set so far.
func (b *Builder) Overrides(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverrides(overrides...); err != nil {
		b.err = err
	}
	return b
}
