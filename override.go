// FILE: lixenwraith/sinklog/override.go
package sinklog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverrides applies "key=value" overrides to the configuration.
// The result is validated before it replaces the current values, so a failed call leaves c unchanged.
//
// Example:
//
//	cfg := sinklog.DefaultConfig()
//	err := cfg.ApplyOverrides(
//	    "destination=/var/log/app/app.log",
//	    "rotation=100 MB",
//	    "compression=zst",
//	    "retention=10",
//	)
func (c *Config) ApplyOverrides(overrides ...string) error {
	next := c.Clone()

	var errs []error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := applyConfigField(next, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	if err := next.validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single numbered error.
// The individual errors stay reachable through errors.Is and errors.As.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString(diagnosticPrefix + "multiple configuration errors:")
	args := make([]any, 0, len(errs))
	for i := range errs {
		sb.WriteString(fmt.Sprintf("\n  %d. %%w", i+1))
		args = append(args, trimPrefixError{errs[i]})
	}
	return fmt.Errorf(sb.String(), args...)
}

// trimPrefixError drops the package prefix from a nested message to avoid repeating it
type trimPrefixError struct{ err error }

func (e trimPrefixError) Error() string { return strings.TrimPrefix(e.err.Error(), diagnosticPrefix) }
func (e trimPrefixError) Unwrap() error { return e.err }

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Strings, checked by validate
	case "level":
		cfg.Level = value
	case "destination":
		cfg.Destination = value
	case "format":
		cfg.Format = value
	case "serialize":
		cfg.Serialize = value
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitize":
		cfg.Sanitize = value
	case "rotation":
		cfg.Rotation = value
	case "compression":
		cfg.Compression = value
	case "retention":
		cfg.Retention = value
	case "durability":
		cfg.Durability = value
	case "overflow":
		cfg.Overflow = value

	// Integers
	case "trace_depth", "flush_interval_ms", "drain_timeout_ms", "queue_size", "heartbeat_interval_s":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
		}
		switch key {
		case "trace_depth":
			cfg.TraceDepth = intVal
		case "flush_interval_ms":
			cfg.FlushIntervalMs = intVal
		case "drain_timeout_ms":
			cfg.DrainTimeoutMs = intVal
		case "queue_size":
			cfg.QueueSize = intVal
		case "heartbeat_interval_s":
			cfg.HeartbeatIntervalS = intVal
		}

	// Booleans
	case "local_time", "enqueue", "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
		}
		switch key {
		case "local_time":
			cfg.LocalTime = boolVal
		case "enqueue":
			cfg.Enqueue = boolVal
		case "internal_errors_to_stderr":
			cfg.InternalErrorsToStderr = boolVal
		}

	default:
		return fmtErrorf("unknown config key in override: %s", key)
	}
	return nil
}
