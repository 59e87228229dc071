// FILE: lixenwraith/sinklog/config.go
package sinklog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/sinklog/compress"
	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
	"github.com/lixenwraith/sinklog/retention"
	"github.com/lixenwraith/sinklog/rotation"
	"github.com/lixenwraith/sinklog/sanitizer"
)

// configPrefix is the TOML table holding sink settings
const configPrefix = "sink."

// Config describes one sink and its registration on a Logger
type Config struct {
	// Basic settings
	Level       string `toml:"level"`       // threshold name or number
	Destination string `toml:"destination"` // file path, "stdout" or "stderr"

	// Formatting
	Format          string `toml:"format"`           // template, empty for the default
	Serialize       string `toml:"serialize"`        // "template", "json" or "raw"
	TimestampFormat string `toml:"timestamp_format"` // token or Go layout, empty for the default
	Sanitize        string `toml:"sanitize"`         // sanitizer policy: raw, json, text, line, shell
	TraceDepth      int64  `toml:"trace_depth"`      // caller functions recorded per record (0-10)

	// File lifecycle
	Rotation    string `toml:"rotation"`    // e.g. "100 MB", "daily", "12:00, 1 GB"
	Compression string `toml:"compression"` // "", gz, zip, zst, lz4, br
	Retention   string `toml:"retention"`   // e.g. "10", "1 week", "500 MB"
	LocalTime   bool   `toml:"local_time"`  // archive names and schedules in local time

	// Durability and shutdown
	Durability      string `toml:"durability"`        // "none", "interval" or "sync"
	FlushIntervalMs int64  `toml:"flush_interval_ms"` // fsync period for interval durability
	DrainTimeoutMs  int64  `toml:"drain_timeout_ms"`  // bound on background work at close

	// Asynchronous delivery
	Enqueue   bool   `toml:"enqueue"`    // emit from a dedicated goroutine
	QueueSize int64  `toml:"queue_size"` // queue capacity when enqueue is set
	Overflow  string `toml:"overflow"`   // "block" or "drop" on a full queue

	// Heartbeat
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // 0 disables heartbeat records

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Basic settings
	Level:       "INFO",
	Destination: "stderr",

	// Formatting
	Format:          "",
	Serialize:       formatter.ModeTemplate,
	TimestampFormat: "",
	Sanitize:        string(sanitizer.PolicyText),
	TraceDepth:      0,

	// File lifecycle
	Rotation:    "",
	Compression: "",
	Retention:   "",
	LocalTime:   false,

	// Durability and shutdown
	Durability:      "none",
	FlushIntervalMs: defaultFlushInterval.Milliseconds(),
	DrainTimeoutMs:  defaultDrainTimeout.Milliseconds(),

	// Asynchronous delivery
	Enqueue:   false,
	QueueSize: 1024,
	Overflow:  "block",

	// Heartbeat
	HeartbeatIntervalS: 0,

	// Internal error handling
	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads the [sink] table of a TOML file and returns a validated Config.
// A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides keyed by TOML name
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders may surface integers as floats
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// validate parses every expression so a bad configuration fails before any sink is built
func (c *Config) validate() error {
	var errs []error

	if _, err := record.ParseLevel(c.Level); err != nil {
		errs = append(errs, &logerr.ConfigError{Field: "level", Value: c.Level, Err: err})
	}
	if strings.TrimSpace(c.Destination) == "" {
		errs = append(errs, logerr.Configf("destination", c.Destination, "cannot be empty"))
	}

	switch c.Serialize {
	case formatter.ModeTemplate, formatter.ModeJSON, formatter.ModeRaw:
	default:
		errs = append(errs, logerr.Configf("serialize", c.Serialize, "use template, json or raw"))
	}
	if _, err := sanitizer.ParsePolicy(c.Sanitize); err != nil {
		errs = append(errs, &logerr.ConfigError{Field: "sanitize", Value: c.Sanitize, Err: err})
	}
	if c.Format != "" {
		if err := formatter.New().Template(c.Format).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.TraceDepth < 0 || c.TraceDepth > 10 {
		errs = append(errs, logerr.Configf("trace_depth", fmt.Sprint(c.TraceDepth), "must be between 0 and 10"))
	}

	if strings.TrimSpace(c.Rotation) != "" {
		if _, err := rotation.Parse(c.Rotation, c.location()); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := compress.New(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Retention) != "" {
		if _, err := retention.Parse(c.Retention); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := ParseDurability(c.Durability); err != nil {
		errs = append(errs, err)
	}
	if c.FlushIntervalMs <= 0 {
		errs = append(errs, logerr.Configf("flush_interval_ms", fmt.Sprint(c.FlushIntervalMs), "must be positive"))
	}
	if c.DrainTimeoutMs <= 0 {
		errs = append(errs, logerr.Configf("drain_timeout_ms", fmt.Sprint(c.DrainTimeoutMs), "must be positive"))
	}

	if _, err := ParseOverflow(c.Overflow); err != nil {
		errs = append(errs, err)
	}
	if c.Enqueue && c.QueueSize <= 0 {
		errs = append(errs, logerr.Configf("queue_size", fmt.Sprint(c.QueueSize), "must be positive"))
	}
	if c.HeartbeatIntervalS < 0 {
		errs = append(errs, logerr.Configf("heartbeat_interval_s", fmt.Sprint(c.HeartbeatIntervalS), "cannot be negative"))
	}

	return combineConfigErrors(errs)
}

func (c *Config) location() *time.Location {
	if c.LocalTime {
		return time.Local
	}
	return time.UTC
}

// isStream reports whether the destination names a process stream rather than a file
func (c *Config) isStream() bool {
	switch strings.ToLower(c.Destination) {
	case "stdout", "stderr":
		return true
	}
	return false
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
