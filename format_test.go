// FILE: lixenwraith/sinklog/format_test.go
package sinklog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

func TestNewSinkFromConfig(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Destination = "stdout"
		sink, err := NewSinkFromConfig(cfg)
		require.NoError(t, err)
		assert.IsType(t, &StreamSink{}, sink)
		assert.Equal(t, "stdout", sinkName(sink))
		require.NoError(t, sink.Close())
	})

	t.Run("file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Destination = filepath.Join(t.TempDir(), "app.log")
		cfg.Rotation = "10 KB, daily"
		cfg.Compression = "lz4"
		cfg.Retention = "3, 2 days"
		cfg.Durability = "interval"
		cfg.FlushIntervalMs = 20

		sink, err := NewSinkFromConfig(cfg)
		require.NoError(t, err)
		fs, ok := sink.(*FileSink)
		require.True(t, ok)
		assert.Equal(t, DurabilityInterval, fs.durability)
		assert.NotNil(t, fs.rotation)
		assert.Equal(t, "lz4", fs.compression.Extension())
		assert.False(t, fs.retention.IsZero())
		assert.Contains(t, fs.String(), "compression=lz4")
		require.NoError(t, sink.Close())
	})

	t.Run("enqueued", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Destination = filepath.Join(t.TempDir(), "app.log")
		cfg.Enqueue = true
		cfg.QueueSize = 8
		cfg.Overflow = "drop"

		sink, err := NewSinkFromConfig(cfg)
		require.NoError(t, err)
		async, ok := sink.(*AsyncSink)
		require.True(t, ok)
		assert.Equal(t, OverflowDrop, async.overflow)
		require.NoError(t, sink.Close())
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Compression = "7z"
		_, err := NewSinkFromConfig(cfg)
		assert.True(t, logerr.IsConfig(err))
	})
}

func TestAddConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := DefaultConfig()
	cfg.Destination = path
	cfg.Level = "warning"
	cfg.Format = "{level.no} {message}"

	l := NewLogger()
	id, err := l.AddConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []HandlerID{id}, l.Handlers())

	l.Info("skipped")
	l.Error("written")
	require.NoError(t, l.Close())
	assert.Equal(t, []string{"40 written"}, readLines(t, path))
}

func TestNewFormatterFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serialize = "raw"
	cfg.Sanitize = "line"
	f, err := newFormatter(cfg)
	require.NoError(t, err)

	out, err := f.Format(&record.Record{Level: record.LevelInfo, Message: "a\nb"})
	require.NoError(t, err)
	assert.NotContains(t, string(out[:len(out)-1]), "\n", "line policy removes embedded line breaks")
}
