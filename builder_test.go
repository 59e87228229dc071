// FILE: lixenwraith/sinklog/builder_test.go
package sinklog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("file sink with lifecycle settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "service.log")

		logger, err := NewBuilder().
			File(path).
			Level(record.LevelDebug).
			Format("{level} {message} {extra}").
			Rotation("1 MB").
			Compression("gz").
			Retention("5").
			Durability("sync").
			Build()
		require.NoError(t, err)

		logger.Trace("dropped")
		logger.Debug("kept", "k", "v")
		require.NoError(t, logger.Close())

		assert.Equal(t, []string{"DEBUG kept k=v"}, readLines(t, path))
	})

	t.Run("json serialization", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, err := NewBuilder().File(path).Serialize("json").Build()
		require.NoError(t, err)
		logger.Info("structured", "user", "alice")
		require.NoError(t, logger.Close())

		lines := readLines(t, path)
		require.Len(t, lines, 1)
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &obj))
		assert.Equal(t, "structured", obj["message"])
		assert.Equal(t, "INFO", obj["level"])
		assert.Equal(t, map[string]any{"user": "alice"}, obj["extra"])
	})

	t.Run("trace depth applies to the built logger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, err := NewBuilder().File(path).Format("{trace}").TraceDepth(1).Build()
		require.NoError(t, err)
		logger.Info("x")
		require.NoError(t, logger.Close())

		lines := readLines(t, path)
		require.Len(t, lines, 1)
		assert.Equal(t, "(anonymous in TestBuilder_Build)", lines[0])
	})

	t.Run("invalid level string", func(t *testing.T) {
		_, err := NewBuilder().LevelString("verbose").Stderr().Build()
		assert.True(t, logerr.IsConfig(err))
	})

	t.Run("invalid rotation fails at build", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		_, err := NewBuilder().File(path).Rotation("every so often").Build()
		assert.True(t, logerr.IsConfig(err))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "no file created for an invalid config")
	})

	t.Run("overrides", func(t *testing.T) {
		b := NewBuilder().Overrides("destination=stdout", "level=warning")
		cfg := b.Config()
		assert.Equal(t, "stdout", cfg.Destination)
		assert.Equal(t, "warning", cfg.Level)

		_, err := NewBuilder().Overrides("level=").Build()
		assert.Error(t, err)
	})
}
