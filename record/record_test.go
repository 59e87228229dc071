// FILE: lixenwraith/sinklog/record/record_test.go
package record

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	t.Run("parse defaults", func(t *testing.T) {
		for in, want := range map[string]Level{
			"info":     LevelInfo,
			"WARNING":  LevelWarning,
			"warn":     LevelWarning,
			" trace ":  LevelTrace,
			"critical": LevelCritical,
			"40":       LevelError,
		} {
			got, err := ParseLevel(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}
		_, err := ParseLevel("verbose")
		assert.Error(t, err)
	})

	t.Run("ordering", func(t *testing.T) {
		assert.True(t, LevelError.Enabled(LevelWarning))
		assert.True(t, LevelWarning.Enabled(LevelWarning))
		assert.False(t, LevelDebug.Enabled(LevelInfo))
	})

	t.Run("custom levels", func(t *testing.T) {
		ls := NewLevelSet()
		notice, err := ls.Add("notice", 22)
		require.NoError(t, err)
		assert.Equal(t, Level{Name: "NOTICE", No: 22}, notice)

		_, err = ls.Add("INFO", 1)
		assert.Error(t, err)

		got, err := ls.Lookup("Notice")
		require.NoError(t, err)
		assert.Equal(t, notice, got)

		assert.Equal(t, "LEVEL(99)", ls.ByNo(99).Name)

		levels := ls.Levels()
		require.Len(t, levels, 8)
		assert.Equal(t, LevelTrace, levels[0])
		assert.Equal(t, LevelCritical, levels[len(levels)-1])
	})
}

func TestExtras(t *testing.T) {
	t.Run("ordered with override in place", func(t *testing.T) {
		e := FromKeyvals("a", 1, "b", 2)
		e2 := e.With("a", 10, "c", 3)

		require.Equal(t, 3, e2.Len())
		assert.Equal(t, "a", e2.Fields()[0].Key)
		assert.Equal(t, 10, e2.Fields()[0].Value)
		assert.Equal(t, "c", e2.Fields()[2].Key)

		// original untouched
		v, _ := e.Get("a")
		assert.Equal(t, 1, v)
		assert.Equal(t, 2, e.Len())
	})

	t.Run("bad keys", func(t *testing.T) {
		e := FromKeyvals(42, "x", "dangling")
		v, ok := e.Get("42")
		assert.True(t, ok)
		assert.Equal(t, "x", v)
		v, ok = e.Get(BadKey)
		assert.True(t, ok)
		assert.Equal(t, "dangling", v)
	})

	t.Run("merge", func(t *testing.T) {
		base := FromKeyvals("user", "alice", "req", 1)
		m := base.Merge(FromKeyvals("req", 2, "op", "put"))
		assert.Equal(t, map[string]any{"user": "alice", "req": 2, "op": "put"}, m.Map())
	})
}

func TestErrorInfo(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, NewErrorInfo(nil, 0))
		var e *ErrorInfo
		assert.Equal(t, "", e.Format())
	})

	t.Run("plain error uses caller stack", func(t *testing.T) {
		info := NewErrorInfo(errors.New("boom"), 0)
		assert.Equal(t, "errors.errorString", info.Type)
		assert.Equal(t, "boom", info.Message)
		require.NotEmpty(t, info.Frames)
		assert.Contains(t, info.Frames[0].Function, "TestErrorInfo")
	})

	t.Run("pkg errors stack", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", failingOperation())
		info := NewErrorInfo(err, 0)
		assert.Equal(t, "fmt.wrapError", info.Type)
		assert.Equal(t, "outer: disk on fire", info.Message)
		require.NotEmpty(t, info.Frames)
		assert.Contains(t, info.Frames[0].Function, "failingOperation")

		out := info.Format()
		assert.True(t, strings.HasPrefix(out, "fmt.wrapError: outer: disk on fire\n  at "))
		assert.Contains(t, out, "record_test.go:")
	})
}

func failingOperation() error {
	return pkgerrors.New("disk on fire")
}

func TestRuntimeIdentity(t *testing.T) {
	src := CaptureSource(0)
	assert.Equal(t, "record_test.go", src.File)
	assert.Equal(t, "TestRuntimeIdentity", src.Function)
	assert.Equal(t, "record", src.Module)
	assert.Equal(t, "github.com/lixenwraith/sinklog/record", src.Package)
	assert.Greater(t, src.Line, 0)

	th := CurrentThread()
	assert.NotZero(t, th.ID)
	assert.Equal(t, fmt.Sprintf("goroutine-%d", th.ID), th.Name)

	done := make(chan Thread)
	go func() { done <- CurrentThread() }()
	assert.NotEqual(t, th.ID, (<-done).ID)

	assert.NotZero(t, CurrentProcess().ID)
}

func TestRecordMap(t *testing.T) {
	r := &Record{
		Time:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Level:   LevelInfo,
		Message: "hello",
		Extra:   FromKeyvals("k", "v"),
		Err:     &ErrorInfo{Type: "E", Message: "m"},
	}
	m := r.Map()
	assert.Equal(t, "hello", m["message"])
	assert.Equal(t, map[string]any{"name": "INFO", "no": int64(20)}, m["level"])
	assert.Equal(t, map[string]any{"k": "v"}, m["extra"])
	assert.Contains(t, m, "exception")
	assert.NotContains(t, m, "trace")
}
