// FILE: lixenwraith/sinklog/formatter/formatter_test.go
package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
	"github.com/lixenwraith/sinklog/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *record.Record {
	return &record.Record{
		Time:    time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.UTC),
		Elapsed: 1500 * time.Millisecond,
		Level:   record.LevelInfo,
		Message: "user logged in",
		Name:    "github.com/acme/app/auth",
		Source: record.Source{
			File: "auth.go", Path: "/src/app/auth/auth.go", Function: "Login",
			Module: "auth", Package: "github.com/acme/app/auth", Line: 42,
		},
		Process: record.Process{ID: 100, Name: "app"},
		Thread:  record.Thread{ID: 7, Name: "goroutine-7"},
		Extra:   record.FromKeyvals("user", "alice", "attempt", 2),
	}
}

type panicStringer struct{}

func (panicStringer) String() string { panic("stringer exploded") }

func TestFormatterTemplate(t *testing.T) {
	t.Run("default template", func(t *testing.T) {
		f := New()
		require.NoError(t, f.Err())
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05 14:07:09.123 | INFO     | github.com/acme/app/auth:Login:42 - user logged in\n", string(out))
	})

	t.Run("nested fields and specs", func(t *testing.T) {
		f := New().Template("[{level.no}] {level:>8}|{module:^8}|{file}:{line} {elapsed:.2f} {extra.user} {extra.nope} {bogus}")
		require.NoError(t, f.Err())
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "[20]     INFO|  auth  |auth.go:42 1.50 alice <missing> <missing:bogus>\n", string(out))
	})

	t.Run("custom fill and time layout", func(t *testing.T) {
		f := New().Template("{time:YYYY/MM/DD hh:mm A} {level:*<9}{message:.4}")
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "2024/03/05 02:07 PM INFO*****user\n", string(out))
	})

	t.Run("go layout", func(t *testing.T) {
		f := New().Template("{time:2006-01-02T15:04:05Z07:00}")
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05T14:07:09Z\n", string(out))
	})

	t.Run("timestamp format applies to bare time", func(t *testing.T) {
		f := New().Template("{time} {message}").TimestampFormat("HH:mm:ss")
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "14:07:09 user logged in\n", string(out))
	})

	t.Run("escapes and markup", func(t *testing.T) {
		f := New().Template("<green>{{literal}}</green> <b>{message}</b> a<b c")
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "{literal} user logged in a<b c\n", string(out))
	})

	t.Run("extra listing quotes values", func(t *testing.T) {
		r := testRecord()
		r.Extra = record.FromKeyvals("path", "/a b", "n", 3, "ok", true, "nothing", nil)
		f := New().Template("{extra}")
		out, err := f.Format(r)
		require.NoError(t, err)
		assert.Equal(t, `path="/a b" n=3 ok=true nothing=nil`+"\n", string(out))
	})

	t.Run("process and thread", func(t *testing.T) {
		f := New().Template("{process}/{process.name} {thread}/{thread.name}")
		out, err := f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "100/app 7/goroutine-7\n", string(out))
	})

	t.Run("malformed templates", func(t *testing.T) {
		for _, tmpl := range []string{"{message", "{}", "{level:.}", "{level:<8x}"} {
			f := New().Template(tmpl)
			assert.True(t, logerr.IsConfig(f.Err()), tmpl)
		}
	})
}

func TestFormatterException(t *testing.T) {
	r := testRecord()
	r.Level = record.LevelError
	r.Err = &record.ErrorInfo{
		Type:    "fs.PathError",
		Message: "open x: permission denied",
		Frames:  []record.Frame{{Function: "main.run", File: "main.go", Line: 10}},
	}

	t.Run("appended after line", func(t *testing.T) {
		out, err := New().Template("{level} {message}").Format(r)
		require.NoError(t, err)
		assert.Equal(t, "ERROR user logged in\nfs.PathError: open x: permission denied\n  at main.run (main.go:10)\n", string(out))
	})

	t.Run("placed by template", func(t *testing.T) {
		out, err := New().Template("{message} [{exception}]").Format(r)
		require.NoError(t, err)
		assert.Equal(t, "user logged in [fs.PathError: open x: permission denied\n  at main.run (main.go:10)]\n", string(out))
	})

	t.Run("line policy keeps record on one line", func(t *testing.T) {
		r := testRecord()
		r.Message = "two\nlines"
		f := New(sanitizer.New().Policy(sanitizer.PolicyLine)).Template("{message}")
		out, err := f.Format(r)
		require.NoError(t, err)
		assert.Equal(t, "two\\nlines\n", string(out))
	})
}

func TestFormatterJSON(t *testing.T) {
	r := testRecord()
	r.Trace = "main -> run"
	r.Extra = r.Extra.With("tags", []string{"a", "b"}, "at", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r.Err = record.NewErrorInfo(errors.New("quote \" and \n newline"), 0)

	f := New().Type(ModeJSON)
	require.NoError(t, f.Err())
	out, err := f.Format(r)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(out), "}\n"))
	assert.Equal(t, 1, strings.Count(string(out), "\n"))

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "2024-03-05T14:07:09.123456789Z", m["time"])
	assert.Equal(t, "INFO", m["level"])
	assert.Equal(t, float64(20), m["level_no"])
	assert.Equal(t, "user logged in", m["message"])
	assert.Equal(t, float64(42), m["line"])
	assert.Equal(t, 1.5, m["elapsed"])
	assert.Equal(t, "main -> run", m["trace"])

	extra := m["extra"].(map[string]any)
	assert.Equal(t, "alice", extra["user"])
	assert.Equal(t, float64(2), extra["attempt"])
	assert.Equal(t, []any{"a", "b"}, extra["tags"])
	assert.Equal(t, "2024-01-01T00:00:00Z", extra["at"])

	exc := m["exception"].(map[string]any)
	assert.Equal(t, "quote \" and \n newline", exc["message"])
	assert.NotEmpty(t, exc["frames"])
}

func TestFormatterRaw(t *testing.T) {
	r := testRecord()
	r.Extra = record.FromKeyvals("cfg", map[string]int{"retries": 3})
	f := New().Type(ModeRaw)
	out, err := f.Format(r)
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "user logged in cfg=(map[string]int)"))
	assert.Contains(t, s, `"retries": (int) 3`)
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestFormatterFailure(t *testing.T) {
	t.Run("bad mode", func(t *testing.T) {
		f := New().Type("xml")
		assert.True(t, logerr.IsConfig(f.Err()))
	})

	t.Run("panicking value", func(t *testing.T) {
		r := testRecord()
		r.Extra = record.FromKeyvals("bad", panicStringer{})
		f := New().Template("{message} {extra}")
		out, err := f.Format(r)
		assert.Nil(t, out)
		var fe *logerr.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Contains(t, fe.Error(), "stringer exploded")

		fb := Fallback(r, err)
		assert.Equal(t, "[INFO] user logged in [FORMAT ERROR: sinklog: format: panic: stringer exploded]\n", string(fb))

		// Formatter stays usable
		out, err = f.Format(testRecord())
		require.NoError(t, err)
		assert.Equal(t, "user logged in user=alice attempt=2\n", string(out))
	})
}

func BenchmarkFormatter(b *testing.B) {
	r := testRecord()
	for _, mode := range []string{ModeTemplate, ModeJSON, ModeRaw} {
		b.Run(mode, func(b *testing.B) {
			f := New().Type(mode)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = f.Format(r)
			}
		})
	}
}
