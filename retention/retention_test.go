// FILE: lixenwraith/sinklog/retention/retention_test.go
package retention

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fd(name string, size int64, age time.Duration) FileDescriptor {
	return FileDescriptor{Path: "/logs/" + name, Size: size, ModTime: now.Add(-age)}
}

func names(files []FileDescriptor) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestSelectForDeletion(t *testing.T) {
	t.Run("count keeps newest", func(t *testing.T) {
		files := []FileDescriptor{
			fd("a", 1, 5*time.Hour),
			fd("b", 1, 1*time.Hour),
			fd("c", 1, 3*time.Hour),
			fd("d", 1, 2*time.Hour),
			fd("e", 1, 4*time.Hour),
		}
		got := New(KeepCount(3)).SelectForDeletion(files, now)
		assert.Equal(t, []string{"e", "a"}, names(got))
	})

	t.Run("count with fewer files", func(t *testing.T) {
		files := []FileDescriptor{fd("a", 1, time.Hour)}
		assert.Empty(t, New(KeepCount(3)).SelectForDeletion(files, now))
	})

	t.Run("count zero selects all", func(t *testing.T) {
		files := []FileDescriptor{fd("a", 1, time.Hour), fd("b", 1, 2*time.Hour)}
		assert.Len(t, New(KeepCount(0)).SelectForDeletion(files, now), 2)
	})

	t.Run("age", func(t *testing.T) {
		files := []FileDescriptor{
			fd("today", 1, time.Hour),
			fd("yesterday", 1, 24*time.Hour),
			fd("old", 1, 10*24*time.Hour),
		}
		got := New(MaxAge(7*24*time.Hour)).SelectForDeletion(files, now)
		assert.Equal(t, []string{"old"}, names(got))
	})

	t.Run("age boundary is exclusive", func(t *testing.T) {
		files := []FileDescriptor{fd("edge", 1, time.Hour)}
		assert.Empty(t, New(MaxAge(time.Hour)).SelectForDeletion(files, now))
	})

	t.Run("size selects file that crosses cap and older", func(t *testing.T) {
		files := []FileDescriptor{
			fd("n1", 40, 1*time.Hour),
			fd("n2", 40, 2*time.Hour),
			fd("n3", 40, 3*time.Hour),
			fd("n4", 10, 4*time.Hour),
		}
		got := New(MaxTotalSize(100)).SelectForDeletion(files, now)
		assert.Equal(t, []string{"n3", "n4"}, names(got))

		got = New(MaxTotalSize(120)).SelectForDeletion(files, now)
		assert.Equal(t, []string{"n4"}, names(got))
	})

	t.Run("union of policies", func(t *testing.T) {
		files := []FileDescriptor{
			fd("new", 10, time.Hour),
			fd("mid", 500, 2*time.Hour),
			fd("ancient", 1, 30*24*time.Hour),
		}
		p := New(KeepCount(5), MaxAge(7*24*time.Hour), MaxTotalSize(100))
		got := p.SelectForDeletion(files, now)
		assert.Equal(t, []string{"mid", "ancient"}, names(got))
	})

	t.Run("equal mtimes fall back to name", func(t *testing.T) {
		files := []FileDescriptor{
			fd("app.2024-06-15T10-00-00.000.log", 1, time.Hour),
			fd("app.2024-06-15T11-00-00.000.log", 1, time.Hour),
			fd("app.2024-06-15T09-00-00.000.log", 1, time.Hour),
		}
		got := New(KeepCount(1)).SelectForDeletion(files, now)
		assert.Equal(t, []string{"app.2024-06-15T10-00-00.000.log", "app.2024-06-15T09-00-00.000.log"}, names(got))
	})

	t.Run("input not mutated", func(t *testing.T) {
		files := []FileDescriptor{fd("a", 1, 2*time.Hour), fd("b", 1, time.Hour)}
		New(KeepCount(1)).SelectForDeletion(files, now)
		assert.Equal(t, "a", filepath.Base(files[0].Path))
	})

	t.Run("zero policy", func(t *testing.T) {
		var p *Policy
		assert.True(t, p.IsZero())
		assert.Nil(t, p.SelectForDeletion([]FileDescriptor{fd("a", 1, 0)}, now))
		assert.True(t, New().IsZero())
	})
}

func TestParse(t *testing.T) {
	p, err := Parse("5")
	require.NoError(t, err)
	assert.Equal(t, "keep 5", p.String())

	p, err = Parse("7 days")
	require.NoError(t, err)
	assert.Equal(t, "max age 168h0m0s", p.String())

	p, err = Parse("10, 1 week, 500 MB")
	require.NoError(t, err)
	assert.Equal(t, "keep 10, max age 168h0m0s, max size 500 MB", p.String())

	for _, bad := range []string{"", "forever", "0 MB", "-3", "0s"} {
		_, err := Parse(bad)
		assert.True(t, logerr.IsConfig(err), bad)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app.log", "app.2024-01-01T00-00-00.000.log", "app.2024-01-02T00-00-00.000.log.gz", "other.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "app.dir"), 0755))

	files, err := Scan(dir, func(name string) bool {
		return strings.HasPrefix(name, "app.") && name != "app.log"
	})
	require.NoError(t, err)
	SortNewestFirst(files)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, int64(len(filepath.Base(f.Path))), f.Size)
	}

	_, err = Scan(filepath.Join(dir, "missing"), func(string) bool { return true })
	var ioErr *logerr.IOError
	assert.ErrorAs(t, err, &ioErr)
}
