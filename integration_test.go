// FILE: lixenwraith/sinklog/integration_test.go
package sinklog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sinklog/compress"
)

// countAllLines counts lines across the active file and every archive in dir, decompressing as needed
func countAllLines(t *testing.T, dir string) int {
	t.Helper()
	return len(collectAllLines(t, dir))
}

func collectAllLines(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var lines []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		r, err := compress.Open(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if sc.Text() != "" {
				lines = append(lines, sc.Text())
			}
		}
		require.NoError(t, sc.Err())
		require.NoError(t, r.Close())
	}
	return lines
}

// TestConcurrentEmits checks that T writers emitting M records each leave exactly T*M intact lines
func TestConcurrentEmits(t *testing.T) {
	const writers, perWriter = 8, 250
	sink, dir := newTestFileSink(t, WithRotation(sizePolicy(t, 4096)))

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, sink.Emit(rec(fmt.Sprintf("writer-%d-record-%04d", w, i))))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	lines := collectAllLines(t, dir)
	require.Len(t, lines, writers*perWriter)

	valid := regexp.MustCompile(`^writer-\d-record-\d{4}$`)
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		require.Regexp(t, valid, l)
		require.False(t, seen[l], "duplicate line %s", l)
		seen[l] = true
	}
	assert.Greater(t, len(archives(t, dir)), 1)
}

func TestFullLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	logger, err := NewBuilder().
		File(path).
		Level(LevelDebug).
		Format("{time:YYYY-MM-DD HH:mm:ss} {level: <8} {message} {extra}").
		Rotation("1 KB").
		Compression("gz").
		Retention("3").
		Build()
	require.NoError(t, err)

	api := logger.Bind("component", "api")
	for i := 0; i < 200; i++ {
		api.Info("request handled", "seq", i)
	}
	logger.Debug("done")
	require.NoError(t, logger.Close())

	arch := archives(t, dir)
	require.Len(t, arch, 3, "retention keeps three archives")
	for _, name := range arch {
		assert.Regexp(t, `\.log\.gz$`, name)
	}

	active := readLines(t, path)
	require.NotEmpty(t, active)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} DEBUG    done $`, active[len(active)-1])
}

func TestRestartAppendsToExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	for run := 0; run < 2; run++ {
		s, err := NewFileSink(path, WithFormatter(messageFormatter()))
		require.NoError(t, err)
		require.NoError(t, s.Emit(rec(fmt.Sprintf("run %d", run))))
		require.NoError(t, s.Close())
	}
	assert.Equal(t, []string{"run 0", "run 1"}, readLines(t, path))
}

func TestRestartArmsScheduleFromFileAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))
	old := t0.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	clock := newFakeClock()
	s, err := NewFileSink(path, WithFormatter(messageFormatter()), WithRotationSpec("1 hour"), WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, s.Emit(rec("fresh")))
	require.NoError(t, s.Close())

	arch := archives(t, dir)
	require.Len(t, arch, 1, "a file older than the interval rotates on the first write")
	assert.Equal(t, []string{"stale"}, readLines(t, filepath.Join(dir, arch[0])))
	assert.Equal(t, []string{"fresh"}, readLines(t, path))
}

func TestFileSinkAsWriter(t *testing.T) {
	sink, _ := newTestFileSink(t)
	_, err := io.WriteString(sink, "plain line\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"plain line"}, readLines(t, sink.Path()))
}
