// FILE: lixenwraith/sinklog/main_test.go
package sinklog

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// t0 is the start of every fake clock
var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// syncBuffer is a goroutine-safe bytes.Buffer
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureDiagnostics redirects the diagnostic stream for the duration of the test
func captureDiagnostics(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := SetDiagnosticOutput(buf)
	t.Cleanup(func() { SetDiagnosticOutput(prev) })
	return buf
}

// opRecorder collects failures passed to an ErrorHandler
type opRecorder struct {
	mu   sync.Mutex
	ops  []string
	errs []error
}

func (r *opRecorder) handle(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *opRecorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *opRecorder) Errs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// messageFormatter writes only the message and a newline
func messageFormatter() *formatter.Formatter {
	return formatter.New().Template("{message}")
}

// rec builds a record with the given message
func rec(msg string) *record.Record {
	return &record.Record{Time: t0, Level: record.LevelInfo, Message: msg}
}

// newTestFileSink creates a sink writing app.log in a temp directory
func newTestFileSink(t *testing.T, opts ...FileOption) (*FileSink, string) {
	t.Helper()
	dir := t.TempDir()
	base := []FileOption{WithFormatter(messageFormatter())}
	s, err := NewFileSink(filepath.Join(dir, "app.log"), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

// archives lists archive names in dir, sorted
func archives(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	pattern := archivePattern("app", "log")
	var out []string
	for _, e := range entries {
		if pattern.MatchString(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// readLines returns the non-empty lines of a file
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
