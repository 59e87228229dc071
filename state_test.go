// FILE: lixenwraith/sinklog/state_test.go
package sinklog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sinklog/logerr"
)

// TestEmitAfterClose checks that a closed sink refuses records without touching the file
func TestEmitAfterClose(t *testing.T) {
	sink, _ := newTestFileSink(t)
	require.NoError(t, sink.Emit(rec("before")))
	require.NoError(t, sink.Close())

	info, err := os.Stat(sink.Path())
	require.NoError(t, err)

	assert.ErrorIs(t, sink.Emit(rec("after")), logerr.ErrSinkClosed)
	_, err = sink.Write([]byte("raw\n"))
	assert.ErrorIs(t, err, logerr.ErrSinkClosed)
	assert.ErrorIs(t, sink.Rotate(), logerr.ErrSinkClosed)
	assert.ErrorIs(t, sink.Flush(), logerr.ErrSinkClosed)
	assert.NoError(t, sink.Close(), "close is idempotent")

	after, err := os.Stat(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, info.Size(), after.Size())
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestFileSinkStats(t *testing.T) {
	sink, _ := newTestFileSink(t, WithRotation(sizePolicy(t, 30)))
	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Emit(rec(msg30(i))))
	}
	n, err := sink.Write([]byte("direct\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	st := sink.Stats()
	assert.Equal(t, uint64(4), st.Records)
	assert.Equal(t, uint64(97), st.Bytes)
	assert.Equal(t, uint64(3), st.Rotations)
	assert.False(t, st.LastRotation.IsZero())

	summary := st.Summary()
	assert.Contains(t, summary, "97 B")
}

func TestFormatFailureFallback(t *testing.T) {
	errs := &opRecorder{}
	sink, _ := newTestFileSink(t, WithErrorHandler(errs.handle))

	r := rec("broken")
	r.Extra = r.Extra.With("bad", panicStringer{})
	sink.formatter.Template("{message} {extra.bad}")
	require.NoError(t, sink.Emit(r))

	lines := readLines(t, sink.Path())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[INFO] broken [FORMAT ERROR:")
	assert.Equal(t, []string{"format"}, errs.Ops())
	assert.Equal(t, uint64(1), sink.Stats().FormatErrors)
}

type panicStringer struct{}

func (panicStringer) String() string { panic("stringer exploded") }

func TestLoggerFlushAndStats(t *testing.T) {
	fs, _ := newTestFileSink(t, WithDurability(DurabilityInterval, 5*time.Millisecond))
	l := NewLogger()
	id := l.Add(fs)
	l.Add(&collectSink{})

	l.Info("hello")
	require.NoError(t, l.Flush(context.Background()))

	stats := l.Stats()
	require.Contains(t, stats, id)
	assert.Len(t, stats, 1, "only sinks reporting stats")
	assert.Equal(t, uint64(1), stats[id].Records)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Flush(ctx), context.Canceled)
	require.NoError(t, l.Close())
}

func TestHeartbeat(t *testing.T) {
	l := NewLogger()
	s := &collectSink{}
	l.Add(s)
	fs, _ := newTestFileSink(t)
	l.Add(fs)

	l.StartHeartbeat(5 * time.Millisecond)
	require.Eventually(t, func() bool {
		for _, r := range s.Records() {
			if typ, _ := r.Extra.Get("type"); typ == "sink" {
				return true
			}
		}
		return false
	}, 2*time.Second, minWaitTime)
	require.NoError(t, l.Close())

	var procSeen bool
	for _, r := range s.Records() {
		assert.Equal(t, heartbeatName, r.Name)
		if typ, _ := r.Extra.Get("type"); typ == "proc" {
			procSeen = true
			_, ok := r.Extra.Get("goroutines")
			assert.True(t, ok)
		}
	}
	assert.True(t, procSeen)
}

func TestDrainTimeout(t *testing.T) {
	errs := &opRecorder{}
	sink, _ := newTestFileSink(t, WithDrainTimeout(10*time.Millisecond), WithErrorHandler(errs.handle))

	release := make(chan struct{})
	started := make(chan struct{})
	sink.worker.run = func(task) {
		close(started)
		<-release
	}
	require.True(t, sink.worker.submit(task{kind: taskRetention}))
	<-started

	err := sink.Close()
	assert.ErrorContains(t, err, "1 background tasks")
	assert.Equal(t, []string{"drain"}, errs.Ops())

	close(release)
	<-sink.worker.done
}

func TestWithDrainTimeoutValidation(t *testing.T) {
	_, err := NewFileSink(t.TempDir()+"/x.log", WithDrainTimeout(0))
	assert.True(t, logerr.IsConfig(err))
	_, err = NewFileSink("", WithDrainTimeout(time.Second))
	assert.True(t, logerr.IsConfig(err))
}
