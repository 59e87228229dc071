// FILE: lixenwraith/sinklog/processor_test.go
package sinklog

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

// gateSink blocks every Emit until the gate is opened
type gateSink struct {
	collectSink
	gate chan struct{}
	once sync.Once
}

func newGateSink() *gateSink { return &gateSink{gate: make(chan struct{})} }

func (s *gateSink) Emit(r *record.Record) error {
	<-s.gate
	return s.collectSink.Emit(r)
}

func (s *gateSink) open() { s.once.Do(func() { close(s.gate) }) }

func TestAsyncSinkDeliversInOrder(t *testing.T) {
	inner := &collectSink{}
	a, err := NewAsyncSink(inner, 16, OverflowBlock, time.Second)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, a.Emit(rec(fmt.Sprint(i))))
	}
	require.NoError(t, a.Flush())
	assert.Len(t, inner.Records(), 100)

	require.NoError(t, a.Close())
	msgs := inner.Messages()
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprint(i), m)
	}
	assert.Equal(t, 1, inner.closeN, "inner sink closed with the async sink")
	assert.ErrorIs(t, a.Emit(rec("late")), logerr.ErrSinkClosed)
	assert.NoError(t, a.Close())
}

func TestAsyncSinkDropsWhenFull(t *testing.T) {
	diag := captureDiagnostics(t)
	inner := newGateSink()
	a, err := NewAsyncSink(inner, 2, OverflowDrop, time.Second)
	require.NoError(t, err)

	// One record held by the blocked processor, two queued, the rest dropped
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Emit(rec(fmt.Sprint(i))))
		time.Sleep(minWaitTime / 10)
	}
	st := a.Stats()
	assert.GreaterOrEqual(t, st.Dropped, uint64(7))

	inner.open()
	require.NoError(t, a.Close())
	assert.Equal(t, uint64(10), st.Dropped+uint64(len(inner.Records())))
	assert.Contains(t, diag.String(), "dropped")
}

func TestAsyncSinkCloseTimeout(t *testing.T) {
	inner := newGateSink()
	a, err := NewAsyncSink(inner, 4, OverflowBlock, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, a.Emit(rec("stuck")))
	require.NoError(t, a.Emit(rec("queued")))

	err = a.Close()
	assert.ErrorContains(t, err, "abandoned")

	// Release the processor so it can exit before the leak check
	inner.open()
	<-a.exited
}

func TestAsyncSinkInnerErrors(t *testing.T) {
	diag := captureDiagnostics(t)
	a, err := NewAsyncSink(failingSink{err: errors.New("nope")}, 4, OverflowBlock, time.Second)
	require.NoError(t, err)
	require.NoError(t, a.Emit(rec("x")))
	require.NoError(t, a.Flush())
	assert.Equal(t, uint64(1), a.Stats().WriteErrors)
	assert.Contains(t, diag.String(), "nope")
	assert.ErrorContains(t, a.Close(), "nope")
}

func TestAsyncSinkValidation(t *testing.T) {
	_, err := NewAsyncSink(nil, 4, OverflowBlock, time.Second)
	assert.True(t, logerr.IsConfig(err))
	_, err = NewAsyncSink(&collectSink{}, 0, OverflowBlock, time.Second)
	assert.True(t, logerr.IsConfig(err))
}

func TestAsyncFileSinkConcurrent(t *testing.T) {
	fs, dir := newTestFileSink(t, WithRotation(sizePolicy(t, 2048)))
	a, err := NewAsyncSink(fs, 64, OverflowBlock, 5*time.Second)
	require.NoError(t, err)

	l := NewLogger()
	l.Add(a)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Info(fmt.Sprintf("g%d-%d", g, i))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close())

	assert.Equal(t, 200, countAllLines(t, dir))
}
