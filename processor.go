// FILE: lixenwraith/sinklog/processor.go
package sinklog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

// AsyncSink queues records for another sink and emits them from a dedicated goroutine,
// so callers never wait on the inner sink's I/O.
type AsyncSink struct {
	inner    Sink
	overflow Overflow
	timeout  time.Duration

	mu     sync.RWMutex // guards ch against send after close
	closed bool
	ch     chan *record.Record

	flushRequests chan chan struct{}
	exited        chan struct{}

	unreported atomic.Uint64
	stats      sinkStats
}

// NewAsyncSink starts the processing goroutine in front of inner.
// Close waits up to drainTimeout for queued records to be emitted.
func NewAsyncSink(inner Sink, queueSize int, overflow Overflow, drainTimeout time.Duration) (*AsyncSink, error) {
	if inner == nil {
		return nil, logerr.Configf("sink", "nil", "inner sink is required")
	}
	if queueSize <= 0 {
		return nil, logerr.Configf("queue_size", "", "must be positive, got %d", queueSize)
	}
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}
	a := &AsyncSink{
		inner:         inner,
		overflow:      overflow,
		timeout:       drainTimeout,
		ch:            make(chan *record.Record, queueSize),
		flushRequests: make(chan chan struct{}),
		exited:        make(chan struct{}),
	}
	go a.processRecords()
	return a, nil
}

// Emit queues r. Under OverflowDrop a full queue drops the record and counts it.
func (a *AsyncSink) Emit(r *record.Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return logerr.ErrSinkClosed
	}
	if a.overflow == OverflowDrop {
		select {
		case a.ch <- r:
		default:
			a.stats.dropped.Add(1)
			a.unreported.Add(1)
		}
		return nil
	}
	a.ch <- r
	return nil
}

// processRecords is the main loop running in a separate goroutine
func (a *AsyncSink) processRecords() {
	defer close(a.exited)

	reportTicker := time.NewTicker(dropReportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case r, ok := <-a.ch:
			if !ok {
				a.reportDrops()
				return
			}
			a.emitInner(r)

		case confirm := <-a.flushRequests:
			// Drain what is queued at the time of the request, then flush the inner sink
			for n := len(a.ch); n > 0; n-- {
				r, ok := <-a.ch
				if !ok {
					break
				}
				a.emitInner(r)
			}
			if f, ok := a.inner.(Flusher); ok {
				if err := f.Flush(); err != nil {
					internalLog("async: flush: %v", err)
				}
			}
			close(confirm)

		case <-reportTicker.C:
			a.reportDrops()
		}
	}
}

func (a *AsyncSink) emitInner(r *record.Record) {
	defer func() {
		if p := recover(); p != nil {
			internalLog("async (%s): recovered panic: %v", sinkName(a.inner), p)
		}
	}()
	if err := a.inner.Emit(r); err != nil {
		a.stats.writeErrors.Add(1)
		internalLog("async (%s): %v", sinkName(a.inner), err)
		return
	}
	a.stats.records.Add(1)
}

func (a *AsyncSink) reportDrops() {
	if n := a.unreported.Swap(0); n > 0 {
		internalLog("async (%s): dropped %d records, queue full", sinkName(a.inner), n)
	}
}

// Flush waits until records queued before the call reach the inner sink, or the timeout passes
func (a *AsyncSink) Flush() error {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return logerr.ErrSinkClosed
	}
	a.mu.RUnlock()

	confirm := make(chan struct{})
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()
	select {
	case a.flushRequests <- confirm:
	case <-a.exited:
		return logerr.ErrSinkClosed
	case <-timer.C:
		return fmtErrorf("async flush request timed out after %v", a.timeout)
	}
	select {
	case <-confirm:
		return nil
	case <-timer.C:
		return fmtErrorf("async flush timed out after %v", a.timeout)
	}
}

// Stats returns the queue counters merged with the inner sink counters when available
func (a *AsyncSink) Stats() SinkStats {
	st := a.stats.snapshot()
	if sr, ok := a.inner.(StatsReporter); ok {
		inner := sr.Stats()
		inner.Dropped += st.Dropped
		inner.Pending += len(a.ch)
		return inner
	}
	st.Pending = len(a.ch)
	return st
}

// Close stops intake, emits queued records within the drain timeout and closes the inner sink
func (a *AsyncSink) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	var errs []error
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()
	select {
	case <-a.exited:
	case <-timer.C:
		errs = append(errs, fmtErrorf("async sink abandoned %d records after %v", len(a.ch), a.timeout))
	}
	errs = append(errs, a.inner.Close())
	return combineErrors(errs...)
}

func (a *AsyncSink) String() string {
	return "async " + sinkName(a.inner)
}
