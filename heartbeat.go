// FILE: lixenwraith/sinklog/heartbeat.go
package sinklog

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/sinklog/record"
)

// heartbeatName is the logger name carried by heartbeat records
const heartbeatName = "sinklog.heartbeat"

// heartbeat periodically logs process and sink statistics
type heartbeat struct {
	sequence atomic.Uint64
	stop     chan struct{}
	done     chan struct{}
}

// StartHeartbeat logs process and sink statistics at INFO every interval until Close or StopHeartbeat.
// Calling it again restarts the heartbeat with the new interval.
func (l *Logger) StartHeartbeat(interval time.Duration) {
	if interval <= 0 {
		return
	}
	l.stopHeartbeat()

	hb := &heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	c := l.core
	c.mu.Lock()
	c.heartbeat = hb
	c.mu.Unlock()

	hl := l.Named(heartbeatName)
	go func() {
		defer close(hb.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-hb.stop:
				return
			case <-ticker.C:
				hl.handleHeartbeat(hb)
			}
		}
	}()
}

// StopHeartbeat stops a running heartbeat
func (l *Logger) StopHeartbeat() {
	l.stopHeartbeat()
}

func (l *Logger) stopHeartbeat() {
	c := l.core
	c.mu.Lock()
	hb := c.heartbeat
	c.heartbeat = nil
	c.mu.Unlock()
	if hb != nil {
		close(hb.stop)
		<-hb.done
	}
}

// handleHeartbeat processes a heartbeat timer tick
func (l *Logger) handleHeartbeat(hb *heartbeat) {
	sequence := hb.sequence.Add(1)
	l.logProcHeartbeat(sequence)
	for id, st := range l.Stats() {
		l.logSinkHeartbeat(sequence, id, st)
	}
}

// logProcHeartbeat logs process statistics
func (l *Logger) logProcHeartbeat(sequence uint64) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := l.core.now().Sub(l.core.start)
	l.log(record.LevelInfo, "heartbeat", []any{
		"type", "proc",
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", uptime.Hours()),
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc", humanize.IBytes(mem.HeapAlloc),
		"num_gc", mem.NumGC,
	}, nil)
}

// logSinkHeartbeat logs the counters of one sink
func (l *Logger) logSinkHeartbeat(sequence uint64, id HandlerID, st SinkStats) {
	args := append([]any{"type", "sink", "sequence", sequence, "handler", uint64(id)}, st.Summary()...)
	if !st.LastRotation.IsZero() {
		args = append(args, "last_rotation", st.LastRotation.Format(time.RFC3339), "reason", st.LastReason)
	}
	l.log(record.LevelInfo, "heartbeat", args, nil)
}
