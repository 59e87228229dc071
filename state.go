// FILE: lixenwraith/sinklog/state.go
package sinklog

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sinklog/logerr"
)

// sinkStats holds the live counters of a sink
type sinkStats struct {
	records          atomic.Uint64
	bytes            atomic.Uint64
	writeErrors      atomic.Uint64
	formatErrors     atomic.Uint64
	rotations        atomic.Uint64
	skippedRotations atomic.Uint64
	renameFailures   atomic.Uint64
	compressed       atomic.Uint64
	compressErrors   atomic.Uint64
	deleted          atomic.Uint64
	deleteErrors     atomic.Uint64
	dropped          atomic.Uint64
	lastReason       atomic.Value // string
}

// SinkStats is a snapshot of sink counters
type SinkStats struct {
	Records          uint64
	Bytes            uint64
	WriteErrors      uint64
	FormatErrors     uint64
	Rotations        uint64
	SkippedRotations uint64
	RenameFailures   uint64
	Compressed       uint64
	CompressErrors   uint64
	Deleted          uint64
	DeleteErrors     uint64
	Dropped          uint64
	LastRotation     time.Time
	LastReason       string
	Pending          int // background tasks not yet finished
}

func (s *sinkStats) snapshot() SinkStats {
	st := SinkStats{
		Records:          s.records.Load(),
		Bytes:            s.bytes.Load(),
		WriteErrors:      s.writeErrors.Load(),
		FormatErrors:     s.formatErrors.Load(),
		Rotations:        s.rotations.Load(),
		SkippedRotations: s.skippedRotations.Load(),
		RenameFailures:   s.renameFailures.Load(),
		Compressed:       s.compressed.Load(),
		CompressErrors:   s.compressErrors.Load(),
		Deleted:          s.deleted.Load(),
		DeleteErrors:     s.deleteErrors.Load(),
		Dropped:          s.dropped.Load(),
	}
	if v, ok := s.lastReason.Load().(string); ok {
		st.LastReason = v
	}
	return st
}

// Summary renders the counters as key/value pairs suitable for a log call
func (st SinkStats) Summary() []any {
	return []any{
		"records", st.Records,
		"written", humanize.IBytes(st.Bytes),
		"rotations", st.Rotations,
		"compressed", st.Compressed,
		"deleted", st.Deleted,
		"errors", st.WriteErrors + st.FormatErrors + st.RenameFailures + st.CompressErrors + st.DeleteErrors,
		"dropped", st.Dropped,
		"pending", st.Pending,
	}
}

// Stats returns a snapshot of the sink counters
func (s *FileSink) Stats() SinkStats {
	st := s.stats.snapshot()
	s.mu.Lock()
	st.LastRotation = s.lastRotation
	s.mu.Unlock()
	st.Pending = s.worker.pending()
	return st
}

// Stats aggregates the counters of every sink that reports them
func (l *Logger) Stats() map[HandlerID]SinkStats {
	out := make(map[HandlerID]SinkStats)
	for _, h := range l.core.snapshot() {
		if sr, ok := h.sink.(StatsReporter); ok {
			out[h.id] = sr.Stats()
		}
	}
	return out
}

// Flush flushes every sink that supports it, stopping early if ctx is done
func (l *Logger) Flush(ctx context.Context) error {
	var errs []error
	for _, h := range l.core.snapshot() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		f, ok := h.sink.(Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil && !errors.Is(err, logerr.ErrSinkClosed) {
			errs = append(errs, err)
		}
	}
	return combineErrors(errs...)
}

// Close removes every sink and closes them in parallel. Each sink bounds its own drain.
// The Logger accepts new sinks afterwards.
func (l *Logger) Close() error {
	c := l.core
	c.mu.Lock()
	removed := c.snapshot()
	c.store(nil)
	c.mu.Unlock()

	l.stopHeartbeat()

	var g errgroup.Group
	errs := make([]error, len(removed))
	for i, h := range removed {
		h.removed.Store(true)
		g.Go(func() error {
			errs[i] = h.sink.Close()
			return nil
		})
	}
	_ = g.Wait()
	return combineErrors(errs...)
}
