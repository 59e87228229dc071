// FILE: lixenwraith/sinklog/logger.go
package sinklog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
)

// Logger fans records out to its registered sinks.
// Derived loggers from Bind, Named, Opt and WithContext share the sinks of their parent.
type Logger struct {
	core  *core
	name  string
	extra record.Extras
	ctx   context.Context
	opts  CallOptions
}

// CallOptions adjusts how a single log call builds its record
type CallOptions struct {
	Depth      int   // additional frames to skip when resolving the call site
	TraceDepth int64 // number of caller functions recorded in Record.Trace, up to 10
	Err        error // error attached to every record as exception info
}

// core is the state shared by a Logger and all loggers derived from it
type core struct {
	mu        sync.Mutex // serializes handler set changes
	handlers  atomic.Pointer[[]*handler]
	nextID    atomic.Uint64
	minLevel  atomic.Int64
	levels    *record.LevelSet
	start     time.Time
	clock     atomic.Pointer[func() time.Time]
	heartbeat *heartbeat
}

// handler is one registered sink with its gating rules
type handler struct {
	id      HandlerID
	sink    Sink
	level   record.Level
	filter  Filter
	removed atomic.Bool
}

// HandlerOption configures a handler at registration
type HandlerOption func(*handler)

// WithLevel sets the minimum level a sink receives. The default is TRACE.
func WithLevel(level record.Level) HandlerOption {
	return func(h *handler) {
		h.level = level
	}
}

// WithFilter sets a predicate a record must pass to reach the sink
func WithFilter(f Filter) HandlerOption {
	return func(h *handler) {
		h.filter = f
	}
}

// NewLogger creates a Logger with no sinks
func NewLogger() *Logger {
	c := &core{
		levels: record.NewLevelSet(),
		start:  time.Now(),
	}
	c.setClock(time.Now)
	c.store(nil)
	return &Logger{core: c}
}

func (c *core) snapshot() []*handler {
	return *c.handlers.Load()
}

// store publishes a new handler set and recomputes the lowest enabled level. Callers hold mu.
func (c *core) store(hs []*handler) {
	minNo := int64(math.MaxInt64)
	for _, h := range hs {
		if h.level.No < minNo {
			minNo = h.level.No
		}
	}
	c.handlers.Store(&hs)
	c.minLevel.Store(minNo)
}

// Add registers a sink and returns its handle. Sinks receive records in registration order.
func (l *Logger) Add(sink Sink, opts ...HandlerOption) HandlerID {
	h := &handler{sink: sink, level: record.LevelTrace}
	for _, opt := range opts {
		opt(h)
	}
	c := l.core
	h.id = HandlerID(c.nextID.Add(1))

	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.snapshot()
	next := make([]*handler, len(cur), len(cur)+1)
	copy(next, cur)
	c.store(append(next, h))
	return h.id
}

// Remove deregisters the sink and closes it. Removing an unknown or already removed handle is a no-op.
func (l *Logger) Remove(id HandlerID) error {
	c := l.core
	c.mu.Lock()
	cur := c.snapshot()
	var target *handler
	next := make([]*handler, 0, len(cur))
	for _, h := range cur {
		if h.id == id {
			target = h
			continue
		}
		next = append(next, h)
	}
	if target == nil {
		c.mu.Unlock()
		return nil
	}
	c.store(next)
	c.mu.Unlock()

	target.removed.Store(true)
	return target.sink.Close()
}

// Handlers returns the registered handles in dispatch order
func (l *Logger) Handlers() []HandlerID {
	hs := l.core.snapshot()
	ids := make([]HandlerID, len(hs))
	for i, h := range hs {
		ids[i] = h.id
	}
	return ids
}

// AddLevel registers a custom level usable with Log and level filters
func (l *Logger) AddLevel(name string, no int64) (record.Level, error) {
	lvl, err := l.core.levels.Add(name, no)
	if err != nil {
		return record.Level{}, &logerr.ConfigError{Field: "level", Value: name, Err: err}
	}
	return lvl, nil
}

// Level resolves a level name or number against the levels known to this logger
func (l *Logger) Level(name string) (record.Level, error) {
	lvl, err := l.core.levels.Lookup(name)
	if err != nil {
		return record.Level{}, &logerr.ConfigError{Field: "level", Value: name, Err: err}
	}
	return lvl, nil
}

// Enabled reports whether any sink would accept a record at level
func (l *Logger) Enabled(level record.Level) bool {
	return level.No >= l.core.minLevel.Load()
}

// SetClock replaces the time source used for record timestamps.
// It is safe to call while other goroutines are logging.
func (l *Logger) SetClock(now func() time.Time) {
	if now != nil {
		l.core.setClock(now)
	}
}

func (c *core) setClock(now func() time.Time) { c.clock.Store(&now) }

func (c *core) now() time.Time { return (*c.clock.Load())() }

func (l *Logger) derive() *Logger {
	d := *l
	return &d
}

// Bind returns a logger that adds the key-value pairs to every record
func (l *Logger) Bind(kv ...any) *Logger {
	d := l.derive()
	d.extra = l.extra.With(kv...)
	return d
}

// Named returns a logger whose records carry name instead of the caller package
func (l *Logger) Named(name string) *Logger {
	d := l.derive()
	d.name = name
	return d
}

// Opt returns a logger applying opts to every call
func (l *Logger) Opt(opts CallOptions) *Logger {
	d := l.derive()
	d.opts = opts
	return d
}

// WithContext returns a logger that adds the extras attached to ctx by Contextualize
func (l *Logger) WithContext(ctx context.Context) *Logger {
	d := l.derive()
	d.ctx = ctx
	return d
}

type contextKey struct{}

// Contextualize attaches key-value pairs to ctx for loggers created with WithContext
func Contextualize(ctx context.Context, kv ...any) context.Context {
	prev, _ := ctx.Value(contextKey{}).(record.Extras)
	return context.WithValue(ctx, contextKey{}, prev.With(kv...))
}

// dispatch hands r to every handler whose gates it passes. A failing sink does not affect the others.
func (c *core) dispatch(hs []*handler, r *record.Record) {
	for _, h := range hs {
		if r.Level.No < h.level.No {
			continue
		}
		h.handle(r)
	}
}

func (h *handler) handle(r *record.Record) {
	defer func() {
		if p := recover(); p != nil {
			internalLog("handler %d (%s): recovered panic: %v", h.id, sinkName(h.sink), p)
		}
	}()
	if h.filter != nil && !h.filter(r) {
		return
	}
	if err := h.sink.Emit(r); err != nil {
		if errors.Is(err, logerr.ErrSinkClosed) && h.removed.Load() {
			return
		}
		internalLog("handler %d (%s): %v", h.id, sinkName(h.sink), err)
	}
}

func sinkName(s Sink) string {
	if st, ok := s.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s)
}
