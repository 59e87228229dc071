// FILE: lixenwraith/sinklog/filesink.go
package sinklog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/sinklog/compress"
	"github.com/lixenwraith/sinklog/formatter"
	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
	"github.com/lixenwraith/sinklog/retention"
	"github.com/lixenwraith/sinklog/rotation"
)

// renameFile is swapped in tests to simulate rename failures
var renameFile = os.Rename

// FileSink writes formatted records to a file, rotating it by renaming the active file to a
// timestamped archive and reopening the static path. Compression and retention run on a
// background worker so Emit never waits on them.
type FileSink struct {
	mu sync.Mutex

	path string
	dir  string
	stem string
	ext  string // without the leading dot

	file         *os.File
	size         int64
	opened       time.Time
	lastRotation time.Time
	closed       bool

	formatter     *formatter.Formatter
	rotation      rotation.Policy
	rotationSpec  string // parsed once the location is known
	retention     *retention.Policy
	compression   compress.Strategy
	durability    Durability
	flushInterval time.Duration
	drainTimeout  time.Duration
	localTime     bool
	now           func() time.Time
	onError       ErrorHandler

	archivePattern *regexp.Regexp
	worker         *worker
	stats          sinkStats
}

// FileOption configures a FileSink
type FileOption func(*FileSink) error

// WithFormatter sets the formatter. The sink owns it afterwards.
func WithFormatter(f *formatter.Formatter) FileOption {
	return func(s *FileSink) error {
		if f == nil {
			return nil
		}
		if err := f.Err(); err != nil {
			return err
		}
		s.formatter = f
		return nil
	}
}

// WithRotation sets the rotation policy; nil disables rotation
func WithRotation(p rotation.Policy) FileOption {
	return func(s *FileSink) error {
		s.rotation = p
		s.rotationSpec = ""
		return nil
	}
}

// WithRotationSpec parses a rotation expression such as "100 MB", "daily" or "12:00, 1 GB"
func WithRotationSpec(spec string) FileOption {
	return func(s *FileSink) error {
		s.rotation = nil
		s.rotationSpec = strings.TrimSpace(spec)
		return nil
	}
}

// WithRetention sets the retention policy; nil keeps every archive
func WithRetention(p *retention.Policy) FileOption {
	return func(s *FileSink) error {
		s.retention = p
		return nil
	}
}

// WithRetentionSpec parses a retention expression such as "10", "1 week" or "500 MB"
func WithRetentionSpec(spec string) FileOption {
	return func(s *FileSink) error {
		if strings.TrimSpace(spec) == "" {
			s.retention = nil
			return nil
		}
		p, err := retention.Parse(spec)
		if err != nil {
			return err
		}
		s.retention = p
		return nil
	}
}

// WithCompression sets the archive compression tag ("gz", "zip", "zst", "lz4", "br" or "")
func WithCompression(tag string) FileOption {
	return func(s *FileSink) error {
		c, err := compress.New(tag)
		if err != nil {
			return err
		}
		s.compression = c
		return nil
	}
}

// WithDurability sets the flush mode. interval is used only with DurabilityInterval.
func WithDurability(d Durability, interval time.Duration) FileOption {
	return func(s *FileSink) error {
		s.durability = d
		if interval > 0 {
			s.flushInterval = interval
		}
		return nil
	}
}

// WithDrainTimeout bounds how long Close waits for background work
func WithDrainTimeout(d time.Duration) FileOption {
	return func(s *FileSink) error {
		if d <= 0 {
			return logerr.Configf("drain_timeout", d.String(), "must be positive")
		}
		s.drainTimeout = d
		return nil
	}
}

// WithLocalTime names archives and evaluates schedules in local time instead of UTC
func WithLocalTime(local bool) FileOption {
	return func(s *FileSink) error {
		s.localTime = local
		return nil
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) FileOption {
	return func(s *FileSink) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// WithErrorHandler receives failures of background and write-path operations.
// The default writes them to the diagnostic stream.
func WithErrorHandler(h ErrorHandler) FileOption {
	return func(s *FileSink) error {
		if h != nil {
			s.onError = h
		}
		return nil
	}
}

// NewFileSink opens path for appending, creating parent directories as needed
func NewFileSink(path string, opts ...FileOption) (*FileSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, logerr.Configf("path", path, "must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &logerr.IOError{Op: "resolve", Path: path, Err: err}
	}

	s := &FileSink{
		path:          abs,
		dir:           filepath.Dir(abs),
		flushInterval: defaultFlushInterval,
		drainTimeout:  defaultDrainTimeout,
		now:           time.Now,
	}
	s.stem, s.ext = splitStem(filepath.Base(abs))
	s.onError = s.reportDiagnostic

	var errs []error
	for _, opt := range opts {
		if err := opt(s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := combineErrors(errs...); err != nil {
		return nil, err
	}
	if s.rotationSpec != "" {
		p, err := rotation.Parse(s.rotationSpec, s.location())
		if err != nil {
			return nil, err
		}
		s.rotation = p
	}
	if s.formatter == nil {
		s.formatter = formatter.New()
	}
	s.archivePattern = archivePattern(s.stem, s.ext)

	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, &logerr.IOError{Op: "mkdir", Path: s.dir, Err: err}
	}
	if err := s.openActive(); err != nil {
		return nil, err
	}
	if s.rotation != nil {
		s.rotation.Reset(s.opened)
	}

	var tick time.Duration
	if s.durability == DurabilityInterval {
		tick = s.flushInterval
	}
	s.worker = newWorker(s.runTask, tick, s.syncTick)
	s.scheduleStartup()
	return s, nil
}

// Path returns the absolute path of the active file
func (s *FileSink) Path() string { return s.path }

// Emit formats r and appends it, rotating first when the policy asks for it
func (s *FileSink) Emit(r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}

	line, err := s.formatter.Format(r)
	if err != nil {
		s.stats.formatErrors.Add(1)
		s.onError("format", err)
		line = formatter.Fallback(r, err)
	}
	return s.writeLocked(line)
}

// Write appends p as one entry, applying rotation. It lets the sink back io.Writer consumers.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, logerr.ErrSinkClosed
	}
	if err := s.writeLocked(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *FileSink) writeLocked(line []byte) error {
	incoming := int64(len(line))
	if s.rotation != nil {
		now := s.now()
		d := s.rotation.ShouldRotate(s.rotationState(), incoming, now)
		if d.Rotate {
			s.rotateLocked(d.Reason, now)
		}
	}

	if s.file == nil {
		// A previous rotation could not reopen the active path
		if err := s.openActive(); err != nil {
			s.stats.writeErrors.Add(1)
			return err
		}
	}

	n, err := s.file.Write(line)
	s.size += int64(n)
	s.stats.bytes.Add(uint64(n))
	if err != nil {
		s.stats.writeErrors.Add(1)
		return &logerr.IOError{Op: "write", Path: s.path, Err: err}
	}
	s.stats.records.Add(1)

	if s.durability == DurabilitySync {
		if err := s.file.Sync(); err != nil {
			s.onError("sync", &logerr.IOError{Op: "sync", Path: s.path, Err: err})
		}
	}
	return nil
}

func (s *FileSink) rotationState() rotation.State {
	return rotation.State{
		HasFile:      s.file != nil,
		Size:         s.size,
		Opened:       s.opened,
		LastRotation: s.lastRotation,
	}
}

// Rotate forces a rotation regardless of the policy. An empty active file is left in place.
func (s *FileSink) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}
	return s.rotateLocked(rotation.ReasonManual, s.now())
}

// Flush syncs the active file to stable storage
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return logerr.ErrSinkClosed
	}
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return &logerr.IOError{Op: "sync", Path: s.path, Err: err}
	}
	return nil
}

// WaitBackground blocks until queued compression and retention work has finished.
// It returns false if the timeout passed first.
func (s *FileSink) WaitBackground(timeout time.Duration) bool {
	return s.worker.waitIdle(timeout)
}

// Close stops accepting records, drains background work within the drain timeout,
// then syncs and closes the active file. It is safe to call more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if abandoned := s.worker.drain(s.drainTimeout); abandoned > 0 {
		err := fmtErrorf("%d background tasks for %s abandoned after %v", abandoned, s.path, s.drainTimeout)
		s.onError("drain", err)
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		if err := s.file.Sync(); err != nil {
			errs = append(errs, &logerr.IOError{Op: "sync", Path: s.path, Err: err})
		}
		if err := s.file.Close(); err != nil {
			errs = append(errs, &logerr.IOError{Op: "close", Path: s.path, Err: err})
		}
		s.file = nil
	}
	return combineErrors(errs...)
}

// syncTick runs on the worker ticker under interval durability
func (s *FileSink) syncTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.file == nil {
		return
	}
	if err := s.file.Sync(); err != nil {
		s.onError("sync", &logerr.IOError{Op: "sync", Path: s.path, Err: err})
	}
}

func (s *FileSink) location() *time.Location {
	if s.localTime {
		return time.Local
	}
	return time.UTC
}

func (s *FileSink) reportDiagnostic(op string, err error) {
	internalLog("%s: %s: %v", s.path, op, err)
}

func (s *FileSink) String() string {
	var parts []string
	parts = append(parts, "file "+s.path)
	if s.rotation != nil {
		parts = append(parts, "rotation="+s.rotation.String())
	}
	if s.compression != nil {
		parts = append(parts, "compression="+s.compression.Extension())
	}
	if !s.retention.IsZero() {
		parts = append(parts, "retention="+s.retention.String())
	}
	return strings.Join(parts, " ")
}
