// FILE: lixenwraith/sinklog/storage.go
package sinklog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lixenwraith/sinklog/compress"
	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/retention"
	"github.com/lixenwraith/sinklog/rotation"
)

// splitStem separates "app.log" into "app" and "log"
func splitStem(base string) (stem, ext string) {
	e := filepath.Ext(base)
	if e == "" || e == base {
		return base, ""
	}
	return strings.TrimSuffix(base, e), e[1:]
}

// archivePattern matches archives produced for the given stem and extension, compressed or not
func archivePattern(stem, ext string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	b.WriteString(regexp.QuoteMeta(stem))
	b.WriteString(`\.\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}\.\d{3}(?:_\d{3}(?:_\d{19})?)?`)
	if ext != "" {
		b.WriteString(`\.`)
		b.WriteString(regexp.QuoteMeta(ext))
	}
	b.WriteString(`(?:\.(?:` + strings.Join(compress.Tags, "|") + `))?$`)
	return regexp.MustCompile(b.String())
}

// isCompressedName reports whether name carries a known compression extension
func isCompressedName(name string) bool {
	for _, tag := range compress.Tags {
		if strings.HasSuffix(name, "."+tag) {
			return true
		}
	}
	return false
}

// openActive opens the static path for appending and loads its size and start time
func (s *FileSink) openActive() error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return &logerr.IOError{Op: "open", Path: s.path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return &logerr.IOError{Op: "stat", Path: s.path, Err: err}
	}
	s.file = f
	s.size = info.Size()
	if s.size > 0 {
		s.opened = info.ModTime()
	} else {
		s.opened = s.now()
	}
	return nil
}

// archiveName returns the first free archive path for now, starting the collision counter at seq.
// A seq of zero tries the plain name first.
func (s *FileSink) archiveName(now time.Time, seq int) (string, int) {
	stamp := now.In(s.location()).Format(archiveTimeLayout)
	for ; seq <= maxArchiveCollisions; seq++ {
		name := s.stem + "." + stamp
		if seq > 0 {
			name += fmt.Sprintf("_%03d", seq)
		}
		if s.ext != "" {
			name += "." + s.ext
		}
		candidate := filepath.Join(s.dir, name)
		if !archiveExists(candidate) {
			return candidate, seq
		}
	}
	// Counter exhausted; extend the last counter value so the name still sorts after it
	name := fmt.Sprintf("%s.%s_%03d_%019d", s.stem, stamp, maxArchiveCollisions, now.UnixNano())
	if s.ext != "" {
		name += "." + s.ext
	}
	return filepath.Join(s.dir, name), seq
}

// archiveExists checks the plain archive name and every compressed form of it
func archiveExists(path string) bool {
	if _, err := os.Lstat(path); err == nil {
		return true
	}
	for _, tag := range compress.Tags {
		if _, err := os.Lstat(path + "." + tag); err == nil {
			return true
		}
	}
	return false
}

// rotateLocked renames the active file to an archive and opens a fresh one.
// An empty active file is kept and only the policy is rearmed.
// A failed rename leaves the sink writing to the original file.
func (s *FileSink) rotateLocked(reason rotation.Reason, now time.Time) error {
	if s.file != nil && s.size == 0 {
		if s.rotation != nil {
			s.rotation.Reset(now)
		}
		s.stats.skippedRotations.Add(1)
		return nil
	}

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			s.onError("rotate", &logerr.IOError{Op: "close", Path: s.path, Err: err})
		}
		s.file = nil
	}

	archive, seq := s.archiveName(now, 0)
	err := renameFile(s.path, archive)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.onError("rename", &logerr.IOError{Op: "rename", Path: archive, Err: err})
		archive, _ = s.archiveName(now, seq+1)
		err = renameFile(s.path, archive)
	}
	if err != nil {
		s.stats.renameFailures.Add(1)
		renameErr := &logerr.IOError{Op: "rename", Path: archive, Err: err}
		s.onError("rename", renameErr)
		if s.rotation != nil {
			s.rotation.Reset(now)
		}
		if openErr := s.openActive(); openErr != nil {
			s.onError("rotate", openErr)
			return combineErrors(renameErr, openErr)
		}
		return renameErr
	}

	// The archive exists from here on, so it is accounted for even if reopening fails.
	// writeLocked retries the open on the next write.
	s.size = 0
	s.opened = now
	s.lastRotation = now
	if s.rotation != nil {
		s.rotation.Reset(now)
	}
	s.stats.rotations.Add(1)
	s.stats.lastReason.Store(string(reason))

	if s.compression != nil {
		s.worker.submit(task{kind: taskCompress, path: archive})
	}
	if !s.retention.IsZero() {
		s.worker.submit(task{kind: taskRetention})
	}

	if err := s.openActive(); err != nil {
		s.onError("rotate", err)
		return err
	}
	return nil
}

// runTask executes one background task on the worker goroutine
func (s *FileSink) runTask(t task) {
	switch t.kind {
	case taskCompress:
		s.compressArchive(t.path)
	case taskRetention:
		s.applyRetention()
	}
}

func (s *FileSink) compressArchive(path string) {
	dst, err := s.compression.Compress(path)
	if err != nil {
		s.stats.compressErrors.Add(1)
		s.onError("compress", err)
		return
	}
	if dst != "" {
		s.stats.compressed.Add(1)
	}
}

// applyRetention deletes the archives selected by the retention policy.
// A failed deletion is reported and the pass continues with the next file.
func (s *FileSink) applyRetention() {
	files, err := s.scanArchives()
	if err != nil {
		s.onError("retention", err)
		return
	}
	for _, f := range s.retention.SelectForDeletion(files, s.now()) {
		if err := os.Remove(f.Path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			s.stats.deleteErrors.Add(1)
			s.onError("delete", &logerr.IOError{Op: "delete", Path: f.Path, Err: err})
			continue
		}
		s.stats.deleted.Add(1)
	}
}

func (s *FileSink) scanArchives() ([]retention.FileDescriptor, error) {
	return retention.Scan(s.dir, s.archivePattern.MatchString)
}

// scheduleStartup queues compression of archives left uncompressed by a previous run, then a retention pass
func (s *FileSink) scheduleStartup() {
	if s.compression != nil {
		files, err := s.scanArchives()
		if err != nil {
			s.onError("compress", err)
		}
		sort.Slice(files, func(i, j int) bool { return files[i].ModTime.Before(files[j].ModTime) })
		for _, f := range files {
			if !isCompressedName(f.Path) {
				s.worker.submit(task{kind: taskCompress, path: f.Path})
			}
		}
	}
	if !s.retention.IsZero() {
		s.worker.submit(task{kind: taskRetention})
	}
}
