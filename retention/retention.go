// FILE: lixenwraith/sinklog/retention/retention.go
// Package retention selects historical log files for deletion by count, age and total size.
package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lixenwraith/sinklog/internal/units"
	"github.com/lixenwraith/sinklog/logerr"
)

// FileDescriptor is a point-in-time snapshot of one historical file
type FileDescriptor struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Policy is a union of count, age and size limits; any limit left unset is ignored
type Policy struct {
	keep     int
	hasKeep  bool
	maxAge   time.Duration
	maxTotal int64
}

// Option configures a Policy
type Option func(*Policy)

// KeepCount keeps the n most recently modified files
func KeepCount(n int) Option {
	return func(p *Policy) {
		p.keep = n
		p.hasKeep = true
	}
}

// MaxAge selects files modified longer than d ago
func MaxAge(d time.Duration) Option {
	return func(p *Policy) { p.maxAge = d }
}

// MaxTotalSize bounds the cumulative size of the kept files
func MaxTotalSize(bytes int64) Option {
	return func(p *Policy) { p.maxTotal = bytes }
}

// New builds a policy from options
func New(opts ...Option) *Policy {
	p := &Policy{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsZero reports whether no limit is configured
func (p *Policy) IsZero() bool {
	return p == nil || (!p.hasKeep && p.maxAge <= 0 && p.maxTotal <= 0)
}

// SelectForDeletion returns the files any configured limit selects, newest first.
// Files are ordered by modification time descending; equal times fall back to the
// name, which embeds a lexically sortable timestamp.
func (p *Policy) SelectForDeletion(files []FileDescriptor, now time.Time) []FileDescriptor {
	if p.IsZero() || len(files) == 0 {
		return nil
	}
	sorted := make([]FileDescriptor, len(files))
	copy(sorted, files)
	SortNewestFirst(sorted)

	selected := make([]bool, len(sorted))

	if p.hasKeep && len(sorted) > p.keep {
		for i := max(p.keep, 0); i < len(sorted); i++ {
			selected[i] = true
		}
	}

	if p.maxAge > 0 {
		for i, f := range sorted {
			if now.Sub(f.ModTime) > p.maxAge {
				selected[i] = true
			}
		}
	}

	if p.maxTotal > 0 {
		var total int64
		for i, f := range sorted {
			total += f.Size
			if total > p.maxTotal {
				// This file and every older one
				for j := i; j < len(sorted); j++ {
					selected[j] = true
				}
				break
			}
		}
	}

	var out []FileDescriptor
	for i, sel := range selected {
		if sel {
			out = append(out, sorted[i])
		}
	}
	return out
}

func (p *Policy) String() string {
	var parts []string
	if p.hasKeep {
		parts = append(parts, "keep "+strconv.Itoa(p.keep))
	}
	if p.maxAge > 0 {
		parts = append(parts, "max age "+p.maxAge.String())
	}
	if p.maxTotal > 0 {
		parts = append(parts, "max size "+humanize.Bytes(uint64(p.maxTotal)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// SortNewestFirst orders files by modification time descending, then name descending
func SortNewestFirst(files []FileDescriptor) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return filepath.Base(files[i].Path) > filepath.Base(files[j].Path)
	})
}

// Parse builds a policy from comma separated terms: a bare integer is a count,
// a byte size ("500 MB") bounds total size, anything else is an age ("7 days").
func Parse(spec string) (*Policy, error) {
	p := &Policy{}
	terms := 0
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		terms++
		switch {
		case units.IsCount(term):
			n, _ := strconv.Atoi(term)
			KeepCount(n)(p)
		case units.IsSize(term):
			n, err := units.ParseSize(term)
			if err != nil || n <= 0 {
				return nil, logerr.Configf("retention", spec, "invalid size term %q", term)
			}
			p.maxTotal = n
		default:
			d, err := units.ParseDuration(term)
			if err != nil {
				return nil, &logerr.ConfigError{Field: "retention", Value: spec, Err: err}
			}
			if d <= 0 {
				return nil, logerr.Configf("retention", spec, "age must be positive")
			}
			p.maxAge = d
		}
	}
	if terms == 0 {
		return nil, logerr.Configf("retention", spec, "empty retention spec")
	}
	return p, nil
}

// Scan snapshots the regular files in dir whose base name satisfies match.
// Files that disappear between listing and stat are skipped.
func Scan(dir string, match func(name string) bool) ([]FileDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &logerr.IOError{Op: "scan", Path: dir, Err: err}
	}
	var out []FileDescriptor
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &logerr.IOError{Op: "stat", Path: filepath.Join(dir, e.Name()), Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, FileDescriptor{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// String formats a descriptor for diagnostics
func (f FileDescriptor) String() string {
	return fmt.Sprintf("%s (%s, %s)", filepath.Base(f.Path), humanize.Bytes(uint64(f.Size)), f.ModTime.Format(time.RFC3339))
}
