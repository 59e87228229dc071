// FILE: lixenwraith/sinklog/record/level.go
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Level is a named severity; levels are ordered by No
type Level struct {
	Name string
	No   int64
}

// Default levels
var (
	LevelTrace    = Level{Name: "TRACE", No: 5}
	LevelDebug    = Level{Name: "DEBUG", No: 10}
	LevelInfo     = Level{Name: "INFO", No: 20}
	LevelSuccess  = Level{Name: "SUCCESS", No: 25}
	LevelWarning  = Level{Name: "WARNING", No: 30}
	LevelError    = Level{Name: "ERROR", No: 40}
	LevelCritical = Level{Name: "CRITICAL", No: 50}
)

func (l Level) String() string { return l.Name }

// Enabled reports whether l passes a threshold
func (l Level) Enabled(threshold Level) bool { return l.No >= threshold.No }

// LevelSet is a registry of named levels. The zero value is not usable, use NewLevelSet.
type LevelSet struct {
	mu     sync.RWMutex
	byName map[string]Level
}

// NewLevelSet returns a registry preloaded with the default levels
func NewLevelSet() *LevelSet {
	ls := &LevelSet{byName: make(map[string]Level)}
	for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelSuccess, LevelWarning, LevelError, LevelCritical} {
		ls.byName[l.Name] = l
	}
	ls.byName["WARN"] = LevelWarning
	return ls
}

// Add registers a custom level. Names are case-insensitive and must be unique.
func (ls *LevelSet) Add(name string, no int64) (Level, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return Level{}, fmt.Errorf("level name cannot be empty")
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if _, exists := ls.byName[key]; exists {
		return Level{}, fmt.Errorf("level %q already exists", key)
	}
	lvl := Level{Name: key, No: no}
	ls.byName[key] = lvl
	return lvl, nil
}

// Lookup resolves a level name or a numeric severity string
func (ls *LevelSet) Lookup(s string) (Level, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	ls.mu.RLock()
	lvl, ok := ls.byName[key]
	ls.mu.RUnlock()
	if ok {
		return lvl, nil
	}
	if no, err := strconv.ParseInt(key, 10, 64); err == nil {
		return ls.ByNo(no), nil
	}
	return Level{}, fmt.Errorf("unknown level %q", s)
}

// ByNo returns the registered level with severity no, or an anonymous "LEVEL(n)" level
func (ls *LevelSet) ByNo(no int64) Level {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	for name, l := range ls.byName {
		if l.No == no && name == l.Name {
			return l
		}
	}
	return Level{Name: fmt.Sprintf("LEVEL(%d)", no), No: no}
}

// Levels returns all registered levels ordered by severity
func (ls *LevelSet) Levels() []Level {
	ls.mu.RLock()
	out := make([]Level, 0, len(ls.byName))
	for name, l := range ls.byName {
		if name == l.Name {
			out = append(out, l)
		}
	}
	ls.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].No < out[j].No })
	return out
}

var defaultLevels = NewLevelSet()

// ParseLevel resolves a default level by name ("info", "warn") or number ("30")
func ParseLevel(s string) (Level, error) {
	return defaultLevels.Lookup(s)
}
