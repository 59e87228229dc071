// FILE: lixenwraith/sinklog/handler.go
package sinklog

import (
	"strings"

	"github.com/lixenwraith/sinklog/record"
)

// LevelRange accepts records with min.No <= level <= max.No
func LevelRange(min, max record.Level) Filter {
	return func(r *record.Record) bool {
		return r.Level.No >= min.No && r.Level.No <= max.No
	}
}

// ModuleFilter accepts records whose logger name or package is one of modules, or lies below one.
// With exclude set the match is inverted.
func ModuleFilter(modules []string, exclude bool) Filter {
	set := make([]string, 0, len(modules))
	for _, m := range modules {
		if m = strings.TrimSpace(m); m != "" {
			set = append(set, m)
		}
	}
	return func(r *record.Record) bool {
		matched := false
		for _, m := range set {
			if underModule(r.Name, m) || underModule(r.Source.Package, m) || r.Source.Module == m {
				matched = true
				break
			}
		}
		return matched != exclude
	}
}

// underModule reports whether name equals parent or is nested under it by "/" or "."
func underModule(name, parent string) bool {
	if name == parent {
		return true
	}
	if !strings.HasPrefix(name, parent) {
		return false
	}
	next := name[len(parent)]
	return next == '/' || next == '.'
}

// AllOf combines filters so a record must pass each of them
func AllOf(filters ...Filter) Filter {
	return func(r *record.Record) bool {
		for _, f := range filters {
			if f != nil && !f(r) {
				return false
			}
		}
		return true
	}
}
