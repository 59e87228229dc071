// FILE: lixenwraith/sinklog/rotation/rotation.go
// Package rotation decides when a file sink must start a new file.
// Policies only decide; the sink performs the rotation and then calls Reset.
package rotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lixenwraith/sinklog/internal/units"
	"github.com/lixenwraith/sinklog/logerr"
)

// Reason tags a positive decision
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonSize     Reason = "size-exceeded"
	ReasonInterval Reason = "interval-elapsed"
	ReasonManual   Reason = "manual"
)

// Decision is the outcome of one ShouldRotate call
type Decision struct {
	Rotate bool
	Reason Reason
}

var noRotate = Decision{}

// State is the part of the sink state a policy may inspect
type State struct {
	HasFile      bool      // an active file is open
	Size         int64     // bytes in the active file
	Opened       time.Time // when the active file was started
	LastRotation time.Time // zero before the first rotation
}

// Policy decides whether the active file must be rotated before writing incoming bytes.
// ShouldRotate must not change the policy; Reset is called after a rotation or a skipped rotation.
type Policy interface {
	ShouldRotate(st State, incoming int64, now time.Time) Decision
	Reset(now time.Time)
	String() string
}

// SizePolicy rotates when the active file would grow past a threshold
type SizePolicy struct {
	threshold int64
}

// Size returns a policy with a byte threshold
func Size(threshold int64) (*SizePolicy, error) {
	if threshold <= 0 {
		return nil, &logerr.ConfigError{Field: "rotation", Value: fmt.Sprint(threshold),
			Err: fmt.Errorf("size threshold must be positive")}
	}
	return &SizePolicy{threshold: threshold}, nil
}

// Threshold returns the size limit in bytes
func (p *SizePolicy) Threshold() int64 { return p.threshold }

// ShouldRotate fires when a non-empty file plus the incoming record exceeds the threshold.
// An empty file never rotates, so a single oversized record is written whole.
func (p *SizePolicy) ShouldRotate(st State, incoming int64, _ time.Time) Decision {
	if !st.HasFile || st.Size == 0 {
		return noRotate
	}
	if st.Size+incoming > p.threshold {
		return Decision{Rotate: true, Reason: ReasonSize}
	}
	return noRotate
}

func (p *SizePolicy) Reset(time.Time) {}

func (p *SizePolicy) String() string {
	return "size " + humanize.Bytes(uint64(p.threshold))
}

// AnyPolicy rotates when any member policy does
type AnyPolicy struct {
	policies []Policy
}

// Any combines policies; the first positive decision wins
func Any(policies ...Policy) *AnyPolicy {
	return &AnyPolicy{policies: policies}
}

func (p *AnyPolicy) ShouldRotate(st State, incoming int64, now time.Time) Decision {
	for _, sub := range p.policies {
		if d := sub.ShouldRotate(st, incoming, now); d.Rotate {
			return d
		}
	}
	return noRotate
}

func (p *AnyPolicy) Reset(now time.Time) {
	for _, sub := range p.policies {
		sub.Reset(now)
	}
}

func (p *AnyPolicy) String() string {
	parts := make([]string, len(p.policies))
	for i, sub := range p.policies {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " or ")
}

// Parse builds a policy from a comma separated list of size and time terms,
// e.g. "100 MB", "daily at 04:00", "1 hour" or "500 MB, weekly".
// Time boundaries are computed in loc; nil means UTC.
func Parse(spec string, loc *time.Location) (Policy, error) {
	if loc == nil {
		loc = time.UTC
	}
	var policies []Policy
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		p, err := parseTerm(term, loc)
		if err != nil {
			return nil, &logerr.ConfigError{Field: "rotation", Value: spec, Err: err}
		}
		policies = append(policies, p)
	}
	switch len(policies) {
	case 0:
		return nil, &logerr.ConfigError{Field: "rotation", Value: spec, Err: fmt.Errorf("empty rotation spec")}
	case 1:
		return policies[0], nil
	default:
		return Any(policies...), nil
	}
}

func parseTerm(term string, loc *time.Location) (Policy, error) {
	if units.IsSize(term) {
		n, err := units.ParseSize(term)
		if err != nil {
			return nil, err
		}
		return Size(n)
	}
	sched, err := ParseSchedule(term)
	if err != nil {
		return nil, err
	}
	return Time(sched, term, loc), nil
}
