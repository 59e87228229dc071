// FILE: lixenwraith/sinklog/rotation/schedule.go
package rotation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/sinklog/internal/units"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var weekdays = map[string]int{
	"sunday": 0, "sun": 0,
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
}

// ParseSchedule converts a time expression into a cron schedule.
// Accepted forms: "daily", "hourly", "weekly" (Monday 00:00), "monthly" (1st 00:00),
// "HH:MM", "daily at HH:MM", weekday names with optional "at HH:MM",
// "cron: <5 field spec>" and fixed intervals of at least one second ("1 hour", "90s").
func ParseSchedule(expr string) (cron.Schedule, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if rest, ok := strings.CutPrefix(s, "cron:"); ok {
		return cronParser.Parse(strings.TrimSpace(rest))
	}

	day, clock, hasClock := strings.Cut(s, " at ")
	if !hasClock {
		day = s
		clock = "00:00"
		if h, m, ok := parseClock(s); ok {
			return cronParser.Parse(fmt.Sprintf("%d %d * * *", m, h))
		}
		if rest, ok := strings.CutPrefix(s, "at "); ok {
			day, clock = "daily", rest
		}
	}
	h, m, ok := parseClock(strings.TrimSpace(clock))
	if !ok {
		return nil, fmt.Errorf("invalid time of day %q", clock)
	}

	switch day = strings.TrimSpace(day); day {
	case "daily", "midnight", "day":
		return cronParser.Parse(fmt.Sprintf("%d %d * * *", m, h))
	case "hourly":
		return cronParser.Parse("@hourly")
	case "weekly", "week":
		return cronParser.Parse(fmt.Sprintf("%d %d * * 1", m, h))
	case "monthly", "month":
		return cronParser.Parse(fmt.Sprintf("%d %d 1 * *", m, h))
	}
	if dow, ok := weekdays[day]; ok {
		return cronParser.Parse(fmt.Sprintf("%d %d * * %d", m, h, dow))
	}
	if hasClock {
		return nil, fmt.Errorf("unknown day %q", day)
	}

	d, err := units.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("not a size or time expression: %w", err)
	}
	if d < time.Second {
		return nil, fmt.Errorf("interval %s is shorter than one second", d)
	}
	return cron.Every(d), nil
}

// parseClock parses "HH:MM" (24h)
func parseClock(s string) (hour, minute int, ok bool) {
	hs, ms, found := strings.Cut(s, ":")
	if !found || len(ms) != 2 || hs == "" || len(hs) > 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(hs)
	m, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// TimePolicy rotates once the wall clock reaches the next schedule boundary
type TimePolicy struct {
	mu       sync.Mutex
	schedule cron.Schedule
	spec     string
	loc      *time.Location
	next     time.Time
}

// Time returns a policy driven by schedule. Boundaries are evaluated in loc.
// The policy is armed by the first Reset call.
func Time(schedule cron.Schedule, spec string, loc *time.Location) *TimePolicy {
	if loc == nil {
		loc = time.UTC
	}
	return &TimePolicy{schedule: schedule, spec: spec, loc: loc}
}

// ShouldRotate fires when now is at or past the armed boundary and a file is open
func (p *TimePolicy) ShouldRotate(st State, _ int64, now time.Time) Decision {
	if !st.HasFile {
		return noRotate
	}
	p.mu.Lock()
	next := p.next
	p.mu.Unlock()
	if next.IsZero() || now.Before(next) {
		return noRotate
	}
	return Decision{Rotate: true, Reason: ReasonInterval}
}

// Reset arms the next boundary strictly after now, skipping any boundaries missed while idle
func (p *TimePolicy) Reset(now time.Time) {
	p.mu.Lock()
	p.next = p.schedule.Next(now.In(p.loc))
	p.mu.Unlock()
}

// Next returns the armed boundary, zero before the first Reset
func (p *TimePolicy) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

func (p *TimePolicy) String() string {
	return "time " + p.spec
}
