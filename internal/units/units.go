// FILE: lixenwraith/sinklog/internal/units/units.go
// Package units parses the human size and duration expressions used by rotation and retention specs.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// durationUnits maps accepted unit words to their length
var durationUnits = map[string]time.Duration{
	"ms": time.Millisecond, "millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": Day, "day": Day, "days": Day,
	"w": Week, "week": Week, "weeks": Week,
	"mo": Month, "month": Month, "months": Month,
	"y": Year, "year": Year, "years": Year,
}

// ParseSize converts "100 MB", "1.5GiB" or "4096" into bytes.
// Decimal units are powers of 1000, binary units (KiB, MiB) powers of 1024.
func ParseSize(expr string) (int64, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows", expr)
	}
	return int64(n), nil
}

// IsSize reports whether expr is a plain byte count or a number with a byte unit ("KB", "MiB", "b").
// Bare multiplier letters such as "30m" are left to the duration parser.
func IsSize(expr string) bool {
	num, unit := split(expr)
	if num == "" {
		return false
	}
	unit = strings.ToLower(unit)
	if unit != "" && !strings.HasSuffix(unit, "b") {
		return false
	}
	_, err := ParseSize(expr)
	return err == nil
}

// IsCount reports whether expr is a bare non-negative integer
func IsCount(expr string) bool {
	_, err := strconv.ParseUint(strings.TrimSpace(expr), 10, 63)
	return err == nil
}

// ParseDuration accepts Go durations ("90s", "1h30m") and word forms ("7 days", "1 week", "1.5 hours", "2w").
func ParseDuration(expr string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	num, unit := split(s)
	if num == "" {
		return 0, fmt.Errorf("duration %q has no magnitude", expr)
	}
	mult, ok := durationUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit %q", unit)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", expr, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("duration %q is negative", expr)
	}
	d := n * float64(mult)
	if d > math.MaxInt64 {
		return 0, fmt.Errorf("duration %q overflows", expr)
	}
	return time.Duration(d), nil
}

// split separates the leading number from the trailing unit word
func split(expr string) (num, unit string) {
	s := strings.TrimSpace(expr)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
