// FILE: lixenwraith/sinklog/formatter/timefmt.go
package formatter

import (
	"strconv"
	"strings"
	"time"
)

// timeToken renders one piece of a timestamp
type timeToken struct {
	literal string
	render  func(buf []byte, t time.Time) []byte
}

// tokenTable is ordered longest match first
var tokenTable = []struct {
	name   string
	render func(buf []byte, t time.Time) []byte
}{
	{"YYYY", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Year(), 4) }},
	{"YY", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Year()%100, 2) }},
	{"MMMM", func(b []byte, t time.Time) []byte { return append(b, t.Month().String()...) }},
	{"MMM", func(b []byte, t time.Time) []byte { return append(b, t.Month().String()[:3]...) }},
	{"MM", func(b []byte, t time.Time) []byte { return appendPadded(b, int(t.Month()), 2) }},
	{"M", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(t.Month()), 10) }},
	{"DD", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Day(), 2) }},
	{"D", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(t.Day()), 10) }},
	{"HH", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Hour(), 2) }},
	{"H", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(t.Hour()), 10) }},
	{"hh", func(b []byte, t time.Time) []byte { return appendPadded(b, hour12(t), 2) }},
	{"h", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(hour12(t)), 10) }},
	{"mm", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Minute(), 2) }},
	{"m", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(t.Minute()), 10) }},
	{"SSSSSS", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Nanosecond()/1e3, 6) }},
	{"SSS", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Nanosecond()/1e6, 3) }},
	{"ss", func(b []byte, t time.Time) []byte { return appendPadded(b, t.Second(), 2) }},
	{"s", func(b []byte, t time.Time) []byte { return strconv.AppendInt(b, int64(t.Second()), 10) }},
	{"A", func(b []byte, t time.Time) []byte { return t.AppendFormat(b, "PM") }},
	{"a", func(b []byte, t time.Time) []byte { return t.AppendFormat(b, "pm") }},
	{"ZZ", func(b []byte, t time.Time) []byte { return t.AppendFormat(b, "-0700") }},
	{"Z", func(b []byte, t time.Time) []byte { return t.AppendFormat(b, "-07:00") }},
}

// markerTokens identify a token layout as opposed to a Go reference layout
var markerTokens = []string{"YYYY", "MM", "DD", "HH", "mm", "ss", "SSS"}

// timeLayout is a compiled timestamp format
type timeLayout struct {
	goLayout string
	tokens   []timeToken
}

// compileTimeLayout accepts "YYYY-MM-DD HH:mm:ss.SSS" style tokens, or a Go layout when no token is present
func compileTimeLayout(spec string) timeLayout {
	isTokens := false
	for _, m := range markerTokens {
		if strings.Contains(spec, m) {
			isTokens = true
			break
		}
	}
	if !isTokens {
		return timeLayout{goLayout: spec}
	}

	var tl timeLayout
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tl.tokens = append(tl.tokens, timeToken{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(spec); {
		matched := false
		for _, tok := range tokenTable {
			if strings.HasPrefix(spec[i:], tok.name) {
				flush()
				tl.tokens = append(tl.tokens, timeToken{render: tok.render})
				i += len(tok.name)
				matched = true
				break
			}
		}
		if !matched {
			lit.WriteByte(spec[i])
			i++
		}
	}
	flush()
	return tl
}

func (tl timeLayout) append(buf []byte, t time.Time) []byte {
	if tl.tokens == nil {
		return t.AppendFormat(buf, tl.goLayout)
	}
	for _, tok := range tl.tokens {
		if tok.render != nil {
			buf = tok.render(buf, t)
		} else {
			buf = append(buf, tok.literal...)
		}
	}
	return buf
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

func appendPadded(buf []byte, v, width int) []byte {
	var tmp [20]byte
	s := strconv.AppendInt(tmp[:0], int64(v), 10)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}
