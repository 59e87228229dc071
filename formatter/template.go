// FILE: lixenwraith/sinklog/formatter/template.go
package formatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// markupTag matches colour markup such as <red>, </red>, <bold>
var markupTag = regexp.MustCompile(`^</?[a-zA-Z_]+>`)

// segment is either literal text or a field placeholder
type segment struct {
	literal string
	field   string
	spec    fieldSpec
	isField bool
}

// fieldSpec is a parsed "[[fill]align][width][.precision][type]" spec
type fieldSpec struct {
	raw       string
	fill      rune
	align     byte // '<', '>', '^' or 0
	width     int
	precision int // -1 when absent
	time      *timeLayout
}

// compileTemplate splits a template into segments
func compileTemplate(tmpl string) ([]segment, error) {
	var segs []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch {
		case c == '{' && strings.HasPrefix(tmpl[i:], "{{"):
			lit.WriteByte('{')
			i += 2
		case c == '}' && strings.HasPrefix(tmpl[i:], "}}"):
			lit.WriteByte('}')
			i += 2
		case c == '<' && markupTag.MatchString(tmpl[i:]):
			// Colour markup is accepted and dropped
			i += len(markupTag.FindString(tmpl[i:]))
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			body := tmpl[i+1 : i+end]
			name, specStr, _ := strings.Cut(body, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("empty placeholder at offset %d", i)
			}
			spec, err := parseSpec(name, specStr)
			if err != nil {
				return nil, fmt.Errorf("placeholder {%s}: %w", body, err)
			}
			flush()
			segs = append(segs, segment{field: name, spec: spec, isField: true})
			i += end + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return segs, nil
}

// parseSpec parses the part after ':' in a placeholder; time fields take a timestamp layout instead
func parseSpec(field, s string) (fieldSpec, error) {
	spec := fieldSpec{raw: s, fill: ' ', precision: -1}
	if s == "" {
		return spec, nil
	}
	if field == "time" {
		tl := compileTimeLayout(s)
		spec.time = &tl
		return spec, nil
	}

	rest := s
	if r, size := utf8.DecodeRuneInString(rest); size > 0 && size < len(rest) && strings.IndexByte("<>^", rest[size]) >= 0 {
		spec.fill = r
		spec.align = rest[size]
		rest = rest[size+1:]
	} else if len(rest) > 0 && strings.IndexByte("<>^", rest[0]) >= 0 {
		spec.align = rest[0]
		rest = rest[1:]
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		spec.width, _ = strconv.Atoi(rest[:digits])
		rest = rest[digits:]
	}

	if strings.HasPrefix(rest, ".") {
		rest = rest[1:]
		digits = 0
		for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		if digits == 0 {
			return spec, fmt.Errorf("missing precision in %q", s)
		}
		spec.precision, _ = strconv.Atoi(rest[:digits])
		rest = rest[digits:]
	}

	switch rest {
	case "", "s", "d", "f":
	default:
		return spec, fmt.Errorf("unsupported format spec %q", s)
	}
	return spec, nil
}

// pad aligns buf[start:] to the field width
func (fs fieldSpec) pad(buf []byte, start int) []byte {
	n := utf8.RuneCount(buf[start:])
	if fs.width <= n {
		return buf
	}
	missing := fs.width - n
	var fill [utf8.UTFMax]byte
	fl := utf8.EncodeRune(fill[:], fs.fill)

	var left, right int
	switch fs.align {
	case '>':
		left = missing
	case '^':
		left = missing / 2
		right = missing - left
	default:
		right = missing
	}
	if left > 0 {
		value := append([]byte(nil), buf[start:]...)
		buf = buf[:start]
		for i := 0; i < left; i++ {
			buf = append(buf, fill[:fl]...)
		}
		buf = append(buf, value...)
	}
	for i := 0; i < right; i++ {
		buf = append(buf, fill[:fl]...)
	}
	return buf
}
