// FILE: lixenwraith/sinklog/sanitizer/sanitizer.go
// Package sanitizer provides a fluent and composable interface for sanitizing
// strings based on configurable rules using bitwise filter flags and transforms.
// A Sanitizer reuses an internal buffer and is not safe for concurrent use; each sink owns its own.
package sanitizer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Matches runes not classified as printable by strconv.IsPrint
	FilterControl                         // Matches control characters (unicode.IsControl)
	FilterWhitespace                      // Matches whitespace characters (unicode.IsSpace)
	FilterShellSpecial                    // Matches common shell metacharacters: '`', '$', ';', '|', '&', '>', '<', '(', ')', '#'
	FilterLineBreak                       // Matches '\n', '\r', U+2028 and U+2029
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Escapes the character with JSON-style backslashes (e.g., '\n', '\u0000')
)

// PolicyPreset defines pre-configured sanitization policies
type PolicyPreset string

const (
	PolicyRaw   PolicyPreset = "raw"   // Raw is a no-op (passthrough)
	PolicyJSON  PolicyPreset = "json"  // Policy for sanitizing strings to be embedded in JSON
	PolicyText  PolicyPreset = "text"  // Policy for text written to log files, keeps line breaks
	PolicyLine  PolicyPreset = "line"  // Like text but escapes line breaks so one record stays on one line
	PolicyShell PolicyPreset = "shell" // Policy for sanitizing arguments passed to shell commands
)

// rule represents a single sanitization rule
type rule struct {
	filter    uint64
	transform uint64
}

// policyRules contains pre-configured rules for each policy
var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:  {},
	PolicyText: {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyLine: {
		{filter: FilterLineBreak, transform: TransformJSONEscape},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
	PolicyJSON:  {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyShell: {{filter: FilterShellSpecial | FilterWhitespace, transform: TransformStrip}},
}

// ParsePolicy resolves a policy name; the empty string selects PolicyText
func ParsePolicy(name string) (PolicyPreset, error) {
	p := PolicyPreset(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return PolicyText, nil
	}
	if _, ok := policyRules[p]; !ok {
		return "", fmt.Errorf("unknown sanitize policy %q (use raw, text, line, json or shell)", name)
	}
	return p, nil
}

// filterCheckers maps individual filter flags to their check functions
var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) && r != '\n' && r != '\t' },
	FilterControl:      unicode.IsControl,
	FilterWhitespace:   unicode.IsSpace,
	FilterShellSpecial: func(r rune) bool {
		switch r {
		case '`', '$', ';', '|', '&', '>', '<', '(', ')', '#':
			return true
		}
		return false
	},
	FilterLineBreak: func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
	},
}

// Sanitizer provides chainable text sanitization
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a new Sanitizer instance
func New() *Sanitizer {
	return &Sanitizer{
		rules: []rule{},
		buf:   make([]byte, 0, 256),
	}
}

// Rule adds a custom rule to the sanitizer (appended, earliest rule applies first)
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy applies a pre-configured policy to the sanitizer (appended)
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Clone returns a sanitizer with the same rules and its own buffer
func (s *Sanitizer) Clone() *Sanitizer {
	c := New()
	c.rules = append(c.rules, s.rules...)
	return c
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	s.buf = s.buf[:0]

	for _, r := range data {
		matched := false
		// First matching rule wins
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

// matchesFilter checks if a rune matches any filter in the mask
func matchesFilter(r rune, filterMask uint64) bool {
	for flag, checker := range filterCheckers {
		if (filterMask&flag) != 0 && checker(r) {
			return true
		}
	}
	return false
}

// applyTransform applies the specified transform to the buffer
func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case (transformMask & TransformStrip) != 0:
		// strip

	case (transformMask & TransformHexEncode) != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case (transformMask & TransformJSONEscape) != 0:
		switch r {
		case '\n':
			*buf = append(*buf, '\\', 'n')
		case '\r':
			*buf = append(*buf, '\\', 'r')
		case '\t':
			*buf = append(*buf, '\\', 't')
		case '\b':
			*buf = append(*buf, '\\', 'b')
		case '\f':
			*buf = append(*buf, '\\', 'f')
		case '"':
			*buf = append(*buf, '\\', '"')
		case '\\':
			*buf = append(*buf, '\\', '\\')
		default:
			if r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029' {
				*buf = append(*buf, fmt.Sprintf("\\u%04x", r)...)
			} else {
				*buf = utf8.AppendRune(*buf, r)
			}
		}
	}
}

// Serialization modes understood by Serializer
const (
	ModeTemplate = "template"
	ModeJSON     = "json"
	ModeRaw      = "raw"
)

// Serializer implements mode-specific value output
type Serializer struct {
	mode      string
	sanitizer *Sanitizer
}

// NewSerializer creates a serializer for one of ModeTemplate, ModeJSON or ModeRaw
func NewSerializer(mode string, san *Sanitizer) *Serializer {
	if san == nil {
		san = New()
	}
	return &Serializer{
		mode:      mode,
		sanitizer: san,
	}
}

// WriteString writes a string with mode-specific handling
func (se *Serializer) WriteString(buf *[]byte, s string) {
	switch se.mode {
	case ModeJSON:
		*buf = append(*buf, '"')
		for i := 0; i < len(s); {
			c := s[i]
			if c >= ' ' && c != '"' && c != '\\' && c < 0x7f {
				start := i
				for i < len(s) && s[i] >= ' ' && s[i] != '"' && s[i] != '\\' && s[i] < 0x7f {
					i++
				}
				*buf = append(*buf, s[start:i]...)
				continue
			}
			if c >= utf8.RuneSelf {
				r, size := utf8.DecodeRuneInString(s[i:])
				if r == utf8.RuneError && size == 1 {
					*buf = append(*buf, `\ufffd`...)
				} else {
					*buf = append(*buf, s[i:i+size]...)
				}
				i += size
				continue
			}
			switch c {
			case '\\', '"':
				*buf = append(*buf, '\\', c)
			case '\n':
				*buf = append(*buf, '\\', 'n')
			case '\r':
				*buf = append(*buf, '\\', 'r')
			case '\t':
				*buf = append(*buf, '\\', 't')
			case '\b':
				*buf = append(*buf, '\\', 'b')
			case '\f':
				*buf = append(*buf, '\\', 'f')
			default:
				*buf = append(*buf, fmt.Sprintf("\\u%04x", c)...)
			}
			i++
		}
		*buf = append(*buf, '"')

	case ModeTemplate:
		sanitized := se.sanitizer.Sanitize(s)
		if se.NeedsQuotes(sanitized) {
			*buf = strconv.AppendQuote(*buf, sanitized)
		} else {
			*buf = append(*buf, sanitized...)
		}

	default:
		*buf = append(*buf, se.sanitizer.Sanitize(s)...)
	}
}

// WriteText writes s sanitized but never quoted, for message bodies
func (se *Serializer) WriteText(buf *[]byte, s string) {
	if se.mode == ModeJSON {
		se.WriteString(buf, s)
		return
	}
	*buf = append(*buf, se.sanitizer.Sanitize(s)...)
}

// WriteNumber writes a number value
func (se *Serializer) WriteNumber(buf *[]byte, n string) {
	*buf = append(*buf, n...)
}

// WriteBool writes a boolean value
func (se *Serializer) WriteBool(buf *[]byte, b bool) {
	*buf = strconv.AppendBool(*buf, b)
}

// WriteNil writes a nil value
func (se *Serializer) WriteNil(buf *[]byte) {
	switch se.mode {
	case ModeJSON:
		*buf = append(*buf, "null"...)
	default:
		*buf = append(*buf, "nil"...)
	}
}

// WriteComplex writes structs, maps and slices
func (se *Serializer) WriteComplex(buf *[]byte, v any) {
	switch se.mode {
	case ModeRaw:
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, v)
		*buf = append(*buf, bytes.TrimSpace(b.Bytes())...)

	default:
		se.WriteString(buf, fmt.Sprintf("%+v", v))
	}
}

// NeedsQuotes reports whether a template value must be quoted to stay unambiguous
func (se *Serializer) NeedsQuotes(s string) bool {
	switch se.mode {
	case ModeJSON:
		return true
	case ModeTemplate:
		if len(s) == 0 {
			return true
		}
		for _, r := range s {
			if unicode.IsSpace(r) || !unicode.IsPrint(r) {
				return true
			}
			switch r {
			case '"', '\'', '\\', '=', '{', '}', '[', ']', '|':
				return true
			}
		}
		return false
	default:
		return false
	}
}
