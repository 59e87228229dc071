// FILE: lixenwraith/sinklog/formatter/formatter.go
// Package formatter renders records as template lines, JSON objects or raw messages.
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/sinklog/logerr"
	"github.com/lixenwraith/sinklog/record"
	"github.com/lixenwraith/sinklog/sanitizer"
)

const (
	// DefaultTemplate renders "2024-01-01 12:00:00.000 | INFO     | pkg:func:42 - message"
	DefaultTemplate = "{time} | {level: <8} | {name}:{function}:{line} - {message}"
	// DefaultTimeFormat is the layout of a bare {time} placeholder
	DefaultTimeFormat = "YYYY-MM-DD HH:mm:ss.SSS"
)

// Serialization modes
const (
	ModeTemplate = sanitizer.ModeTemplate
	ModeJSON     = sanitizer.ModeJSON
	ModeRaw      = sanitizer.ModeRaw
)

// Formatter renders records into a reused buffer. It is not safe for concurrent use;
// a sink calls it under its own lock.
type Formatter struct {
	sanitizer    *sanitizer.Sanitizer
	serializer   *sanitizer.Serializer
	mode         string
	template     string
	segments     []segment
	timeLayout   timeLayout
	jsonTime     string
	hasException bool
	err          error
	buf          []byte
}

// New creates a template formatter using DefaultTemplate and the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New().Policy(sanitizer.PolicyText)
	}
	f := &Formatter{
		sanitizer:  san,
		mode:       ModeTemplate,
		timeLayout: compileTimeLayout(DefaultTimeFormat),
		jsonTime:   time.RFC3339Nano,
		buf:        make([]byte, 0, 1024),
	}
	f.serializer = sanitizer.NewSerializer(f.mode, san)
	return f.Template(DefaultTemplate)
}

// Type sets the serialization mode ("template", "json" or "raw")
func (f *Formatter) Type(mode string) *Formatter {
	switch mode {
	case ModeTemplate, ModeJSON, ModeRaw:
		f.mode = mode
		f.serializer = sanitizer.NewSerializer(mode, f.sanitizer)
	default:
		f.setErr(&logerr.ConfigError{Field: "serialize", Value: mode,
			Err: fmt.Errorf("use template, json or raw")})
	}
	return f
}

// Template sets the line template used in template mode
func (f *Formatter) Template(tmpl string) *Formatter {
	segs, err := compileTemplate(tmpl)
	if err != nil {
		f.setErr(&logerr.ConfigError{Field: "format", Value: tmpl, Err: err})
		return f
	}
	f.template = tmpl
	f.segments = segs
	f.hasException = false
	for _, s := range segs {
		if s.isField && s.field == "exception" {
			f.hasException = true
		}
	}
	return f
}

// TimestampFormat sets the layout of a bare {time} placeholder and of the JSON "time" key.
// Token layouts ("YYYY-MM-DD") and Go layouts ("2006-01-02") are both accepted.
func (f *Formatter) TimestampFormat(layout string) *Formatter {
	if layout != "" {
		f.timeLayout = compileTimeLayout(layout)
		f.jsonTime = layout
	}
	return f
}

// Err returns the first configuration error recorded by the fluent setters
func (f *Formatter) Err() error {
	return f.err
}

// Mode returns the serialization mode
func (f *Formatter) Mode() string {
	return f.mode
}

func (f *Formatter) setErr(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Format renders r. The returned slice is valid until the next call.
// A panic raised while rendering a value is returned as a FormatError.
func (f *Formatter) Format(r *record.Record) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = &logerr.FormatError{Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	f.buf = f.buf[:0]
	switch f.mode {
	case ModeJSON:
		f.formatJSON(r)
	case ModeRaw:
		f.formatRaw(r)
	default:
		f.formatTemplate(r)
	}
	return f.buf, nil
}

// Fallback renders the minimal line used when Format fails
func Fallback(r *record.Record, err error) []byte {
	return []byte(fmt.Sprintf("[%s] %s [FORMAT ERROR: %v]\n", r.Level.Name, r.Message, err))
}

// formatTemplate renders the compiled segments then the exception block
func (f *Formatter) formatTemplate(r *record.Record) {
	for _, s := range f.segments {
		if !s.isField {
			f.buf = append(f.buf, s.literal...)
			continue
		}
		start := len(f.buf)
		f.appendField(s, r)
		f.buf = s.spec.pad(f.buf, start)
	}
	if r.Err != nil && !f.hasException {
		f.buf = append(f.buf, '\n')
		f.serializer.WriteText(&f.buf, r.Err.Format())
	}
	f.buf = append(f.buf, '\n')
}

// appendField resolves one placeholder
func (f *Formatter) appendField(s segment, r *record.Record) {
	name := s.field
	switch name {
	case "time":
		tl := f.timeLayout
		if s.spec.time != nil {
			tl = *s.spec.time
		}
		f.buf = tl.append(f.buf, r.Time)
	case "level", "level.name":
		f.appendText(r.Level.Name, s.spec)
	case "level.no":
		f.appendInt(r.Level.No)
	case "message":
		f.appendText(r.Message, s.spec)
	case "name":
		f.appendText(r.Name, s.spec)
	case "module":
		f.appendText(r.Source.Module, s.spec)
	case "function":
		f.appendText(r.Source.Function, s.spec)
	case "file", "file.name":
		f.appendText(r.Source.File, s.spec)
	case "file.path":
		f.appendText(r.Source.Path, s.spec)
	case "line":
		f.appendInt(int64(r.Source.Line))
	case "process", "process.id":
		f.appendInt(int64(r.Process.ID))
	case "process.name":
		f.appendText(r.Process.Name, s.spec)
	case "thread", "thread.id":
		f.buf = strconv.AppendUint(f.buf, r.Thread.ID, 10)
	case "thread.name":
		f.appendText(r.Thread.Name, s.spec)
	case "elapsed":
		if s.spec.precision >= 0 {
			f.buf = strconv.AppendFloat(f.buf, r.Elapsed.Seconds(), 'f', s.spec.precision, 64)
		} else {
			f.buf = append(f.buf, r.Elapsed.String()...)
		}
	case "trace":
		f.appendText(r.Trace, s.spec)
	case "exception":
		if r.Err != nil {
			f.serializer.WriteText(&f.buf, r.Err.Format())
		}
	case "extra":
		for i, fld := range r.Extra.Fields() {
			if i > 0 {
				f.buf = append(f.buf, ' ')
			}
			f.buf = append(f.buf, fld.Key...)
			f.buf = append(f.buf, '=')
			f.convertValue(fld.Value, s.spec)
		}
	default:
		if key, ok := strings.CutPrefix(name, "extra."); ok {
			if v, found := r.Extra.Get(key); found {
				f.convertValue(v, s.spec)
			} else {
				f.buf = append(f.buf, "<missing>"...)
			}
			return
		}
		f.buf = append(f.buf, "<missing:"...)
		f.buf = append(f.buf, name...)
		f.buf = append(f.buf, '>')
	}
}

// appendText writes sanitized text, truncated to the field precision
func (f *Formatter) appendText(s string, spec fieldSpec) {
	if spec.precision >= 0 && utf8.RuneCountInString(s) > spec.precision {
		s = string([]rune(s)[:spec.precision])
	}
	f.serializer.WriteText(&f.buf, s)
}

func (f *Formatter) appendInt(n int64) {
	f.buf = strconv.AppendInt(f.buf, n, 10)
}

// convertValue provides unified type conversion for extra values
func (f *Formatter) convertValue(v any, spec fieldSpec) {
	se := f.serializer
	switch val := v.(type) {
	case string:
		se.WriteString(&f.buf, val)
	case []byte:
		se.WriteString(&f.buf, string(val))
	case int:
		se.WriteNumber(&f.buf, strconv.Itoa(val))
	case int32:
		se.WriteNumber(&f.buf, strconv.FormatInt(int64(val), 10))
	case int64:
		se.WriteNumber(&f.buf, strconv.FormatInt(val, 10))
	case uint:
		se.WriteNumber(&f.buf, strconv.FormatUint(uint64(val), 10))
	case uint32:
		se.WriteNumber(&f.buf, strconv.FormatUint(uint64(val), 10))
	case uint64:
		se.WriteNumber(&f.buf, strconv.FormatUint(val, 10))
	case float32:
		se.WriteNumber(&f.buf, strconv.FormatFloat(float64(val), 'f', spec.precision, 32))
	case float64:
		se.WriteNumber(&f.buf, strconv.FormatFloat(val, 'f', spec.precision, 64))
	case bool:
		se.WriteBool(&f.buf, val)
	case nil:
		se.WriteNil(&f.buf)
	case time.Time:
		if f.mode == ModeJSON {
			se.WriteString(&f.buf, val.Format(f.jsonTime))
		} else {
			se.WriteString(&f.buf, string(f.timeLayout.append(nil, val)))
		}
	case time.Duration:
		se.WriteString(&f.buf, val.String())
	case error:
		se.WriteString(&f.buf, val.Error())
	case fmt.Stringer:
		se.WriteString(&f.buf, val.String())
	default:
		if f.mode == ModeJSON {
			if b, err := json.Marshal(val); err == nil {
				f.buf = append(f.buf, b...)
				return
			}
		}
		se.WriteComplex(&f.buf, val)
	}
}

// formatJSON writes one object per line with a fixed key order
func (f *Formatter) formatJSON(r *record.Record) {
	se := f.serializer
	noSpec := fieldSpec{precision: -1}

	f.buf = append(f.buf, `{"time":`...)
	se.WriteString(&f.buf, r.Time.Format(f.jsonTime))
	f.buf = append(f.buf, `,"level":`...)
	se.WriteString(&f.buf, r.Level.Name)
	f.buf = append(f.buf, `,"level_no":`...)
	f.appendInt(r.Level.No)
	f.buf = append(f.buf, `,"message":`...)
	se.WriteString(&f.buf, r.Message)
	f.buf = append(f.buf, `,"name":`...)
	se.WriteString(&f.buf, r.Name)
	f.buf = append(f.buf, `,"module":`...)
	se.WriteString(&f.buf, r.Source.Module)
	f.buf = append(f.buf, `,"function":`...)
	se.WriteString(&f.buf, r.Source.Function)
	f.buf = append(f.buf, `,"file":`...)
	se.WriteString(&f.buf, r.Source.File)
	f.buf = append(f.buf, `,"line":`...)
	f.appendInt(int64(r.Source.Line))
	f.buf = append(f.buf, `,"process":{"id":`...)
	f.appendInt(int64(r.Process.ID))
	f.buf = append(f.buf, `,"name":`...)
	se.WriteString(&f.buf, r.Process.Name)
	f.buf = append(f.buf, `},"thread":{"id":`...)
	f.buf = strconv.AppendUint(f.buf, r.Thread.ID, 10)
	f.buf = append(f.buf, `,"name":`...)
	se.WriteString(&f.buf, r.Thread.Name)
	f.buf = append(f.buf, `},"elapsed":`...)
	f.buf = strconv.AppendFloat(f.buf, r.Elapsed.Seconds(), 'f', -1, 64)

	if r.Extra.Len() > 0 {
		f.buf = append(f.buf, `,"extra":{`...)
		for i, fld := range r.Extra.Fields() {
			if i > 0 {
				f.buf = append(f.buf, ',')
			}
			se.WriteString(&f.buf, fld.Key)
			f.buf = append(f.buf, ':')
			f.convertValue(fld.Value, noSpec)
		}
		f.buf = append(f.buf, '}')
	}

	if r.Trace != "" {
		f.buf = append(f.buf, `,"trace":`...)
		se.WriteString(&f.buf, r.Trace)
	}

	if r.Err != nil {
		f.buf = append(f.buf, `,"exception":{"type":`...)
		se.WriteString(&f.buf, r.Err.Type)
		f.buf = append(f.buf, `,"message":`...)
		se.WriteString(&f.buf, r.Err.Message)
		f.buf = append(f.buf, `,"frames":[`...)
		for i, fr := range r.Err.Frames {
			if i > 0 {
				f.buf = append(f.buf, ',')
			}
			f.buf = append(f.buf, `{"function":`...)
			se.WriteString(&f.buf, fr.Function)
			f.buf = append(f.buf, `,"file":`...)
			se.WriteString(&f.buf, fr.File)
			f.buf = append(f.buf, `,"line":`...)
			f.appendInt(int64(fr.Line))
			f.buf = append(f.buf, '}')
		}
		f.buf = append(f.buf, "]}"...)
	}

	f.buf = append(f.buf, '}', '\n')
}

// formatRaw writes the message and extras with no metadata
func (f *Formatter) formatRaw(r *record.Record) {
	f.serializer.WriteText(&f.buf, r.Message)
	for _, fld := range r.Extra.Fields() {
		f.buf = append(f.buf, ' ')
		f.buf = append(f.buf, fld.Key...)
		f.buf = append(f.buf, '=')
		f.convertValue(fld.Value, fieldSpec{precision: -1})
	}
	if r.Err != nil {
		f.buf = append(f.buf, '\n')
		f.serializer.WriteText(&f.buf, r.Err.Format())
	}
	f.buf = append(f.buf, '\n')
}
