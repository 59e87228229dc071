// FILE: lixenwraith/sinklog/record/extras.go
package record

import "fmt"

// BadKey labels a trailing value with no key in a key-value list
const BadKey = "!BADKEY"

// Field is one key-value pair of structured context
type Field struct {
	Key   string
	Value any
}

// Extras is an ordered, copy-on-write set of fields.
// Later keys override earlier values in place, keeping the original position.
type Extras struct {
	fields []Field
}

// FromKeyvals builds Extras from alternating keys and values.
// Non-string keys are formatted with %v and a dangling value is stored under BadKey.
func FromKeyvals(kv ...any) Extras {
	var e Extras
	return e.With(kv...)
}

// With returns a copy of e extended with alternating keys and values
func (e Extras) With(kv ...any) Extras {
	if len(kv) == 0 {
		return e
	}
	add := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			add = append(add, Field{Key: BadKey, Value: kv[i]})
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		add = append(add, Field{Key: key, Value: kv[i+1]})
	}
	return e.WithFields(add...)
}

// WithFields returns a copy of e with fs merged in
func (e Extras) WithFields(fs ...Field) Extras {
	if len(fs) == 0 {
		return e
	}
	out := make([]Field, len(e.fields), len(e.fields)+len(fs))
	copy(out, e.fields)
	for _, f := range fs {
		replaced := false
		for i := range out {
			if out[i].Key == f.Key {
				out[i].Value = f.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return Extras{fields: out}
}

// Merge returns e with all fields of other applied on top
func (e Extras) Merge(other Extras) Extras {
	return e.WithFields(other.fields...)
}

// Get returns the value stored under key
func (e Extras) Get(key string) (any, bool) {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Len returns the number of fields
func (e Extras) Len() int { return len(e.fields) }

// Fields returns the fields in insertion order. The slice must not be modified.
func (e Extras) Fields() []Field { return e.fields }

// Map returns the fields as an unordered map
func (e Extras) Map() map[string]any {
	m := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		m[f.Key] = f.Value
	}
	return m
}
