package entity

import "strings"

// Fields maps a declared field name to its extracted value. Every declared
// name is present; a nil value means the field was not found.
type Fields map[string]*string

// NewFields returns a record with every name present and unset.
func NewFields(names ...string) Fields {
	f := make(Fields, len(names))
	for _, n := range names {
		f[n] = nil
	}
	return f
}

// Set stores v under name; an empty (after trimming) value is stored as nil.
func (f Fields) Set(name, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		f[name] = nil
		return
	}
	f[name] = &v
}

// Value returns the value under name, or "" when unset.
func (f Fields) Value(name string) string {
	if p := f[name]; p != nil {
		return *p
	}
	return ""
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// AsMap converts the record into plain JSON-friendly values.
func (f Fields) AsMap() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		if v == nil {
			out[k] = nil
		} else {
			out[k] = *v
		}
	}
	return out
}

// Confidence maps a field name to a score in [0, 1]. A missing name means the
// service returned no score for it.
type Confidence map[string]float64

func (c Confidence) Clone() Confidence {
	if c == nil {
		return nil
	}
	out := make(Confidence, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
