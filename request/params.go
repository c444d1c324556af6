package request

import (
	"encoding/json"
	"iter"
	"maps"
	"math"
	"slices"
)

// Object is an opaque nested structure: a listing policy, a structured query
// or a structured document. Values may be strings, numbers, booleans, nested
// Objects (or map[string]any) and slices of those. The request layer never
// inspects an Object; the writer renders it as nested elements with keys in
// sorted order.
type Object map[string]any

// Params is an insertion-ordered bag of named request parameters.
//
// Values stored by the setters on Request are normalized to one of:
// int64, float64, string, []string or Object.
//
// The zero value is ready to use.
type Params struct {
	names  []string
	values map[string]any
}

// Set stores value under name. Re-setting a name keeps its original position.
// Set does not normalize; prefer the typed setters on Request.
func (p *Params) Set(name string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// Delete removes name, keeping the order of the remaining parameters.
func (p *Params) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	p.names = slices.DeleteFunc(p.names, func(n string) bool { return n == name })
}

// Get returns the value stored under name.
func (p *Params) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *Params) Len() int {
	return len(p.names)
}

// Names returns the parameter names in insertion order.
func (p *Params) Names() []string {
	return slices.Clone(p.names)
}

// All iterates over the parameters in insertion order.
func (p *Params) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range p.names {
			if !yield(name, p.values[name]) {
				return
			}
		}
	}
}

// Map returns a copy of the parameters as a plain map.
func (p *Params) Map() map[string]any {
	m := make(map[string]any, len(p.values))
	maps.Copy(m, p.values)
	return m
}

// normalizeNumber converts any Go numeric type (or json.Number) to int64 or
// float64. Non-numeric values report false.
func normalizeNumber(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToNumber(uint64(n)), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToNumber(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return nil, false
}

func uintToNumber(n uint64) any {
	if n > math.MaxInt64 {
		return float64(n)
	}
	return int64(n)
}

// normalizeScalar accepts the value kinds a parameter may hold.
func normalizeScalar(v any) (any, bool) {
	if n, ok := normalizeNumber(v); ok {
		return n, true
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []string:
		return slices.Clone(s), true
	}
	if o, ok := toObject(v); ok {
		return maps.Clone(o), true
	}
	if ss, ok := toStrings(v); ok {
		return ss, true
	}
	return nil, false
}

// toObject accepts Object and map[string]any. A nil map reports false.
func toObject(v any) (Object, bool) {
	switch o := v.(type) {
	case Object:
		return o, o != nil
	case map[string]any:
		return Object(o), o != nil
	}
	return nil, false
}

// toStrings accepts a string, a []string or a []any holding only strings.
func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return slices.Clone(s), true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
