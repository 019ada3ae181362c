// Package tree defines the untyped document model shared by every docsift
// pass: insertion-ordered mappings, sequences and scalars, as produced by
// decoding YAML or JSON.
//
// A node is a plain Go value:
//
//   - [Map] for mappings (keys unique, insertion order preserved)
//   - []any for sequences
//   - string, bool, nil or any integer / floating point type for scalars
//
// Passes treat nodes as immutable and always build fresh containers.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Entry is a single key/value pair of a [Map].
type Entry struct {
	Key   string
	Value any
}

// Map is an insertion-ordered mapping from string keys to nodes.
// Lookups are linear; document mappings are small.
type Map []Entry

// NewMap returns an empty, non-nil Map with room for n entries.
func NewMap(n int) Map {
	return make(Map, 0, n)
}

// M builds a Map from alternating key/value arguments. It panics on an odd
// argument count or a non-string key and is meant for literals in tests and
// examples.
func M(kv ...any) Map {
	if len(kv)%2 != 0 {
		panic("tree.M: odd number of arguments")
	}

	m := NewMap(len(kv) / 2)

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree.M: key %v is not a string", kv[i]))
		}

		m = m.Set(k, kv[i+1])
	}

	return m
}

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}

	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m)
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}

	return keys
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one. Like append, the result must be used.
func (m Map) Set(key string, value any) Map {
	for i, e := range m {
		if e.Key == key {
			m[i].Value = value
			return m
		}
	}

	return append(m, Entry{Key: key, Value: value})
}

// With returns a shallow copy of m with key set to value. m is untouched.
func (m Map) With(key string, value any) Map {
	out := make(Map, len(m), len(m)+1)
	copy(out, m)

	return out.Set(key, value)
}

// Without returns a shallow copy of m without key.
func (m Map) Without(key string) Map {
	out := NewMap(len(m))

	for _, e := range m {
		if e.Key != key {
			out = append(out, e)
		}
	}

	return out
}

// MarshalJSON encodes the map as a JSON object, keeping insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(JSONValue(e.Value))
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", e.Key, err)
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// JSONValue prepares v for encoding/json: floats JSON cannot represent are
// replaced by their YAML spelling. Maps encode themselves via MarshalJSON.
func JSONValue(v any) any {
	switch val := v.(type) {
	case float64:
		switch {
		case math.IsInf(val, 1):
			return ".inf"
		case math.IsInf(val, -1):
			return "-.inf"
		case math.IsNaN(val):
			return ".nan"
		}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = JSONValue(item)
		}

		return out
	}

	return v
}

// Number converts a numeric scalar to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// IsScalar reports whether v is neither a Map nor a sequence.
func IsScalar(v any) bool {
	switch v.(type) {
	case Map, []any:
		return false
	default:
		return true
	}
}
