package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a JSON object that preserves key insertion order.
// Variable-definition files rely on declaration order to drive both
// prompt order and the resolution order of interdependent defaults,
// so a plain map is not enough.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap creates an empty OrderedMap
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{
		values: make(map[string]interface{}),
	}
}

// Get returns the value stored under key
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value, appending the key if it is new
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes a key and its value
func (m *OrderedMap) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. Safe on a nil receiver.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys. Safe on a nil receiver.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// ToMap converts the OrderedMap (recursively) into plain maps. The
// result is what gets handed to the template engine, which does not
// care about ordering.
func (m *OrderedMap) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(m.keys))
	for _, k := range m.keys {
		out[k] = toPlain(m.values[k])
	}
	return out
}

func toPlain(v interface{}) interface{} {
	switch val := v.(type) {
	case *OrderedMap:
		return val.ToMap()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

// UnmarshalJSON decodes a JSON object preserving key order. Nested
// objects become *OrderedMap, arrays stay []interface{}.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]interface{})
	return m.decodeObject(dec)
}

func (m *OrderedMap) decodeObject(dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return err
		}
		m.Set(key, value)
	}
	// consume closing '}'
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			nested := NewOrderedMap()
			if err := nested.decodeObject(dec); err != nil {
				return nil, err
			}
			return nested, nil
		case '[':
			var arr []interface{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if arr == nil {
				arr = []interface{}{}
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		// Keep integers as int64 when they fit, floats otherwise.
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return t.String(), nil
	default:
		return tok, nil
	}
}

// MarshalJSON encodes the map with keys in insertion order
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent encodes the map pretty-printed, preserving key order
func (m *OrderedMap) MarshalIndent() ([]byte, error) {
	compact, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Equal reports whether two ordered maps hold the same keys in the
// same order with deeply equal values.
func (m *OrderedMap) Equal(other *OrderedMap) bool {
	if other == nil || len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !valueEqual(m.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b interface{}) bool {
	am, aok := a.(*OrderedMap)
	bm, bok := b.(*OrderedMap)
	if aok || bok {
		return aok && bok && am.Equal(bm)
	}
	as, aok := a.([]interface{})
	bs, bok := b.([]interface{})
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valueEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
