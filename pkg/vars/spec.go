package vars

import "strings"

// VariableKind classifies a variable's raw value once, so the
// prompting pass can dispatch exhaustively instead of duck-typing on
// every read.
type VariableKind int

const (
	// KindScalar is a string default, rendered against the context so
	// far before being offered to the user.
	KindScalar VariableKind = iota

	// KindBoolean is a yes/no variable.
	KindBoolean

	// KindChoice is an ordered list of options selected by number.
	KindChoice

	// KindStructured is a free-form mapping entered as JSON.
	KindStructured

	// KindNestedTemplate is the _template mapping of option name to
	// nested template location.
	KindNestedTemplate
)

// VariableSpec is a tagged view over one variable declaration
type VariableSpec struct {
	Key  string
	Kind VariableKind
	Raw  interface{}
}

// Private reports whether the key carries the private prefix
func (s VariableSpec) Private() bool {
	return strings.HasPrefix(s.Key, PrivatePrefix)
}

// SpecOf determines the variable's kind from the shape of its raw
// value.
func SpecOf(key string, raw interface{}) VariableSpec {
	spec := VariableSpec{Key: key, Raw: raw}

	switch v := raw.(type) {
	case []interface{}:
		spec.Kind = KindChoice
	case bool:
		spec.Kind = KindBoolean
	case *OrderedMap:
		if key == KeyTemplate && allMappings(v) {
			spec.Kind = KindNestedTemplate
		} else {
			spec.Kind = KindStructured
		}
	case map[string]interface{}:
		spec.Kind = KindStructured
	default:
		spec.Kind = KindScalar
	}

	return spec
}

func allMappings(m *OrderedMap) bool {
	if m.Len() == 0 {
		return false
	}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		if _, ok := v.(*OrderedMap); !ok {
			return false
		}
	}
	return true
}
