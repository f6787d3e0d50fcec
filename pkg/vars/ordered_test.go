package vars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	input := `{
		"full_name": "Raphael",
		"email": "raphael@example.com",
		"project_name": "Pastry",
		"aliases": ["p", "pst"],
		"_copy_without_render": ["*.png"]
	}`

	m := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))

	assert.Equal(t, []string{
		"full_name", "email", "project_name", "aliases", "_copy_without_render",
	}, m.Keys())
}

func TestOrderedMapNestedObjectsStayOrdered(t *testing.T) {
	input := `{"details": {"zebra": 1, "apple": 2, "mango": 3}}`

	m := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))

	raw, ok := m.Get("details")
	require.True(t, ok)
	nested, ok := raw.(*OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "apple", "mango"}, nested.Keys())
}

func TestOrderedMapNumbers(t *testing.T) {
	input := `{"count": 3, "ratio": 0.5}`

	m := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))

	count, _ := m.Get("count")
	assert.Equal(t, int64(3), count)
	ratio, _ := m.Get("ratio")
	assert.Equal(t, 0.5, ratio)
}

func TestOrderedMapRejectsNonObject(t *testing.T) {
	m := NewOrderedMap()
	assert.Error(t, json.Unmarshal([]byte(`["a", "b"]`), m))
}

func TestOrderedMapMarshalRoundTrip(t *testing.T) {
	input := `{"b":"two","a":"one","nested":{"z":1,"y":2}}`

	m := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))

	// Key order survives the round trip byte for byte.
	assert.Equal(t, input, string(out))
}

func TestOrderedMapSetAndDelete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10) // overwrite keeps position

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, 10, v)

	m.Delete("a")
	assert.Equal(t, []string{"b"}, m.Keys())
	_, ok := m.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	m.Delete("missing")
	assert.Equal(t, 1, m.Len())
}

func TestOrderedMapNilReceiver(t *testing.T) {
	var m *OrderedMap
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
}

func TestOrderedMapToMap(t *testing.T) {
	input := `{"name": "pastry", "opts": {"debug": true}, "tags": [{"k": "v"}]}`

	m := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))

	plain := m.ToMap()
	opts, ok := plain["opts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, opts["debug"])

	tags, ok := plain["tags"].([]interface{})
	require.True(t, ok)
	_, ok = tags[0].(map[string]interface{})
	assert.True(t, ok)
}

func TestOrderedMapEqual(t *testing.T) {
	a := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1, "y": {"z": "v"}}`), a))

	b := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1, "y": {"z": "v"}}`), b))
	assert.True(t, a.Equal(b))

	c := NewOrderedMap()
	require.NoError(t, json.Unmarshal([]byte(`{"y": {"z": "v"}, "x": 1}`), c))
	assert.False(t, a.Equal(c), "different key order is not equal")
}
