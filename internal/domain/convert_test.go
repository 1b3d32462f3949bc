package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "treejson.dev/pkg/treejson/internal/model"
)

func prop(name string, value m.Node) *m.PropertyNode {
	return m.NewProperty(name, value)
}

func val(v any) *m.ValueNode {
	return m.NewValue(m.Scalar(v))
}

func toJSONString(t *testing.T, node m.Node) string {
	t.Helper()

	v, err := ConvertRoot(node)
	require.NoError(t, err)

	b, err := json.Marshal(v)
	require.NoError(t, err)

	return string(b)
}

func TestToJSON(t *testing.T) {
	tests := []struct {
		name string
		node m.Node
		want string
	}{
		{
			name: "primitive",
			node: val("hello"),
			want: `"hello"`,
		},
		{
			name: "null",
			node: val(nil),
			want: `null`,
		},
		{
			name: "object keeps insertion order",
			node: m.NewObject(prop("b", val(1)), prop("a", val(true))),
			want: `{"b":1,"a":true}`,
		},
		{
			name: "proxies are transparent in arrays",
			node: m.NewArray(val(1), m.NewProxy(val(2), m.NewProxy(val(3))), val(4)),
			want: `[1,2,3,4]`,
		},
		{
			name: "proxies are transparent in objects",
			node: m.NewObject(m.NewProxy(prop("a", val(1)), prop("b", val(2)))),
			want: `{"a":1,"b":2}`,
		},
		{
			name: "single member proxy in value position",
			node: m.NewObject(prop("a", m.NewProxy(m.NewArray(val(1))))),
			want: `{"a":[1]}`,
		},
		{
			name: "empty proxy drops the key",
			node: m.NewObject(prop("a", m.NewProxy()), prop("b", val(2))),
			want: `{"b":2}`,
		},
		{
			name: "property without value is omitted",
			node: m.NewObject(prop("a", nil), prop("b", val(2))),
			want: `{"b":2}`,
		},
		{
			name: "undefined array items are skipped",
			node: m.NewArray(val(1), m.NewValue(m.Fragment{}), val(3)),
			want: `[1,3]`,
		},
		{
			name: "duplicate key keeps its first position",
			node: m.NewObject(prop("a", val(1)), prop("b", val(2)), prop("a", val(3))),
			want: `{"a":3,"b":2}`,
		},
		{
			name: "later undefined removes the key",
			node: m.NewObject(prop("a", val(1)), prop("b", val(2)), prop("a", m.NewValue(m.Fragment{}))),
			want: `{"b":2}`,
		},
		{
			name: "empty tree",
			node: m.NewProxy(),
			want: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toJSONString(t, tt.node))
		})
	}
}

func TestToJSON_MultiFragmentValue(t *testing.T) {
	v := m.NewValue(m.Fragment{})
	v.Merge(val("count: "))
	v.Merge(val(3))
	v.Merge(m.NewValue(m.Fragment{}))
	v.Merge(val(nil))

	got, ok, err := ToJSON(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "count: 3", got)
}

func TestToJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		node m.Node
		err  error
	}{
		{"ambiguous proxy", m.NewObject(prop("a", m.NewProxy(val(1), val(2)))), ErrAmbiguousProxyValue},
		{"value inside object", m.NewObject(val(1)), ErrUnexpectedNode},
		{"bare property", prop("a", val(1)), ErrUnexpectedNode},
		{"nested failure", m.NewArray(m.NewObject(prop("x", m.NewProxy(val(1), val(2))))), ErrAmbiguousProxyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertRoot(tt.node)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestToJSON_ErrorPath(t *testing.T) {
	_, err := ConvertRoot(m.NewObject(prop("outer", m.NewArray(val(0), m.NewProxy(val(1), val(2))))))

	require.Error(t, err)
	assert.Equal(t, "outer: [1]: cannot collapse multiple siblings into a single value position: proxy has 2 children", err.Error())
}

func TestConvertRoot_UndefinedValue(t *testing.T) {
	v := m.NewValue(m.Fragment{})
	v.SetOrigin(m.NewOrigin("doc.yaml", 4, 3))

	_, err := ConvertRoot(m.NewProxy(v))

	require.ErrorIs(t, err, ErrUndefinedValue)
	assert.Contains(t, err.Error(), "value (doc.yaml:4:3)")
}

func TestFromJSON(t *testing.T) {
	input := m.MapOf(
		"name", "treejson",
		"tags", []any{"a", 1.5, nil, false},
		"nested", m.MapOf("skip", m.Undefined, "keep", int64(7)),
	)

	node, err := FromJSON(input)
	require.NoError(t, err)

	obj, ok := node.(*m.ObjectNode)
	require.True(t, ok)
	require.Len(t, obj.Properties, 3)

	for _, p := range obj.Properties {
		assert.Same(t, obj, p.Parent())
		pn := p.(*m.PropertyNode)
		assert.Same(t, pn, pn.Value.Parent())
	}

	assert.Equal(t, `{"name":"treejson","tags":["a",1.5,null,false],"nested":{"keep":7}}`, toJSONString(t, node))
}

func TestFromJSON_RoundTrip(t *testing.T) {
	values := []any{
		"text",
		float64(42),
		true,
		nil,
		[]any{},
		m.NewMap(),
		[]any{m.MapOf("z", 1.0, "a", []any{m.MapOf()})},
		m.MapOf("x", m.MapOf("y", m.MapOf("z", "deep"))),
	}

	for _, v := range values {
		node, err := FromJSON(v)
		require.NoError(t, err)

		got, ok, err := ToJSON(node)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestFromJSON_PlainMapIsSorted(t *testing.T) {
	node, err := FromJSON(map[string]any{"b": 1.0, "a": 2.0, "c": 3.0})
	require.NoError(t, err)

	assert.Equal(t, `{"a":2,"b":1,"c":3}`, toJSONString(t, node))
}

func TestFromJSON_UndefinedArrayItem(t *testing.T) {
	node, err := FromJSON([]any{1.0, m.Undefined, 2.0})
	require.NoError(t, err)

	arr := node.(*m.ArrayNode)
	require.Len(t, arr.Items, 3)
	assert.False(t, arr.Items[1].(*m.ValueNode).Resolve().Defined)
	assert.Equal(t, `[1,2]`, toJSONString(t, node))
}

func TestFromJSON_Unsupported(t *testing.T) {
	_, err := FromJSON([]any{m.MapOf("ch", make(chan int))})

	require.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Equal(t, "[0]: ch: unsupported value: chan int", err.Error())
}
