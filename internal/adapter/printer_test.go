package adapter

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "treejson.dev/pkg/treejson/internal/model"
)

func TestJSONPrinter_Print(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		indent string
		want   string
	}{
		{"null", nil, "  ", "null"},
		{"string", "a<b>&\"c\"", "  ", `"a<b>&\"c\""`},
		{"compact", m.MapOf("a", []any{1, true}), "", `{"a":[1,true]}`},
		{"empty containers", []any{[]any{}, m.NewMap()}, "  ", "[\n  [],\n  {}\n]"},
		{"plain map sorted", map[string]any{"b": 1, "a": 2}, "  ", "{\n  \"a\": 2,\n  \"b\": 1\n}"},
		{"tab indent", []any{"x"}, "\t", "[\n\t\"x\"\n]"},
		{"json number", json.Number("1.50"), "", "1.50"},
		{"int64", int64(-9), "", "-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printed, err := NewJSONPrinter().Print(tt.value, tt.indent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, printed.Text)
		})
	}
}

func TestJSONPrinter_Pointers(t *testing.T) {
	value := m.MapOf(
		"foo", "bar",
		"list", []any{1, m.MapOf("a/b", nil)},
	)

	printed, err := NewJSONPrinter().Print(value, "  ")
	require.NoError(t, err)

	// {
	//   "foo": "bar",
	//   "list": [
	//     1,
	//     {
	//       "a/b": null
	//     }
	//   ]
	// }
	ptrs := printed.Pointers

	assert.Equal(t, m.Pointer{Line: 0, Column: 0, Pos: 0}, ptrs[""].Value)
	assert.Nil(t, ptrs[""].Key)

	foo := ptrs["/foo"]
	assert.Equal(t, m.Pointer{Line: 1, Column: 9, Pos: 11}, foo.Value)
	assert.Equal(t, m.Pointer{Line: 1, Column: 14, Pos: 16}, foo.ValueEnd)
	require.NotNil(t, foo.Key)
	assert.Equal(t, m.Pointer{Line: 1, Column: 2, Pos: 4}, *foo.Key)
	assert.Equal(t, m.Pointer{Line: 1, Column: 7, Pos: 9}, *foo.KeyEnd)

	assert.Equal(t, 3, ptrs["/list/0"].Value.Line)
	assert.Equal(t, 4, ptrs["/list/0"].Value.Column)

	nested := ptrs["/list/1/a~1b"]
	assert.Equal(t, 5, nested.Value.Line)
	assert.Equal(t, 13, nested.Value.Column)

	for ptr, entry := range ptrs {
		assert.Equal(t, entry.Value.Pos, byteOffset(printed.Text, entry.Value.Line, entry.Value.Column), ptr)
	}
}

// byteOffset converts a line and ASCII column back to a byte offset.
func byteOffset(text string, line, column int) int {
	pos := 0
	for l := 0; l < line; l++ {
		for text[pos] != '\n' {
			pos++
		}
		pos++
	}

	return pos + column
}

func TestJSONPrinter_UTF16Columns(t *testing.T) {
	printed, err := NewJSONPrinter().Print([]any{"😀é", "x"}, "")
	require.NoError(t, err)

	// The emoji is two UTF-16 units but four bytes.
	second := printed.Pointers["/1"].Value
	assert.Equal(t, 7, second.Column)
	assert.Equal(t, len(`["😀é",`), second.Pos)
}

func TestJSONPrinter_LineSeparatorsStayRaw(t *testing.T) {
	printed, err := NewJSONPrinter().Print([]any{"a\u2028b\u2029\"\\u2028", 1}, "")
	require.NoError(t, err)

	assert.Equal(t, "[\"a\u2028b\u2029\\\"\\\\u2028\",1]", printed.Text)

	// Each separator is one UTF-16 unit.
	second := printed.Pointers["/1"].Value
	assert.Equal(t, 17, second.Column)
}

func TestJSONPrinter_Errors(t *testing.T) {
	_, err := NewJSONPrinter().Print([]any{struct{}{}}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot print struct {}")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.5, "1.5"},
		{-42, "-42"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{1e-7, "1e-7"},
		{1e-6, "0.000001"},
		{123456789012345680000, "123456789012345680000"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "%v", tt.in)
	}
}
