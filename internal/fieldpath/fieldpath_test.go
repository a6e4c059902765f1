package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNestedMap(t *testing.T) {
	row := map[string]any{
		"general_info": map[string]any{
			"name": map[string]any{"value": "Araucaria columnaris"},
		},
	}

	v, ok := Get(row, "general_info.name.value")
	require.True(t, ok)
	assert.Equal(t, "Araucaria columnaris", v)
}

func TestGetParsesSerializedStrings(t *testing.T) {
	// Structured columns frequently arrive as JSON text from SQLite.
	row := map[string]any{
		"general_info": `{"name": {"value": "Dicranopteris linearis"}}`,
	}

	v, ok := Get(row, "general_info.name.value")
	require.True(t, ok)
	assert.Equal(t, "Dicranopteris linearis", v)
}

func TestGetMissingAndMismatch(t *testing.T) {
	row := map[string]any{
		"a": map[string]any{"b": 1.0},
		"s": "plain text",
		"n": nil,
	}

	cases := []string{"a.c", "a.b.c", "s.x", "missing", "n"}
	for _, path := range cases {
		_, ok := Get(row, path)
		assert.False(t, ok, "path %q should be missing", path)
	}
}

func TestGetEmptyPath(t *testing.T) {
	v, ok := Get(map[string]any{"k": 1}, "")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"k": 1}, v)
}

func TestParseLooseSingleQuotes(t *testing.T) {
	// Upstream scripts emit single-quoted pseudo-JSON; documented lossy heuristic.
	v, ok := ParseLoose(`[{'url': 'a.jpg'}, {'url': 'b.jpg'}]`)
	require.True(t, ok)
	arr, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 2)

	_, ok = ParseLoose("{not json at all")
	assert.False(t, ok)
}

func TestLooksStructured(t *testing.T) {
	assert.True(t, LooksStructured(`{"a":1}`))
	assert.True(t, LooksStructured("  [1,2]"))
	assert.False(t, LooksStructured("plain"))
	assert.False(t, LooksStructured(""))
}

func TestAsNumber(t *testing.T) {
	for _, v := range []any{3.5, float32(3.5), "3.5", " 3.5 "} {
		n, ok := AsNumber(v)
		require.True(t, ok, "%v", v)
		assert.InDelta(t, 3.5, n, 1e-9)
	}
	n, ok := AsNumber(int64(7))
	require.True(t, ok)
	assert.Equal(t, 7.0, n)

	_, ok = AsNumber("abc")
	assert.False(t, ok)
	_, ok = AsNumber(nil)
	assert.False(t, ok)
}

func TestAsRecords(t *testing.T) {
	recs, ok := AsRecords(`[{"id": 1}, {"id": 2}]`)
	require.True(t, ok)
	assert.Len(t, recs, 2)

	_, ok = AsRecords(`[1, 2, 3]`)
	assert.False(t, ok)
	_, ok = AsRecords("scalar")
	assert.False(t, ok)
}

func TestExtractDisplayFallback(t *testing.T) {
	row := map[string]any{"full_name": "Araucaria columnaris"}

	v, ok := ExtractDisplay(row, DisplayField{Source: "general_info.name.value", Fallback: "full_name"})
	require.True(t, ok)
	assert.Equal(t, "Araucaria columnaris", v)

	_, ok = ExtractDisplay(row, DisplayField{Source: "nope", Fallback: "also_nope"})
	assert.False(t, ok)
}

func TestExtractDisplayJSONArray(t *testing.T) {
	row := map[string]any{"images": `[{'url': 'x.jpg'}]`}

	v, ok := ExtractDisplay(row, DisplayField{Source: "images", Type: "json_array"})
	require.True(t, ok)
	arr, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 1)
}

func TestExtractDisplayNumber(t *testing.T) {
	row := map[string]any{"elevation": "812"}
	v, ok := ExtractDisplay(row, DisplayField{Source: "elevation", Type: "number"})
	require.True(t, ok)
	assert.Equal(t, 812.0, v)
}
