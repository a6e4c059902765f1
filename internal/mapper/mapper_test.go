package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
)

func parseSpec(t *testing.T, doc string) config.MappingSpec {
	t.Helper()
	var spec config.MappingSpec
	require.NoError(t, yaml.Unmarshal([]byte(doc), &spec))
	return spec
}

func TestMapRowRenameAndIdentity(t *testing.T) {
	spec := parseSpec(t, `
- full_name
- "id: taxon_id"
- name: general_info.name.value
`)
	row := map[string]any{
		"taxon_id":     int64(12),
		"full_name":    "Araucaria columnaris",
		"general_info": `{"name": {"value": "Araucaria columnaris"}}`,
	}

	doc := MapRow(row, spec, Context{Group: "taxon"})
	assert.Equal(t, "Araucaria columnaris", doc["full_name"])
	assert.Equal(t, int64(12), doc["id"])
	assert.Equal(t, "Araucaria columnaris", doc["name"])
}

func TestMapRowEpithetGenerator(t *testing.T) {
	spec := parseSpec(t, `
- epithet:
    generator: extract_specific_epithet
    params:
      source_field: full_name
`)
	doc := MapRow(map[string]any{"full_name": "Araucaria columnaris"}, spec, Context{Group: "taxon"})
	assert.Equal(t, map[string]any{"epithet": "columnaris"}, doc)
}

func TestMapRowUnknownGeneratorOmitsField(t *testing.T) {
	spec := parseSpec(t, `
- full_name
- derived:
    generator: does_not_exist
`)
	doc := MapRow(map[string]any{"full_name": "Agathis ovata"}, spec, Context{Group: "taxon"})
	assert.Equal(t, "Agathis ovata", doc["full_name"])
	_, present := doc["derived"]
	assert.False(t, present)
}

func TestMapRowGeneratorFailureDoesNotAbortRow(t *testing.T) {
	spec := parseSpec(t, `
- epithet:
    generator: extract_specific_epithet
    params:
      source_field: full_name
- full_name
`)
	// Single token: the generator fails, the later field still maps.
	doc := MapRow(map[string]any{"full_name": "Araucaria"}, spec, Context{Group: "taxon"})
	_, present := doc["epithet"]
	assert.False(t, present)
	assert.Equal(t, "Araucaria", doc["full_name"])
}

func TestMapRowReferenceAliasEmitsNull(t *testing.T) {
	spec := parseSpec(t, `
- family:
    source: taxon_ref
`)
	ctx := Context{Group: "taxon", References: sets.New("taxon_ref")}
	doc := MapRow(map[string]any{"taxon_id": int64(1)}, spec, ctx)

	v, present := doc["family"]
	assert.True(t, present, "reference field must be present")
	assert.Nil(t, v, "reference field must be null")
}

func TestMapRowSelection(t *testing.T) {
	spec := parseSpec(t, `
- stats:
    source: metadata
    fields: [count, updated_at]
`)
	row := map[string]any{"metadata": `{"count": 3, "updated_at": "2024-01-01", "noise": true}`}
	doc := MapRow(row, spec, Context{Group: "plot"})
	assert.Equal(t, map[string]any{"count": 3.0, "updated_at": "2024-01-01"}, doc["stats"])
}

func TestMapRowMissingSourceOmitted(t *testing.T) {
	spec := parseSpec(t, "- nowhere\n")
	doc := MapRow(map[string]any{"taxon_id": int64(1)}, spec, Context{Group: "taxon"})
	assert.Empty(t, doc)
}

func TestEndpointURLGenerator(t *testing.T) {
	gen, ok := Lookup("endpoint_url")
	require.True(t, ok)

	ctx := Context{Group: "taxon", APIBaseURL: "https://example.org/api/"}
	v, err := gen(map[string]any{"taxon_id": int64(4)}, nil, ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/api/taxon/4.json", v)

	_, err = gen(map[string]any{}, nil, ctx)
	assert.Error(t, err)

	_, err = gen(map[string]any{"taxon_id": 1}, nil, Context{Group: "taxon"})
	assert.Error(t, err, "missing base_url must fail")
}

func TestUniqueIDGenerator(t *testing.T) {
	gen, ok := Lookup("unique_id")
	require.True(t, ok)

	ctx := Context{Group: "taxon", IDPrefix: "flora"}
	v, err := gen(map[string]any{"taxon_id": int64(4)}, nil, ctx)
	require.NoError(t, err)
	assert.Equal(t, "flora_taxon_4", v)

	v, err = gen(map[string]any{"taxon_id": 9}, map[string]any{"prefix": "alt"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "alt_taxon_9", v)

	// No id column: still produces a non-empty identifier.
	v, err = gen(map[string]any{}, nil, Context{Group: "taxon"})
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestMediaURLsGenerator(t *testing.T) {
	gen, ok := Lookup("media_urls")
	require.True(t, ok)

	row := map[string]any{"images": `[{'url': 'a.jpg'}, {'url': 'b.jpg'}, {'name': 'no url'}]`}
	v, err := gen(row, nil, Context{Group: "taxon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, v)

	// Absent media column is empty, not an error.
	v, err = gen(map[string]any{}, nil, Context{Group: "taxon"})
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = gen(map[string]any{"images": "not a list"}, nil, Context{Group: "taxon"})
	assert.Error(t, err)
}

func TestGeneratorNames(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"endpoint_url", "unique_id", "extract_specific_epithet", "media_urls"},
		GeneratorNames())
}
