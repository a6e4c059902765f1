package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMappingInstructionForms(t *testing.T) {
	var spec MappingSpec
	err := yaml.Unmarshal([]byte(`
- full_name
- "rank: rank_name"
- id: taxon_id
- name: general_info.name.value
- epithet:
    generator: extract_specific_epithet
    params:
      source_field: full_name
- stats:
    source: metadata
    fields: [count, updated_at]
- family:
    source: taxon_ref
`), &spec)
	require.NoError(t, err)
	require.Len(t, spec, 7)

	assert.Equal(t, MappingInstruction{Out: "full_name", Source: "full_name"}, spec[0])
	assert.Equal(t, MappingInstruction{Out: "rank", Source: "rank_name"}, spec[1])
	assert.Equal(t, MappingInstruction{Out: "id", Source: "taxon_id"}, spec[2])
	assert.Equal(t, "general_info.name.value", spec[3].Source)

	assert.True(t, spec[4].IsGenerator())
	assert.Equal(t, "extract_specific_epithet", spec[4].Generator)
	assert.Equal(t, "full_name", spec[4].Params["source_field"])

	assert.True(t, spec[5].IsSelection())
	assert.Equal(t, []string{"count", "updated_at"}, spec[5].Fields)

	// Bare source with no fields: the reference-alias shape.
	assert.False(t, spec[6].IsGenerator())
	assert.False(t, spec[6].IsSelection())
	assert.Equal(t, "taxon_ref", spec[6].Source)
}

func TestMappingInstructionRejectsMultiKey(t *testing.T) {
	var spec MappingSpec
	err := yaml.Unmarshal([]byte("- {a: x, b: y}\n"), &spec)
	assert.Error(t, err)
}

func TestMappingInstructionRejectsSequence(t *testing.T) {
	var spec MappingSpec
	err := yaml.Unmarshal([]byte("- [a, b]\n"), &spec)
	assert.Error(t, err)
}
