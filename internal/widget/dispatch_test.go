package widget

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/errors"
)

// panicky always panics in its render body.
type panicky struct{ Base }

func (*panicky) Name() string { return "panicky" }
func (*panicky) Render(Input) (template.HTML, error) {
	panic("boom")
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, name := range DefaultRegistry().Names() {
		w, err := DefaultRegistry().Get(name)
		require.NoError(t, err)
		require.NoError(t, reg.Register(w))
	}
	require.NoError(t, reg.Register(&panicky{}))
	return reg
}

func TestDispatchUnknownPluginIsConfigurationError(t *testing.T) {
	reg := testRegistry(t)
	_, err := Dispatch(reg, config.WidgetRef{Plugin: "nope"}, 0, nil, "taxon", "1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	var ee *errors.ExportError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "nope", ee.Context["plugin"])
}

func TestDispatchRendersOrdinaryWidget(t *testing.T) {
	reg := testRegistry(t)
	row := map[string]any{
		"distribution": `[{"label": "north", "value": 12}, {"label": "south", "value": 3}]`,
	}
	ref := config.WidgetRef{Plugin: "bar_chart", DataSource: "distribution", Params: map[string]any{"title": "Distribution"}}

	res, err := Dispatch(reg, ref, 0, row, "taxon", "1", nil)
	require.NoError(t, err)
	assert.Contains(t, string(res.Markup), "chart-bar")
	assert.Contains(t, string(res.Markup), "Distribution")
	assert.Contains(t, string(res.Markup), `id="bar_chart_distribution_0"`)
	assert.Equal(t, []string{chartJSURL}, res.Dependencies)
	assert.NotContains(t, string(res.Markup), "widget-error")
}

func TestDispatchInvalidParamsYieldsDiagnostic(t *testing.T) {
	reg := testRegistry(t)
	ref := config.WidgetRef{Plugin: "bar_chart", DataSource: "d", Params: map[string]any{"title": 42}}

	res, err := Dispatch(reg, ref, 0, map[string]any{"d": map[string]any{"a": 1}}, "taxon", "1", nil)
	require.NoError(t, err, "validation failure is data-class, not fatal")
	assert.Contains(t, string(res.Markup), "widget-error")
	assert.Contains(t, string(res.Markup), "invalid parameters")
}

func TestDispatchRenderErrorYieldsDiagnostic(t *testing.T) {
	reg := testRegistry(t)
	// info_grid over a scalar cannot render.
	ref := config.WidgetRef{Plugin: "info_grid", DataSource: "x"}

	res, err := Dispatch(reg, ref, 0, map[string]any{"x": "scalar"}, "taxon", "1", nil)
	require.NoError(t, err)
	assert.Contains(t, string(res.Markup), "widget-error")
}

func TestDispatchContainsPanics(t *testing.T) {
	reg := testRegistry(t)
	res, err := Dispatch(reg, config.WidgetRef{Plugin: "panicky"}, 0, map[string]any{}, "taxon", "1", nil)
	require.NoError(t, err)
	assert.Contains(t, string(res.Markup), "widget-error")
	assert.Contains(t, string(res.Markup), "panicked")
}

func TestDispatchNavigationCapable(t *testing.T) {
	reg := testRegistry(t)
	nav := &NavigationData{VariableName: "taxonNavigation", ScriptPath: "/assets/js/taxon_navigation.js"}
	ref := config.WidgetRef{Plugin: "hierarchical_nav", Params: map[string]any{"id_field": "taxon_id"}}

	res, err := Dispatch(reg, ref, 2, map[string]any{"ignored": true}, "taxon", "42", nav)
	require.NoError(t, err)
	markup := string(res.Markup)
	assert.Contains(t, markup, `data-source="taxonNavigation"`)
	assert.Contains(t, markup, `data-current="42"`, "entity id must be injected")
	assert.Contains(t, markup, `id="hierarchical_nav_none_2"`)
}

func TestDispatchTabularOffer(t *testing.T) {
	reg := testRegistry(t)
	// Stringified record array must reach the table widget in tabular form.
	row := map[string]any{"occurrences": `[{'plot': 'P1', 'count': 4}, {'plot': 'P2', 'count': 9}]`}
	ref := config.WidgetRef{Plugin: "table", DataSource: "occurrences", Params: map[string]any{"columns": []any{"plot", "count"}}}

	res, err := Dispatch(reg, ref, 0, row, "taxon", "1", nil)
	require.NoError(t, err)
	markup := string(res.Markup)
	assert.Contains(t, markup, "<th>plot</th>")
	assert.Equal(t, 2, strings.Count(markup, "<tr>")-1, "two body rows expected")
}

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "bar_chart_distribution_1",
		CompositeKey(config.WidgetRef{Plugin: "bar_chart", DataSource: "distribution"}, 1))
	assert.Equal(t, "hierarchical_nav_none_0",
		CompositeKey(config.WidgetRef{Plugin: "hierarchical_nav"}, 0))
}

func TestSiblingsRenderWhenOneFails(t *testing.T) {
	reg := testRegistry(t)
	row := map[string]any{"info": map[string]any{"rank": "species"}}
	refs := []config.WidgetRef{
		{Plugin: "bar_chart", DataSource: "info", Params: map[string]any{"title": 1}}, // bad param type
		{Plugin: "info_grid", DataSource: "info"},
	}

	var rendered []string
	for i, ref := range refs {
		res, err := Dispatch(reg, ref, i, row, "taxon", "1", nil)
		require.NoError(t, err)
		rendered = append(rendered, string(res.Markup))
	}
	assert.Contains(t, rendered[0], "widget-error")
	assert.Contains(t, rendered[1], "species")
	assert.NotContains(t, rendered[1], "widget-error")
}
