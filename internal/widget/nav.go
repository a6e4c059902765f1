package widget

import (
	"fmt"
	"html/template"

	"git.home.luguber.info/inful/databuilder/internal/config"
)

func init() {
	mustRegister(&hierarchicalNav{})
}

// Default minimal field set a navigation artifact carries when the widget
// declares nothing more specific.
var defaultNavFields = []string{"id", "name", "parent_id"}

// hierarchicalNav renders a tree browser over the whole group. It supplies
// its own data: the once-per-group navigation side artifact, consumed
// client-side, instead of per-row data embedded into every detail page.
type hierarchicalNav struct{ Base }

func (*hierarchicalNav) Name() string { return "hierarchical_nav" }

func (*hierarchicalNav) SuppliesNavigationData() bool { return true }

func (*hierarchicalNav) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "id_field", Type: ParamString, Default: "id"},
		{Name: "name_field", Type: ParamString, Default: "name"},
		{Name: "parent_field", Type: ParamString, Default: "parent_id"},
		{Name: "sort_field", Type: ParamString},
	}}
}

func (*hierarchicalNav) Render(input Input) (template.HTML, error) {
	nav, ok := input.Navigation()
	if !ok || nav == nil {
		return "", fmt.Errorf("navigation data not supplied")
	}
	// The tree itself is built client-side from the side artifact; the
	// markup only anchors it and names the entity to highlight.
	// #nosec G203 -- every interpolated value is escaped.
	return template.HTML(fmt.Sprintf(
		`<nav class="hierarchical-nav" data-source="%s" data-current="%s" data-id-field="%s" data-name-field="%s" data-parent-field="%s"></nav>`,
		template.HTMLEscapeString(nav.VariableName),
		template.HTMLEscapeString(input.Params.String("current_id", "")),
		template.HTMLEscapeString(input.Params.String("id_field", "id")),
		template.HTMLEscapeString(input.Params.String("name_field", "name")),
		template.HTMLEscapeString(input.Params.String("parent_field", "parent_id")))), nil
}

// NavigationFields derives the minimal column set the group's navigation
// artifact must carry for a widget ref: the declared id/name/parent and
// ordering fields, or a default minimal set when none are declared.
func NavigationFields(ref config.WidgetRef) []string {
	get := func(key, fallback string) string {
		if v, ok := ref.Params[key].(string); ok && v != "" {
			return v
		}
		return fallback
	}
	fields := []string{
		get("id_field", defaultNavFields[0]),
		get("name_field", defaultNavFields[1]),
		get("parent_field", defaultNavFields[2]),
	}
	if sortField := get("sort_field", ""); sortField != "" {
		fields = append(fields, sortField)
	}
	return fields
}
