// Package widget provides the pluggable visualization units embedded in
// detail pages and the dispatch contract that renders them in isolation.
package widget

import (
	"fmt"
	"html/template"
)

// Widget is one pluggable visualization. Implementations render a data
// slice into embeddable markup and declare their own parameter schema and
// external dependencies.
type Widget interface {
	// Name is the unique plugin identifier referenced from group config.
	Name() string

	// Dependencies lists external resources (script URLs) the rendered
	// markup needs. Collected into the page's deduplicated dependency set.
	Dependencies() []string

	// ParamSchema declares the parameters the widget accepts. The raw
	// parameter bag from config is validated against it before Render.
	ParamSchema() ParamSchema

	// SuppliesNavigationData marks navigation-capable widgets: instead of
	// reading the row's data source they consume the once-per-group
	// navigation side artifact.
	SuppliesNavigationData() bool

	// Render produces the widget's inner markup.
	Render(input Input) (template.HTML, error)

	// ContainerMarkup wraps rendered content into the widget's outer
	// container element.
	ContainerMarkup(id string, content template.HTML, params Params) template.HTML
}

// Input is the data slice and validated parameters handed to Render.
type Input struct {
	// Data is the value resolved from the row's data source path, or a
	// *NavigationData sentinel for navigation-capable widgets.
	Data any

	// Records is the tabular offer: set when Data is (or parses as) an
	// array of records.
	Records []map[string]any

	// Params is the validated parameter bag.
	Params Params

	// Group and EntityID locate the page being rendered.
	Group    string
	EntityID string
}

// NavigationData is the sentinel handed to navigation-capable widgets in
// place of row data: the group's side artifact supplies the records
// client-side.
type NavigationData struct {
	// VariableName is the JS array literal defined by the side artifact.
	VariableName string

	// ScriptPath is the root-relative path of the side artifact.
	ScriptPath string
}

// Navigation extracts the sentinel from an input, if present.
func (in Input) Navigation() (*NavigationData, bool) {
	nav, ok := in.Data.(*NavigationData)
	return nav, ok
}

// Base provides default implementations widgets can embed.
type Base struct{}

func (Base) Dependencies() []string { return nil }
func (Base) ParamSchema() ParamSchema { return ParamSchema{} }
func (Base) SuppliesNavigationData() bool { return false }

// ContainerMarkup wraps content in the standard widget container.
func (Base) ContainerMarkup(id string, content template.HTML, params Params) template.HTML {
	title := params.String("title", "")
	head := ""
	if title != "" {
		head = fmt.Sprintf("<h2>%s</h2>", template.HTMLEscapeString(title))
	}
	// #nosec G203 -- id is a composite of config-declared names, content is
	// produced by Render or the diagnostic builder.
	return template.HTML(fmt.Sprintf(`<section class="widget" id="%s">%s%s</section>`,
		template.HTMLEscapeString(id), head, content))
}

// Diagnostic builds the inline diagnostic element substituted for a widget
// that failed validation or rendering. Scoped to the one widget; siblings
// keep rendering.
func Diagnostic(plugin, message string) template.HTML {
	// #nosec G203 -- both values are escaped.
	return template.HTML(fmt.Sprintf(`<div class="widget-error" data-widget="%s">%s</div>`,
		template.HTMLEscapeString(plugin), template.HTMLEscapeString(message)))
}
