package widget

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

func init() {
	mustRegister(&infoGrid{})
	mustRegister(&rawHTML{})
}

// infoGrid renders a key/value listing of an object-shaped data slice.
type infoGrid struct{ Base }

func (*infoGrid) Name() string { return "info_grid" }

func (*infoGrid) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "fields", Type: ParamList},
	}}
}

func (*infoGrid) Render(input Input) (template.HTML, error) {
	m, ok := input.Data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("info_grid data must be an object")
	}

	keys := input.Params.Strings("fields")
	if len(keys) == 0 {
		keys = make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var b strings.Builder
	b.WriteString(`<dl class="info-grid">`)
	for _, k := range keys {
		v, present := m[k]
		if !present {
			continue
		}
		fmt.Fprintf(&b, "<dt>%s</dt><dd>%s</dd>",
			template.HTMLEscapeString(k),
			template.HTMLEscapeString(displayValue(v)))
	}
	b.WriteString("</dl>")
	return template.HTML(b.String()), nil // #nosec G203 -- all values escaped above
}

// displayValue flattens nested {value: x} cells the upstream schema uses.
func displayValue(v any) string {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return fmt.Sprint(inner)
		}
	}
	return fmt.Sprint(v)
}

// rawHTML injects configured markup verbatim. The config file is trusted
// input; this widget exists for embedding hand-written fragments.
type rawHTML struct{ Base }

func (*rawHTML) Name() string { return "raw_html" }

func (*rawHTML) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "html", Type: ParamString, Required: true},
		{Name: "title", Type: ParamString},
	}}
}

func (*rawHTML) Render(input Input) (template.HTML, error) {
	return template.HTML(input.Params.String("html", "")), nil // #nosec G203 -- config-authored markup
}
