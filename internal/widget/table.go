package widget

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

func init() {
	mustRegister(&tableWidget{})
}

// tableWidget renders a record list as an HTML table. Columns come from the
// columns parameter or are inferred from the first record.
type tableWidget struct{ Base }

func (*tableWidget) Name() string { return "table" }

func (*tableWidget) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "columns", Type: ParamList},
		{Name: "limit", Type: ParamNumber},
	}}
}

func (*tableWidget) Render(input Input) (template.HTML, error) {
	if len(input.Records) == 0 {
		return "", fmt.Errorf("table data must be a record list")
	}

	columns := input.Params.Strings("columns")
	if len(columns) == 0 {
		columns = make([]string, 0, len(input.Records[0]))
		for k := range input.Records[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}

	records := input.Records
	if limit := int(input.Params.Number("limit", 0)); limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	var b strings.Builder
	b.WriteString(`<table class="data-table"><thead><tr>`)
	for _, col := range columns {
		fmt.Fprintf(&b, "<th>%s</th>", template.HTMLEscapeString(col))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, rec := range records {
		b.WriteString("<tr>")
		for _, col := range columns {
			fmt.Fprintf(&b, "<td>%s</td>", template.HTMLEscapeString(displayValue(rec[col])))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return template.HTML(b.String()), nil // #nosec G203 -- all cells escaped above
}
