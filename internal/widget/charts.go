package widget

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
)

const chartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.js"

func init() {
	mustRegister(&barChart{})
	mustRegister(&donutChart{})
	mustRegister(&gauge{})
}

// chartSeries is the payload embedded for the client-side chart runtime.
type chartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title,omitempty"`
}

// buildSeries shapes the widget's data slice into labels and values: either
// a record list with label/value fields, or a plain label->number mapping.
func buildSeries(input Input) (chartSeries, error) {
	series := chartSeries{Title: input.Params.String("title", "")}

	if len(input.Records) > 0 {
		labelField := input.Params.String("label_field", "label")
		valueField := input.Params.String("value_field", "value")
		for _, rec := range input.Records {
			label, _ := rec[labelField].(string)
			value, ok := fieldpath.AsNumber(rec[valueField])
			if !ok {
				continue
			}
			series.Labels = append(series.Labels, label)
			series.Values = append(series.Values, value)
		}
		if len(series.Values) == 0 {
			return series, fmt.Errorf("no numeric %q values in records", valueField)
		}
		return series, nil
	}

	m, ok := input.Data.(map[string]any)
	if !ok {
		return series, fmt.Errorf("chart data must be a record list or a mapping")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value, ok := fieldpath.AsNumber(m[k])
		if !ok {
			continue
		}
		series.Labels = append(series.Labels, k)
		series.Values = append(series.Values, value)
	}
	if len(series.Values) == 0 {
		return series, fmt.Errorf("no numeric values in mapping")
	}
	return series, nil
}

func renderChart(kind string, input Input) (template.HTML, error) {
	series, err := buildSeries(input)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(series)
	if err != nil {
		return "", fmt.Errorf("marshal chart data: %w", err)
	}
	// #nosec G203 -- payload is JSON-marshalled and attribute-escaped.
	return template.HTML(fmt.Sprintf(
		`<canvas class="chart chart-%s" data-chart="%s" data-series="%s"></canvas>`,
		kind, kind, template.HTMLEscapeString(string(payload)))), nil
}

type barChart struct{ Base }

func (*barChart) Name() string { return "bar_chart" }
func (*barChart) Dependencies() []string { return []string{chartJSURL} }
func (*barChart) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "label_field", Type: ParamString, Default: "label"},
		{Name: "value_field", Type: ParamString, Default: "value"},
	}}
}

func (*barChart) Render(input Input) (template.HTML, error) {
	return renderChart("bar", input)
}

type donutChart struct{ Base }

func (*donutChart) Name() string { return "donut_chart" }
func (*donutChart) Dependencies() []string { return []string{chartJSURL} }
func (*donutChart) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "label_field", Type: ParamString, Default: "label"},
		{Name: "value_field", Type: ParamString, Default: "value"},
	}}
}

func (*donutChart) Render(input Input) (template.HTML, error) {
	return renderChart("donut", input)
}

type gauge struct{ Base }

func (*gauge) Name() string { return "gauge" }
func (*gauge) ParamSchema() ParamSchema {
	return ParamSchema{Fields: []ParamField{
		{Name: "title", Type: ParamString},
		{Name: "value_field", Type: ParamString},
		{Name: "min", Type: ParamNumber, Default: 0},
		{Name: "max", Type: ParamNumber, Default: 100},
		{Name: "unit", Type: ParamString},
	}}
}

func (g *gauge) Render(input Input) (template.HTML, error) {
	value := input.Data
	if field := input.Params.String("value_field", ""); field != "" {
		if m, ok := input.Data.(map[string]any); ok {
			value = m[field]
		}
	}
	n, ok := fieldpath.AsNumber(value)
	if !ok {
		return "", fmt.Errorf("gauge value is not numeric")
	}
	// #nosec G203 -- numeric formatting and escaped unit only.
	return template.HTML(fmt.Sprintf(
		`<div class="gauge" data-value="%g" data-min="%g" data-max="%g"><span>%g%s</span></div>`,
		n,
		input.Params.Number("min", 0),
		input.Params.Number("max", 100),
		n,
		template.HTMLEscapeString(input.Params.String("unit", "")))), nil
}
