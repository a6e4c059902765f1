package widget

import (
	"fmt"
	"html/template"
	"log/slog"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/errors"
	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
)

// Result is one dispatched widget render: its markup (real or diagnostic)
// and the external dependencies it contributes to the page.
type Result struct {
	Markup       template.HTML
	Dependencies []string
}

// Dispatch resolves a widget ref against the registry and renders it for
// one row.
//
// An unresolvable plugin name returns a configuration-class error: that is
// a setup mistake fatal for the whole group. Everything past the lookup is
// data-class and degrades into an inline diagnostic element so sibling
// widgets keep rendering: parameter validation failure, render errors and
// render panics all stay scoped to the one widget.
func Dispatch(reg *Registry, ref config.WidgetRef, index int, row map[string]any, group, entityID string, nav *NavigationData) (Result, error) {
	w, err := reg.Get(ref.Plugin)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal,
			fmt.Sprintf("group %q references unknown widget", group)).
			WithContext("plugin", ref.Plugin)
	}

	result := Result{Dependencies: w.Dependencies()}

	params, err := w.ParamSchema().Validate(ref.Params)
	if err != nil {
		slog.Warn("Widget parameters failed validation",
			logfields.Group(group),
			logfields.Widget(ref.Plugin),
			logfields.Error(err))
		result.Markup = Diagnostic(ref.Plugin, fmt.Sprintf("invalid parameters: %v", err))
		return result, nil
	}

	input := Input{Params: params, Group: group, EntityID: entityID}
	if w.SuppliesNavigationData() {
		// Navigation-capable widgets bypass the row: their data comes from
		// the once-per-group side artifact, and they need to know which
		// entity the page belongs to.
		input.Data = nav
		input.Params["current_id"] = entityID
	} else {
		value, _ := fieldpath.Get(row, ref.DataSource)
		if s, isStr := value.(string); isStr && fieldpath.LooksStructured(s) {
			if parsed, ok := fieldpath.ParseLoose(s); ok {
				value = parsed
			}
		}
		input.Data = value
		if records, ok := fieldpath.AsRecords(value); ok {
			input.Records = records
		}
	}

	content, err := safeRender(w, input)
	if err != nil {
		slog.Warn("Widget render failed",
			logfields.Group(group),
			logfields.Widget(ref.Plugin),
			logfields.EntityID(entityID),
			logfields.Error(err))
		result.Markup = Diagnostic(ref.Plugin, fmt.Sprintf("render failed: %v", err))
		return result, nil
	}

	id := CompositeKey(ref, index)
	result.Markup = w.ContainerMarkup(id, content, params)
	return result, nil
}

// safeRender invokes the widget's render body, converting panics into
// errors so one misbehaving widget cannot abort the entity.
func safeRender(w Widget, input Input) (content template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("widget panicked: %v", r)
		}
	}()
	return w.Render(input)
}

// CompositeKey builds the markup key for one widget slot. Repeated
// instances of the same plugin stay distinct through the data source and
// position.
func CompositeKey(ref config.WidgetRef, index int) string {
	source := ref.DataSource
	if source == "" {
		source = "none"
	}
	return fmt.Sprintf("%s_%s_%d", ref.Plugin, source, index)
}
