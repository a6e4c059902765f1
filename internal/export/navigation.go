package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/database"
	"git.home.luguber.info/inful/databuilder/internal/errors"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
	"git.home.luguber.info/inful/databuilder/internal/widget"
)

// ensureNavigationArtifact scans the group's widget list for a
// navigation-capable widget and, if one exists, makes sure the group's
// side artifact is on disk. The artifact is written at most once per group
// per run; later entities of the same group reuse the handle.
func (o *Orchestrator) ensureNavigationArtifact(ctx context.Context, group config.Group) (*widget.NavigationData, error) {
	var navRef *config.WidgetRef
	for i := range group.Widgets {
		w, err := o.registry.Get(group.Widgets[i].Plugin)
		if err != nil {
			if widget.IsNotFound(err) {
				return nil, errors.ConfigError(fmt.Sprintf("group %q references unknown widget %q",
					group.GroupBy, group.Widgets[i].Plugin))
			}
			return nil, err
		}
		if w.SuppliesNavigationData() {
			navRef = &group.Widgets[i]
			break
		}
	}
	if navRef == nil {
		return nil, nil
	}

	scriptRel := path.Join("assets", "js", group.GroupBy+"_navigation.js")
	data := &widget.NavigationData{
		VariableName: navVariableName(group.GroupBy),
		ScriptPath:   "/" + scriptRel,
	}
	if o.navEmitted.Has(group.GroupBy) {
		return data, nil
	}

	records, err := o.fetchNavigationRows(ctx, group, widget.NavigationFields(*navRef))
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryData, errors.SeverityError, "encode navigation data")
	}
	content := fmt.Sprintf("var %s = %s;\n", data.VariableName, payload)
	if err := writeArtifact(o.target.Output, scriptRel, []byte(content)); err != nil {
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "write navigation artifact")
	}

	o.navEmitted.Add(group.GroupBy)
	o.report.NavArtifacts++
	o.report.FilesWritten++
	slog.Info("Navigation artifact written",
		logfields.Group(group.GroupBy),
		logfields.Artifact(scriptRel),
		slog.Int("records", len(records)))
	return data, nil
}

// fetchNavigationRows loads the projected navigation rows for a group,
// memoized per (table, field set) so repeated widget refs share one query.
func (o *Orchestrator) fetchNavigationRows(ctx context.Context, group config.Group, fields []string) ([]map[string]any, error) {
	key := group.GroupBy + "|" + strings.Join(fields, ",")
	if rows, ok := o.navCache[key]; ok {
		return rows, nil
	}

	columns, err := o.db.Columns(ctx, group.GroupBy)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDatabase, errors.SeverityError, "inspect group table")
	}
	available := sets.New(columns...)

	selected := make([]string, 0, len(fields)+1)
	if available.Has(group.IDColumn()) {
		selected = append(selected, group.IDColumn())
	}
	for _, f := range fields {
		if available.Has(f) && f != group.IDColumn() {
			selected = append(selected, f)
		}
	}
	if len(selected) == 0 {
		return nil, errors.DataError(fmt.Sprintf("table %q has none of the navigation columns", group.GroupBy))
	}

	quoted := make([]string, len(selected))
	for i, c := range selected {
		quoted[i] = database.QuoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), database.QuoteIdent(group.GroupBy), quoted[0])
	rows, err := o.db.FetchAll(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDatabase, errors.SeverityError, "fetch navigation rows")
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	o.navCache[key] = rows
	return rows, nil
}

// navVariableName derives the global JS variable holding a group's
// navigation data: snake_case group names become lowerCamel plus the
// "Navigation" suffix, e.g. plant_taxon -> plantTaxonNavigation.
func navVariableName(group string) string {
	parts := strings.Split(group, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	b.WriteString("Navigation")
	return b.String()
}
