package export

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
	"git.home.luguber.info/inful/databuilder/internal/pathtpl"
)

// IndexItem is one entry of a group's listing artifact.
type IndexItem struct {
	ID      string         `json:"id"`
	Display string         `json:"display"`
	URL     string         `json:"url"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// buildIndexItems shapes a group's rows into listing entries. The
// configured strategy runs when the group declares index config; if it
// fails, the run degrades to the fallback strategy instead of failing the
// group. A nil error with zero items means "nothing to list": the caller
// must skip the artifact, not write an empty one.
func buildIndexItems(group config.Group, rows []map[string]any) ([]IndexItem, error) {
	if group.Index != nil {
		items, err := configuredIndex(group, rows)
		if err == nil {
			return items, nil
		}
		fallback, fberr := fallbackIndex(group, rows)
		if fberr != nil {
			return nil, fmt.Errorf("configured index failed (%v), fallback failed: %w", err, fberr)
		}
		return fallback, nil
	}
	return fallbackIndex(group, rows)
}

// configuredIndex applies declarative filters and projects the configured
// display fields.
func configuredIndex(group config.Group, rows []map[string]any) ([]IndexItem, error) {
	cfg := group.Index
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("index config declares no fields")
	}

	items := make([]IndexItem, 0, len(rows))
	for _, row := range rows {
		if !matchesFilters(row, cfg.Filters) {
			continue
		}
		id, ok := entityID(row, group)
		if !ok {
			continue
		}

		fields := make(map[string]any, len(cfg.Fields))
		for _, f := range cfg.Fields {
			if v, ok := fieldpath.ExtractDisplay(row, f.Display()); ok {
				fields[f.Name] = v
			}
		}
		items = append(items, IndexItem{
			ID:      id,
			Display: displayFromFields(cfg.Fields, fields, id),
			URL:     "/" + pathtpl.Resolve(group.DetailOutput, group.GroupBy, id),
			Fields:  fields,
		})
	}
	return items, nil
}

// matchesFilters keeps a row only if every filter passes. String fields
// that look like serialized objects are parsed before comparison.
func matchesFilters(row map[string]any, filters []config.Filter) bool {
	for _, f := range filters {
		value, ok := fieldpath.Get(row, f.Field)
		if !ok {
			return false
		}
		if s, isStr := value.(string); isStr && fieldpath.LooksStructured(s) {
			if parsed, parsedOK := fieldpath.ParseLoose(s); parsedOK {
				value = parsed
			}
		}
		rendered := fmt.Sprint(value)
		switch f.Operator {
		case "equals":
			if len(f.Values) == 0 || rendered != f.Values[0] {
				return false
			}
		case "in":
			found := false
			for _, candidate := range f.Values {
				if rendered == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// displayFromFields picks the listing label: a field named "name", else the
// first projected field, else the id.
func displayFromFields(declared []config.IndexField, fields map[string]any, id string) string {
	if v, ok := fields["name"]; ok {
		return fmt.Sprint(v)
	}
	for _, f := range declared {
		if v, ok := fields[f.Name]; ok {
			return fmt.Sprint(v)
		}
	}
	return id
}

// fallbackIndex is the legacy listing strategy: auto-detect a display
// column named "name" or ending in "_name", else order by id, and render a
// plain listing ordered by display value.
func fallbackIndex(group config.Group, rows []map[string]any) ([]IndexItem, error) {
	displayColumn := detectDisplayColumn(rows)

	items := make([]IndexItem, 0, len(rows))
	for _, row := range rows {
		id, ok := entityID(row, group)
		if !ok {
			continue
		}
		display := id
		if displayColumn != "" {
			if v, ok := row[displayColumn]; ok && v != nil {
				display = fmt.Sprint(v)
			}
		}
		items = append(items, IndexItem{
			ID:      id,
			Display: display,
			URL:     "/" + pathtpl.Resolve(group.DetailOutput, group.GroupBy, id),
		})
	}

	if displayColumn != "" {
		c := collate.New(language.Und)
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].Display, items[j].Display) < 0
		})
	} else {
		sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	}
	return items, nil
}

// detectDisplayColumn finds a human-readable column in the first row.
func detectDisplayColumn(rows []map[string]any) string {
	if len(rows) == 0 {
		return ""
	}
	if _, ok := rows[0]["name"]; ok {
		return "name"
	}
	candidates := make([]string, 0, 2)
	for column := range rows[0] {
		if strings.HasSuffix(column, "_name") {
			candidates = append(candidates, column)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[0]
}

// entityID reads the row's id through the group's implicit id column.
func entityID(row map[string]any, group config.Group) (string, bool) {
	v, ok := row[group.IDColumn()]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}
