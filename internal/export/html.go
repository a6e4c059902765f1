package export

import (
	"context"
	"html/template"
	"log/slog"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/errors"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
	"git.home.luguber.info/inful/databuilder/internal/pathtpl"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
	"git.home.luguber.info/inful/databuilder/internal/widget"
)

// detailContext is the data a detail template executes against.
type detailContext struct {
	Site         config.SiteMeta
	Group        string
	EntityID     string
	Title        string
	Depth        int
	Dependencies []string
	WidgetOrder  []string
	Widgets      map[string]template.HTML
}

// indexContext is the data an index template executes against.
type indexContext struct {
	Site  config.SiteMeta
	Group string
	Title string
	Depth int
	Items []IndexItem
}

// processGroupHTML exports one group as static HTML: the navigation side
// artifact when a widget wants one, the listing page, then one detail page
// per entity. Entity failures are recorded and skipped; the group keeps
// going.
func (o *Orchestrator) processGroupHTML(ctx context.Context, group config.Group) error {
	if err := o.checkGroupPlugins(group); err != nil {
		return err
	}
	if err := o.ensureGroupDir(group); err != nil {
		return err
	}

	nav, err := o.ensureNavigationArtifact(ctx, group)
	if err != nil {
		return err
	}

	rows, err := o.fetchGroupRows(ctx, group)
	if err != nil {
		return err
	}

	stats := o.report.group(group.GroupBy)

	if err := o.writeHTMLIndex(group, rows); err != nil {
		slog.Warn("Index artifact failed, group continues without listing",
			logfields.Group(group.GroupBy), logfields.Error(err))
		o.report.Record(ledgerEntry(group.GroupBy, "", "index", err))
	}

	for _, row := range rows {
		id, ok := entityID(row, group)
		if !ok {
			slog.Warn("Row has no id, skipping", logfields.Group(group.GroupBy))
			stats.Skipped++
			o.report.EntitiesSkipped++
			continue
		}
		if err := o.renderHTMLDetail(ctx, group, id, nav); err != nil {
			if errors.IsConfiguration(err) {
				return err
			}
			slog.Warn("Detail page failed, skipping entity",
				logfields.Group(group.GroupBy),
				logfields.EntityID(id),
				logfields.Error(err))
			o.report.Record(ledgerEntry(group.GroupBy, id, "detail", err))
		}
	}

	slog.Info("Group exported",
		logfields.Group(group.GroupBy),
		slog.Int("details", stats.DetailArtifacts),
		slog.Int("skipped", stats.Skipped),
		slog.Bool("index", stats.IndexWritten))
	return nil
}

// writeHTMLIndex builds and writes the group's listing page. A listing
// error is distinct from an empty listing: the error propagates, an empty
// result skips the write so no misleading empty page appears.
func (o *Orchestrator) writeHTMLIndex(group config.Group, rows []map[string]any) error {
	items, err := buildIndexItems(group, rows)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		slog.Info("No entities to list, index skipped", logfields.Group(group.GroupBy))
		return nil
	}

	rel := indexPath(group)
	name := group.IndexTemplate
	if name == "" {
		name = "group_index.html"
	}
	html, err := o.engine.Render(name, indexContext{
		Site:  o.target.Site,
		Group: group.GroupBy,
		Title: group.GroupBy,
		Depth: pathtpl.Depth(rel),
		Items: items,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryTemplate, errors.SeverityError, "render index")
	}
	if err := writeArtifact(o.target.Output, rel, []byte(html)); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "write index")
	}

	o.report.IndexArtifacts++
	o.report.FilesWritten++
	o.report.group(group.GroupBy).IndexWritten = true
	return nil
}

// renderHTMLDetail builds one entity's page: the row is refetched by id so
// an entity that vanished since the listing query is skipped rather than
// rendered stale, every widget slot is dispatched under its composite key,
// and the dependency set of all widgets is deduplicated into the page head.
func (o *Orchestrator) renderHTMLDetail(ctx context.Context, group config.Group, id string, nav *widget.NavigationData) error {
	row, err := o.fetchEntityRow(ctx, group, id)
	if err != nil {
		return errors.Wrap(err, errors.CategoryDatabase, errors.SeverityError, "fetch entity")
	}
	if row == nil {
		slog.Warn("Entity not found, skipping",
			logfields.Group(group.GroupBy), logfields.EntityID(id))
		o.report.group(group.GroupBy).Skipped++
		o.report.EntitiesSkipped++
		return nil
	}

	deps := sets.New[string]()
	order := make([]string, 0, len(group.Widgets))
	widgets := make(map[string]template.HTML, len(group.Widgets))
	for i, ref := range group.Widgets {
		result, err := widget.Dispatch(o.registry, ref, i, row, group.GroupBy, id, nav)
		if err != nil {
			return err
		}
		key := widget.CompositeKey(ref, i)
		order = append(order, key)
		widgets[key] = result.Markup
		for _, dep := range result.Dependencies {
			deps.Add(dep)
		}
	}
	if nav != nil {
		deps.Add(nav.ScriptPath)
	}

	rel := pathtpl.Resolve(group.DetailOutput, group.GroupBy, id)
	name := group.DetailTemplate
	if name == "" {
		name = "group_detail.html"
	}
	html, err := o.engine.Render(name, detailContext{
		Site:         o.target.Site,
		Group:        group.GroupBy,
		EntityID:     id,
		Title:        detailTitle(row, id),
		Depth:        pathtpl.Depth(rel),
		Dependencies: sets.SortedStrings(deps),
		WidgetOrder:  order,
		Widgets:      widgets,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryTemplate, errors.SeverityError, "render detail")
	}
	if err := writeArtifact(o.target.Output, rel, []byte(html)); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "write detail")
	}

	o.report.DetailArtifacts++
	o.report.FilesWritten++
	o.report.group(group.GroupBy).DetailArtifacts++
	return nil
}
