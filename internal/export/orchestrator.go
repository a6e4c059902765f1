// Package export implements the export orchestration engine: group
// traversal, index and detail artifact building, widget dispatch wiring,
// navigation side artifacts and run statistics.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/database"
	"git.home.luguber.info/inful/databuilder/internal/errors"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
	"git.home.luguber.info/inful/databuilder/internal/pathtpl"
	"git.home.luguber.info/inful/databuilder/internal/staticpage"
	"git.home.luguber.info/inful/databuilder/internal/tmplengine"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
	"git.home.luguber.info/inful/databuilder/internal/widget"
)

// Orchestrator drives one export run for one target. All run-scoped state
// (navigation cache, emitted markers, report) lives on the instance; a new
// run gets a new orchestrator.
type Orchestrator struct {
	cfg      *config.Config
	target   *config.Target
	db       *database.DB
	engine   *tmplengine.Engine
	registry *widget.Registry

	state  State
	report *RunReport

	// navEmitted marks groups whose navigation side artifact is already on
	// disk this run; navCache holds reference rows fetched once per
	// (table, field set).
	navEmitted sets.Set[string]
	navCache   map[string][]map[string]any
}

// New creates an orchestrator for one run of the given target.
func New(cfg *config.Config, target *config.Target, db *database.DB) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		target:     target,
		db:         db,
		engine:     tmplengine.New(target.TemplateRoot),
		registry:   widget.DefaultRegistry(),
		state:      StateIdle,
		navEmitted: sets.New[string](),
		navCache:   make(map[string][]map[string]any),
	}
}

// WithRegistry swaps the widget registry. Used by tests.
func (o *Orchestrator) WithRegistry(reg *widget.Registry) *Orchestrator {
	o.registry = reg
	return o
}

// Run executes the export. onlyGroup restricts the run to a single group;
// the empty string exports everything. The returned report is populated
// even when Run returns an error.
func (o *Orchestrator) Run(ctx context.Context, onlyGroup string) (*RunReport, error) {
	o.report = newRunReport(o.target.Name, o.target.Exporter)
	started := time.Now()
	defer func() {
		o.report.EndedAt = time.Now().UTC()
	}()

	if err := o.advance(StateValidatingParams); err != nil {
		return o.report, err
	}
	if err := o.validateRun(onlyGroup); err != nil {
		_ = o.advance(StateFailed)
		return o.report, err
	}

	if err := o.advance(StatePreparingOutput); err != nil {
		return o.report, err
	}
	if err := o.prepareOutput(onlyGroup); err != nil {
		_ = o.advance(StateFailed)
		return o.report, err
	}

	if err := o.advance(StateRenderingStaticPages); err != nil {
		return o.report, err
	}
	if onlyGroup == "" && o.target.Exporter == config.ExporterHTML {
		o.renderStaticPages()
	}

	if err := o.advance(StateProcessingGroups); err != nil {
		return o.report, err
	}
	if err := o.processGroups(ctx, onlyGroup); err != nil {
		_ = o.advance(StateFailed)
		o.finishJSON()
		return o.report, err
	}

	o.finishJSON()
	if err := o.advance(StateDone); err != nil {
		return o.report, err
	}

	slog.Info("Export run completed",
		logfields.Target(o.target.Name),
		slog.String("run_id", o.report.RunID),
		slog.Int("files_written", o.report.FilesWritten),
		slog.Int("errors", o.report.ErrorCount()),
		logfields.DurationMS(float64(time.Since(started).Milliseconds())))
	return o.report, nil
}

// validateRun checks run parameters beyond static config validation.
func (o *Orchestrator) validateRun(onlyGroup string) error {
	if o.target.Output == "" {
		return errors.ConfigError(fmt.Sprintf("target %q has no output root", o.target.Name))
	}
	if onlyGroup != "" && o.target.GroupByName(onlyGroup) == nil {
		return errors.ConfigError(fmt.Sprintf("target %q has no group %q", o.target.Name, onlyGroup))
	}
	return nil
}

// prepareOutput manages the destructive part of the run: a full export
// clears the whole output root, a targeted run clears only the requested
// group's subdirectory so unrelated prior output survives.
func (o *Orchestrator) prepareOutput(onlyGroup string) error {
	if onlyGroup == "" {
		if err := os.RemoveAll(o.target.Output); err != nil {
			return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "clear output root")
		}
	} else {
		if err := os.RemoveAll(filepath.Join(o.target.Output, onlyGroup)); err != nil {
			return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "clear group output")
		}
	}
	if err := os.MkdirAll(o.target.Output, 0o750); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "create output root")
	}

	if onlyGroup == "" {
		for _, src := range o.target.CopyAssets {
			dst := filepath.Join(o.target.Output, "assets", filepath.Base(src))
			if err := copyDir(src, dst); err != nil {
				return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal,
					fmt.Sprintf("copy assets from %s", src))
			}
		}
	}
	return nil
}

// renderStaticPages writes the target's standalone pages. A broken static
// page is data-class: logged, recorded, siblings still render.
func (o *Orchestrator) renderStaticPages() {
	for _, page := range o.target.StaticPages {
		html, err := staticpage.Render(o.engine, page, o.target.Site)
		if err != nil {
			slog.Warn("Static page failed", logfields.Target(o.target.Name),
				slog.String("page", page.Name), logfields.Error(err))
			o.report.Record(ledgerEntry("", "", "static_page", err))
			continue
		}
		if err := writeArtifact(o.target.Output, page.Output, []byte(html)); err != nil {
			slog.Warn("Static page write failed", slog.String("page", page.Name), logfields.Error(err))
			o.report.Record(ledgerEntry("", "", "static_page", err))
			continue
		}
		o.report.StaticPages++
		o.report.FilesWritten++
	}
}

// processGroups iterates the configured groups. A group-level failure is
// caught and logged here; the orchestrator moves on to the next group
// instead of failing the target. Only a json_api run with
// continue_on_error disabled propagates.
func (o *Orchestrator) processGroups(ctx context.Context, onlyGroup string) error {
	for i := range o.target.Groups {
		group := o.target.Groups[i]
		if onlyGroup != "" && group.GroupBy != onlyGroup {
			continue
		}

		var err error
		if o.target.Exporter == config.ExporterJSONAPI {
			err = o.processGroupJSON(ctx, group)
		} else {
			err = o.processGroupHTML(ctx, group)
		}
		if err != nil {
			if o.target.Exporter == config.ExporterJSONAPI && !o.target.Options.ContinueOnError {
				return err
			}
			slog.Error("Group export failed, continuing with next group",
				logfields.Target(o.target.Name),
				logfields.Group(group.GroupBy),
				logfields.Error(err))
			o.report.Record(ledgerEntry(group.GroupBy, "", "group", err))
		}
	}
	return nil
}

// checkGroupPlugins resolves every widget ref upfront. An unresolvable
// plugin name is a setup mistake fatal for the whole group.
func (o *Orchestrator) checkGroupPlugins(group config.Group) error {
	for _, ref := range group.Widgets {
		if !o.registry.Has(ref.Plugin) {
			return errors.ConfigError(fmt.Sprintf("group %q references unknown widget %q", group.GroupBy, ref.Plugin))
		}
	}
	return nil
}

// fetchGroupRows loads the group's full entity set, ordered by id. The
// (rows, error) pair keeps "query failed" distinguishable from "zero
// rows": callers must branch on the error, not on emptiness.
func (o *Orchestrator) fetchGroupRows(ctx context.Context, group config.Group) ([]map[string]any, error) {
	ok, err := o.db.HasTable(ctx, group.GroupBy)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDatabase, errors.SeverityError, "check group table")
	}
	if !ok {
		return nil, errors.DataError(fmt.Sprintf("table %q does not exist", group.GroupBy))
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s",
		database.QuoteIdent(group.GroupBy), database.QuoteIdent(group.IDColumn()))
	rows, err := o.db.FetchAll(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDatabase, errors.SeverityError, "fetch group rows")
	}
	return rows, nil
}

// fetchEntityRow loads one entity's full row; (nil, nil) means not found.
func (o *Orchestrator) fetchEntityRow(ctx context.Context, group config.Group, id string) (map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?",
		database.QuoteIdent(group.GroupBy), database.QuoteIdent(group.IDColumn()))
	return o.db.FetchOne(ctx, query, id)
}

// detailTitle picks the page heading for an entity row.
func detailTitle(row map[string]any, id string) string {
	if column := detectDisplayColumn([]map[string]any{row}); column != "" {
		if v, ok := row[column]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return id
}

// ensureGroupDir creates the group's output subdirectory.
func (o *Orchestrator) ensureGroupDir(group config.Group) error {
	dir := filepath.Join(o.target.Output, group.GroupBy)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "create group directory")
	}
	return nil
}

// indexPath resolves a group's index artifact location.
func indexPath(group config.Group) string {
	return pathtpl.ResolveIndex(group.IndexOutput, group.GroupBy)
}
