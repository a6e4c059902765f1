package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/errors"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
	"git.home.luguber.info/inful/databuilder/internal/mapper"
	"git.home.luguber.info/inful/databuilder/internal/pathtpl"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
)

// processGroupJSON exports one group as a JSON document tree: the group's
// collection document plus one document per entity, each row reshaped
// through the group's mapping spec. Entity errors land in the ledger; with
// continue_on_error off the first one aborts the group.
func (o *Orchestrator) processGroupJSON(ctx context.Context, group config.Group) error {
	if err := o.ensureGroupDir(group); err != nil {
		return err
	}

	rows, err := o.fetchGroupRows(ctx, group)
	if err != nil {
		return err
	}

	mapCtx := mapper.Context{
		Group:      group.GroupBy,
		APIBaseURL: o.target.Options.APIBaseURL,
		IDPrefix:   o.target.Options.IDPrefix,
		References: sets.New(group.References...),
	}
	stats := o.report.group(group.GroupBy)

	if err := o.writeJSONIndex(group, rows, mapCtx); err != nil {
		o.report.Record(ledgerEntry(group.GroupBy, "", "index", err))
		if !o.target.Options.ContinueOnError {
			return err
		}
		slog.Warn("Collection document failed, continuing",
			logfields.Group(group.GroupBy), logfields.Error(err))
	}

	for _, row := range rows {
		id, ok := entityID(row, group)
		if !ok {
			stats.Skipped++
			o.report.EntitiesSkipped++
			continue
		}
		if err := o.writeJSONDetail(group, row, id, mapCtx); err != nil {
			o.report.Record(ledgerEntry(group.GroupBy, id, "detail", err))
			if !o.target.Options.ContinueOnError {
				return err
			}
			slog.Warn("Entity document failed, continuing",
				logfields.Group(group.GroupBy),
				logfields.EntityID(id),
				logfields.Error(err))
		}
	}

	slog.Info("Group exported",
		logfields.Group(group.GroupBy),
		slog.Int("documents", stats.DetailArtifacts),
		slog.Int("skipped", stats.Skipped))
	return nil
}

// writeJSONIndex writes the group's collection document. Zero entities
// (including zero after filtering) skips the write, like the HTML path: no
// misleading empty artifact.
func (o *Orchestrator) writeJSONIndex(group config.Group, rows []map[string]any, mapCtx mapper.Context) error {
	var payload any
	var count int
	if group.Index != nil {
		items, err := buildIndexItems(group, rows)
		if err != nil {
			return err
		}
		payload, count = items, len(items)
	} else {
		docs := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, o.mapDocument(row, group, mapCtx))
		}
		payload, count = docs, len(docs)
	}
	if count == 0 {
		slog.Info("No entities to list, collection document skipped", logfields.Group(group.GroupBy))
		return nil
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryData, errors.SeverityError, "encode collection document")
	}
	rel := indexPath(group)
	if err := writeArtifact(o.target.Output, rel, data); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "write collection document")
	}

	o.report.IndexArtifacts++
	o.report.FilesWritten++
	o.report.group(group.GroupBy).IndexWritten = true
	return nil
}

// writeJSONDetail writes one entity document.
func (o *Orchestrator) writeJSONDetail(group config.Group, row map[string]any, id string, mapCtx mapper.Context) error {
	doc := o.mapDocument(row, group, mapCtx)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryData, errors.SeverityError, "encode entity document")
	}

	rel := pathtpl.Resolve(group.DetailOutput, group.GroupBy, id)
	if err := writeArtifact(o.target.Output, rel, data); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "write entity document")
	}

	o.report.DetailArtifacts++
	o.report.FilesWritten++
	o.report.group(group.GroupBy).DetailArtifacts++
	return nil
}

// mapDocument reshapes one row through the group's mapping spec; a group
// without mapping instructions exports the raw row.
func (o *Orchestrator) mapDocument(row map[string]any, group config.Group, mapCtx mapper.Context) map[string]any {
	if len(group.Mapping) == 0 {
		return row
	}
	return mapper.MapRow(row, group.Mapping, mapCtx)
}

// finishJSON writes the run's metadata and error ledger documents. Both
// are written whatever the outcome so consumers can always see the final
// counts. HTML runs carry their report in memory only.
func (o *Orchestrator) finishJSON() {
	if o.target.Exporter != config.ExporterJSONAPI || o.report == nil {
		return
	}

	meta, err := json.MarshalIndent(o.report, "", "  ")
	if err == nil {
		err = writeArtifact(o.target.Output, "metadata.json", meta)
	}
	if err != nil {
		slog.Error("Run metadata write failed", logfields.Target(o.target.Name), logfields.Error(err))
	} else {
		o.report.FilesWritten++
	}

	ledger := o.report.Errors
	if ledger == nil {
		ledger = []LedgerEntry{}
	}
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err == nil {
		err = writeArtifact(o.target.Output, "export_errors.json", data)
	}
	if err != nil {
		slog.Error("Error ledger write failed", logfields.Target(o.target.Name), logfields.Error(err))
		return
	}
	o.report.FilesWritten++
	if n := len(ledger); n > 0 {
		slog.Warn("Run finished with recorded errors",
			logfields.Target(o.target.Name), slog.Int("errors", n))
	}
}

// Summary renders a one-line human summary of the run for CLI output.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("target %s: %d files written, %d details, %d indexes, %d skipped, %d errors in %s",
		r.Target, r.FilesWritten, r.DetailArtifacts, r.IndexArtifacts,
		r.EntitiesSkipped, r.ErrorCount(), r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
