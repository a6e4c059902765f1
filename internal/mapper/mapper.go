// Package mapper implements the declarative field-mapping DSL that reshapes
// one row into one output document.
package mapper

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
	"git.home.luguber.info/inful/databuilder/internal/logfields"
	"git.home.luguber.info/inful/databuilder/internal/util/sets"
)

// Context carries the per-group settings generators draw on.
type Context struct {
	Group      string
	APIBaseURL string
	IDPrefix   string
	// References are declared cross-table aliases. Mapping instructions
	// naming one are acknowledged but unresolved: the output field is null.
	References sets.Set[string]
}

// MapRow applies a mapping spec to one row. A failure inside one field
// instruction never aborts the remaining fields of the same row: the field
// is logged and omitted (or set to null for reference aliases).
func MapRow(row map[string]any, spec config.MappingSpec, ctx Context) map[string]any {
	doc := make(map[string]any, len(spec))

	for _, instr := range spec {
		switch {
		case instr.IsGenerator():
			gen, ok := Lookup(instr.Generator)
			if !ok {
				slog.Warn("Unknown generator, field omitted",
					logfields.Group(ctx.Group),
					logfields.Generator(instr.Generator),
					slog.String("field", instr.Out))
				continue
			}
			value, err := gen(row, instr.Params, ctx)
			if err != nil {
				slog.Warn("Generator failed, field omitted",
					logfields.Group(ctx.Group),
					logfields.Generator(instr.Generator),
					slog.String("field", instr.Out),
					logfields.Error(err))
				continue
			}
			doc[instr.Out] = value

		case ctx.References.Has(instr.Source) && !instr.IsSelection():
			// Cross-table reference resolution was never implemented
			// upstream; keep the null-plus-warning contract.
			slog.Warn("Reference source is not supported, emitting null",
				logfields.Group(ctx.Group),
				slog.String("field", instr.Out),
				slog.String("reference", instr.Source))
			doc[instr.Out] = nil

		case instr.IsSelection():
			sub, ok := selectFields(row, instr.Source, instr.Fields)
			if !ok {
				slog.Debug("Selection source missing, field omitted",
					logfields.Group(ctx.Group),
					slog.String("field", instr.Out))
				continue
			}
			doc[instr.Out] = sub

		default:
			value, ok := fieldpath.Get(row, instr.Source)
			if !ok {
				slog.Debug("Source missing, field omitted",
					logfields.Group(ctx.Group),
					slog.String("field", instr.Out),
					slog.String("source", instr.Source))
				continue
			}
			doc[instr.Out] = value
		}
	}
	return doc
}

// selectFields resolves a sub-object and keeps only the listed keys.
func selectFields(row map[string]any, source string, fields []string) (map[string]any, bool) {
	value, ok := fieldpath.Get(row, source)
	if !ok {
		return nil, false
	}
	if s, isStr := value.(string); isStr && fieldpath.LooksStructured(s) {
		parsed, ok := fieldpath.ParseLoose(s)
		if !ok {
			return nil, false
		}
		value = parsed
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out, true
}

// entityID extracts the row's id using the implicit {group}_id column.
func entityID(row map[string]any, group string) (string, bool) {
	v, ok := row[group+"_id"]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}
