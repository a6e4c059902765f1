package config

import (
	"fmt"

	"git.home.luguber.info/inful/databuilder/internal/errors"
)

// Validate checks the configuration for configuration-class mistakes.
// All findings are fatal: a broken target never starts exporting.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.ValidationError("database path is required")
	}
	if len(c.Targets) == 0 {
		return errors.ValidationError("at least one target is required")
	}

	seen := map[string]bool{}
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Name == "" {
			return errors.ValidationError(fmt.Sprintf("target #%d has no name", i+1))
		}
		if seen[t.Name] {
			return errors.ValidationError(fmt.Sprintf("duplicate target name %q", t.Name))
		}
		seen[t.Name] = true

		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Target) validate() error {
	if t.Exporter != ExporterHTML && t.Exporter != ExporterJSONAPI {
		return errors.ValidationError(fmt.Sprintf("target %q: unknown exporter %q", t.Name, t.Exporter))
	}
	if t.Output == "" {
		return errors.ValidationError(fmt.Sprintf("target %q: output root is required", t.Name))
	}

	for _, p := range t.StaticPages {
		if p.Output == "" {
			return errors.ValidationError(fmt.Sprintf("target %q: static page %q has no output", t.Name, p.Name))
		}
		if p.Template == "" && p.Content == nil {
			return errors.ValidationError(fmt.Sprintf("target %q: static page %q needs a template or content", t.Name, p.Name))
		}
		if p.Content != nil {
			switch p.Content.Source {
			case "inline", "markdown":
				if p.Content.Text == "" && p.Content.Path == "" {
					return errors.ValidationError(fmt.Sprintf("target %q: static page %q content needs text or path", t.Name, p.Name))
				}
			case "file":
				if p.Content.Path == "" {
					return errors.ValidationError(fmt.Sprintf("target %q: static page %q file content needs a path", t.Name, p.Name))
				}
			default:
				return errors.ValidationError(fmt.Sprintf("target %q: static page %q has unknown content source %q", t.Name, p.Name, p.Content.Source))
			}
		}
	}

	for _, g := range t.Groups {
		if g.GroupBy == "" {
			return errors.ValidationError(fmt.Sprintf("target %q: group without group_by", t.Name))
		}
		for _, w := range g.Widgets {
			if w.Plugin == "" {
				return errors.ValidationError(fmt.Sprintf("target %q: group %q has a widget without a plugin name", t.Name, g.GroupBy))
			}
		}
		if g.Index != nil {
			for _, f := range g.Index.Filters {
				if f.Field == "" {
					return errors.ValidationError(fmt.Sprintf("target %q: group %q has a filter without a field", t.Name, g.GroupBy))
				}
				if f.Operator != "equals" && f.Operator != "in" {
					return errors.ValidationError(fmt.Sprintf("target %q: group %q filter on %q has unknown operator %q", t.Name, g.GroupBy, f.Field, f.Operator))
				}
			}
		}
	}
	return nil
}
