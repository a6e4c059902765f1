// Package config loads and validates the export target configuration.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
)

// Exporter kinds supported by the orchestrator.
const (
	ExporterHTML    = "html"
	ExporterJSONAPI = "json_api"
)

// Config is the top-level configuration: one database, many export targets.
type Config struct {
	Database string   `yaml:"database"`
	Targets  []Target `yaml:"targets"`
}

// Target is one named export job.
type Target struct {
	Name         string       `yaml:"name"`
	Exporter     string       `yaml:"exporter,omitempty"` // html (default) or json_api
	Output       string       `yaml:"output"`
	TemplateRoot string       `yaml:"template_root,omitempty"`
	Site         SiteMeta     `yaml:"site,omitempty"`
	CopyAssets   []string     `yaml:"copy_assets,omitempty"`
	StaticPages  []StaticPage `yaml:"static_pages,omitempty"`
	Groups       []Group      `yaml:"groups,omitempty"`
	Options      Options      `yaml:"options,omitempty"`
}

// SiteMeta carries site-wide metadata handed to every page template.
type SiteMeta struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Lang        string `yaml:"lang,omitempty"`
}

// Options holds exporter-specific behavior switches.
type Options struct {
	// ContinueOnError keeps a json_api run going past data-class errors,
	// accumulating them in the error ledger instead of aborting.
	ContinueOnError bool `yaml:"continue_on_error,omitempty"`
	// APIBaseURL is the endpoint prefix used by the endpoint_url generator.
	APIBaseURL string `yaml:"api_base_url,omitempty"`
	// IDPrefix namespaces identifiers built by the unique_id generator.
	IDPrefix string `yaml:"id_prefix,omitempty"`
}

// StaticPage is a standalone page outside any group.
type StaticPage struct {
	Name     string         `yaml:"name"`
	Output   string         `yaml:"output"`
	Template string         `yaml:"template,omitempty"`
	Content  *ContentSource `yaml:"content,omitempty"`
}

// ContentSource describes where a static page's body comes from.
type ContentSource struct {
	Source string `yaml:"source"` // inline, file or markdown
	Text   string `yaml:"text,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// Group identifies one entity collection: a table, its templates, output
// patterns and widget list. The entity id column is implicitly
// "{group_by}_id".
type Group struct {
	GroupBy        string       `yaml:"group_by"`
	DetailTemplate string       `yaml:"detail_template,omitempty"`
	DetailOutput   string       `yaml:"detail_output,omitempty"`
	IndexTemplate  string       `yaml:"index_template,omitempty"`
	IndexOutput    string       `yaml:"index_output,omitempty"`
	Index          *IndexConfig `yaml:"index,omitempty"`
	Mapping        MappingSpec  `yaml:"mapping,omitempty"`
	Widgets        []WidgetRef  `yaml:"widgets,omitempty"`
	// References lists cross-table aliases the mapping DSL may name.
	// Resolution of these is not implemented; the mapper emits null.
	References []string `yaml:"references,omitempty"`
}

// IDColumn returns the entity id column implied by the group key.
func (g Group) IDColumn() string {
	return g.GroupBy + "_id"
}

// WidgetRef is one widget slot in a group's detail page: plugin name, the
// dotted data source path on the row, and a raw parameter bag validated by
// the plugin itself at render time.
type WidgetRef struct {
	Plugin     string         `yaml:"plugin"`
	DataSource string         `yaml:"data_source,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
}

// IndexConfig configures the primary index strategy: declarative filters
// plus projected display fields.
type IndexConfig struct {
	Fields  []IndexField `yaml:"fields,omitempty"`
	Filters []Filter     `yaml:"filters,omitempty"`
}

// IndexField is one projected column of an index artifact.
type IndexField struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source,omitempty"`
	Fallback string `yaml:"fallback,omitempty"`
	Type     string `yaml:"type,omitempty"`
}

// Display converts the field into the evaluator's display spec. An empty
// source falls back to the output name.
func (f IndexField) Display() fieldpath.DisplayField {
	source := f.Source
	if source == "" {
		source = f.Name
	}
	return fieldpath.DisplayField{Source: source, Fallback: f.Fallback, Type: f.Type}
}

// Filter keeps an index row only when the named field matches.
type Filter struct {
	Field    string   `yaml:"field"`
	Operator string   `yaml:"operator"` // equals or in
	Values   []string `yaml:"values"`
}

// Load reads, expands and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// Best effort .env load so ${VAR} expansion sees local overrides.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Exporter == "" {
			t.Exporter = ExporterHTML
		}
		for j := range t.Groups {
			g := &t.Groups[j]
			if g.DetailOutput == "" {
				if t.Exporter == ExporterJSONAPI {
					g.DetailOutput = "{id}.json"
				} else {
					g.DetailOutput = "{id}.html"
				}
			}
			if g.IndexOutput == "" {
				if t.Exporter == ExporterJSONAPI {
					g.IndexOutput = "all.json"
				} else {
					g.IndexOutput = "index.html"
				}
			}
		}
	}
}

// TargetByName returns the named target, or nil when absent.
func (c *Config) TargetByName(name string) *Target {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i]
		}
	}
	return nil
}

// GroupByName returns the group with the given group key, or nil.
func (t *Target) GroupByName(name string) *Group {
	for i := range t.Groups {
		if t.Groups[i].GroupBy == name {
			return &t.Groups[i]
		}
	}
	return nil
}
