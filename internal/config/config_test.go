package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database: ./db.sqlite
targets:
  - name: web
    output: ./out
    groups:
      - group_by: taxon
  - name: api
    exporter: json_api
    output: ./api
    groups:
      - group_by: plot
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	web := cfg.TargetByName("web")
	require.NotNil(t, web)
	assert.Equal(t, ExporterHTML, web.Exporter)
	assert.Equal(t, "{id}.html", web.Groups[0].DetailOutput)
	assert.Equal(t, "index.html", web.Groups[0].IndexOutput)

	api := cfg.TargetByName("api")
	require.NotNil(t, api)
	assert.Equal(t, "{id}.json", api.Groups[0].DetailOutput)
	assert.Equal(t, "all.json", api.Groups[0].IndexOutput)

	assert.Nil(t, cfg.TargetByName("missing"))
	assert.Equal(t, "plot_id", api.Groups[0].IDColumn())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("EXPORT_ROOT", "/tmp/flora")
	path := writeConfig(t, `
database: ./db.sqlite
targets:
  - name: web
    output: ${EXPORT_ROOT}/web
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flora/web", cfg.Targets[0].Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateFindings(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no database", "targets: [{name: a, output: ./x}]"},
		{"no targets", "database: ./db.sqlite"},
		{"unnamed target", "database: ./db.sqlite\ntargets: [{output: ./x}]"},
		{"duplicate target", "database: ./db.sqlite\ntargets: [{name: a, output: ./x}, {name: a, output: ./y}]"},
		{"unknown exporter", "database: ./db.sqlite\ntargets: [{name: a, exporter: csv, output: ./x}]"},
		{"no output", "database: ./db.sqlite\ntargets: [{name: a}]"},
		{"group without key", "database: ./db.sqlite\ntargets: [{name: a, output: ./x, groups: [{detail_output: '{id}.html'}]}]"},
		{"widget without plugin", "database: ./db.sqlite\ntargets: [{name: a, output: ./x, groups: [{group_by: t, widgets: [{data_source: d}]}]}]"},
		{"bad filter operator", "database: ./db.sqlite\ntargets: [{name: a, output: ./x, groups: [{group_by: t, index: {filters: [{field: f, operator: gt, values: ['1']}]}}]}]"},
		{"static page without output", "database: ./db.sqlite\ntargets: [{name: a, output: ./x, static_pages: [{name: p, template: t.html}]}]"},
		{"static page bad source", "database: ./db.sqlite\ntargets: [{name: a, output: ./x, static_pages: [{name: p, output: p.html, content: {source: rst, text: x}}]}]"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, c.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, Init(path, false))

	// The generated example must itself load and validate.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Targets, 2)

	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))
}
