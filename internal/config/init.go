package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# databuilder export configuration
database: ./data/db.sqlite

targets:
  - name: website
    exporter: html
    output: ./exports/web
    template_root: ./templates
    site:
      title: "Flora Explorer"
      lang: en
    copy_assets:
      - ./assets
    static_pages:
      - name: home
        output: index.html
        content:
          source: markdown
          text: |
            # Flora Explorer

            Browse taxa, plots and shapes.
    groups:
      - group_by: taxon
        detail_output: "taxon/{id}.html"
        index_output: "taxon/index.html"
        index:
          fields:
            - name: name
              source: general_info.name.value
              fallback: full_name
          filters: []
        widgets:
          - plugin: info_grid
            data_source: general_info
          - plugin: bar_chart
            data_source: distribution
            params:
              title: "Distribution"
          - plugin: hierarchical_nav
            params:
              id_field: taxon_id
              name_field: full_name
              parent_field: parent_id

  - name: api
    exporter: json_api
    output: ./exports/api
    options:
      continue_on_error: true
      api_base_url: "https://example.org/api"
      id_prefix: "flora"
    groups:
      - group_by: taxon
        detail_output: "taxon/{id}.json"
        index_output: "taxon/all.json"
        mapping:
          - id: taxon_id
          - full_name
          - epithet:
              generator: extract_specific_epithet
              params:
                source_field: full_name
          - endpoint:
              generator: endpoint_url
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}
