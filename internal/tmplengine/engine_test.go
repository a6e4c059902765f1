package tmplengine

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/databuilder/internal/config"
)

func TestRelativeURL(t *testing.T) {
	cases := []struct {
		url   string
		depth int
		want  string
	}{
		{"/assets/css/site.css", 0, "assets/css/site.css"},
		{"/assets/css/site.css", 1, "../assets/css/site.css"},
		{"/assets/css/site.css", 2, "../../assets/css/site.css"},
		{"https://cdn.example.org/chart.js", 3, "https://cdn.example.org/chart.js"},
		{"#section", 2, "#section"},
		{"mailto:x@example.org", 1, "mailto:x@example.org"},
		{"already/relative.html", 2, "already/relative.html"},
		{"/", 0, "."},
		{"", 4, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RelativeURL(c.url, c.depth), "url=%q depth=%d", c.url, c.depth)
	}
}

func TestRenderBuiltinDetail(t *testing.T) {
	e := New("")
	out, err := e.Render("group_detail.html", map[string]any{
		"Site":         config.SiteMeta{Title: "Flora", Lang: "en"},
		"Title":        "Araucaria columnaris",
		"Group":        "taxon",
		"Depth":        1,
		"Dependencies": []string{"/assets/js/taxon_navigation.js"},
		"WidgetOrder":  []string{"info_grid_general_info_0"},
		"Widgets": map[string]template.HTML{
			"info_grid_general_info_0": `<div class="widget">grid</div>`,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="widget">grid</div>`)
	assert.Contains(t, out, `src="../assets/js/taxon_navigation.js"`)
	assert.Contains(t, out, "Araucaria columnaris")
}

func TestUserRootOverridesBuiltin(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "group_detail.html"),
		[]byte("custom: {{ .Title }}"), 0o600))

	e := New(root)
	out, err := e.Render("group_detail.html", map[string]any{"Title": "X"})
	require.NoError(t, err)
	assert.Equal(t, "custom: X", out)
}

func TestUnknownTemplate(t *testing.T) {
	e := New("")
	_, err := e.Render("nope.html", nil)
	assert.Error(t, err)
}

func TestMarkdownHelper(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "md.html"),
		[]byte(`{{ markdown .Body }}`), 0o600))

	e := New(root)
	out, err := e.Render("md.html", map[string]any{"Body": "# Heading\n\nText."})
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Heading</h1>")
}

func TestTemplateCache(t *testing.T) {
	e := New("")
	first, err := e.Get("group_index.html")
	require.NoError(t, err)
	second, err := e.Get("group_index.html")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
