// Package staticpage renders the standalone pages of a target: content from
// inline text, a file, or markdown, injected into a page template.
package staticpage

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/pathtpl"
	"git.home.luguber.info/inful/databuilder/internal/tmplengine"
)

// Render produces the HTML for one static page.
func Render(engine *tmplengine.Engine, page config.StaticPage, site config.SiteMeta) (string, error) {
	content, err := resolveContent(page.Content)
	if err != nil {
		return "", fmt.Errorf("static page %s: %w", page.Name, err)
	}

	templateName := page.Template
	if templateName == "" {
		templateName = "static_page.html"
	}

	return engine.Render(templateName, map[string]any{
		"Site":    site,
		"Title":   pageTitle(page.Name),
		"Name":    page.Name,
		"Depth":   pathtpl.Depth(page.Output),
		"Content": content,
	})
}

// resolveContent turns a content source into embeddable HTML. A nil source
// yields empty content (the template carries the whole page).
func resolveContent(src *config.ContentSource) (template.HTML, error) {
	if src == nil {
		return "", nil
	}

	text := src.Text
	if text == "" && src.Path != "" {
		// #nosec G304 -- path comes from the target configuration.
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		text = string(data)
	}

	switch src.Source {
	case "markdown":
		return renderMarkdown(text)
	case "file":
		if strings.HasSuffix(src.Path, ".md") {
			return renderMarkdown(text)
		}
		return template.HTML(text), nil // #nosec G203 -- config-authored content
	case "inline":
		return template.HTML(text), nil // #nosec G203 -- config-authored content
	default:
		return "", fmt.Errorf("unknown content source %q", src.Source)
	}
}

// pageTitle turns a page slug into a presentable title: "about_us" -> "About us".
func pageTitle(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- goldmark output
}
