// Package tmplengine is the boundary to the HTML templating engine. The
// export pipeline only ever asks it for a named template and a rendered
// string; token substitution, inheritance and control flow stay behind
// html/template.
//
// Template names are resolved in the user template root first, then in the
// embedded builtin root, so a target can override any builtin page shell by
// dropping a file of the same name next to its config.
package tmplengine

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

//go:embed builtin/*.html
var builtinFS embed.FS

// Engine resolves and renders named templates.
type Engine struct {
	userRoot string
	funcs    template.FuncMap
	cache    map[string]*template.Template
}

// New creates an engine. userRoot may be empty, leaving only the builtins.
func New(userRoot string) *Engine {
	e := &Engine{
		userRoot: userRoot,
		cache:    make(map[string]*template.Template),
	}
	e.funcs = template.FuncMap{
		"relativeURL": RelativeURL,
		"markdown":    renderMarkdown,
		"lower":       strings.ToLower,
		"json":        marshalJSON,
		"safeHTML":    func(s string) template.HTML { return template.HTML(s) }, // #nosec G203 -- widget markup is engine-produced
	}
	return e
}

// Get returns the named template, parsing it on first use.
func (e *Engine) Get(name string) (*template.Template, error) {
	if tpl, ok := e.cache[name]; ok {
		return tpl, nil
	}

	source, err := e.read(name)
	if err != nil {
		return nil, err
	}

	tpl, err := template.New(name).Funcs(e.funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	e.cache[name] = tpl
	return tpl, nil
}

// Render resolves and executes the named template against data.
func (e *Engine) Render(name string, data any) (string, error) {
	tpl, err := e.Get(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (e *Engine) read(name string) (string, error) {
	if e.userRoot != "" {
		userPath := filepath.Join(e.userRoot, filepath.Clean(name))
		// #nosec G304 -- userPath stays under the configured template root.
		if data, err := os.ReadFile(userPath); err == nil {
			return string(data), nil
		}
	}
	data, err := builtinFS.ReadFile("builtin/" + name)
	if err != nil {
		return "", fmt.Errorf("template %s not found in user root or builtins", name)
	}
	return string(data), nil
}

// marshalJSON serializes a value for embedding into data attributes.
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal template value: %w", err)
	}
	return string(data), nil
}

// renderMarkdown converts markdown source to HTML for template bodies.
func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- goldmark output
}
