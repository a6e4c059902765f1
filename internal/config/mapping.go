package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MappingSpec is an ordered list of field instructions used to reshape one
// row into one output document. The same spec drives detail and index
// documents.
type MappingSpec []MappingInstruction

// MappingInstruction is one field of the mapping DSL. Exactly one of the
// following shapes applies:
//
//   - "field"                 identity copy
//   - "out: source"           rename (dotted source path allowed)
//   - out: {generator: ...}   named generator invocation
//   - out: {source: ..., fields: [...]}  sub-object selection
//   - out: {source: <reference alias>}   unsupported, mapper emits null
type MappingInstruction struct {
	Out       string
	Source    string
	Generator string
	Params    map[string]any
	Fields    []string
}

// IsGenerator reports whether the instruction invokes a named generator.
func (m MappingInstruction) IsGenerator() bool { return m.Generator != "" }

// IsSelection reports whether the instruction selects listed keys of a
// sub-object.
func (m MappingInstruction) IsSelection() bool { return m.Generator == "" && len(m.Fields) > 0 }

// UnmarshalYAML accepts the scalar and single-key-mapping instruction forms.
func (m *MappingInstruction) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if out, source, found := strings.Cut(s, ":"); found {
			m.Out = strings.TrimSpace(out)
			m.Source = strings.TrimSpace(source)
		} else {
			m.Out = s
			m.Source = s
		}
		return nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("mapping instruction must have exactly one output field (line %d)", node.Line)
		}
		m.Out = node.Content[0].Value
		value := node.Content[1]

		if value.Kind == yaml.ScalarNode {
			return value.Decode(&m.Source)
		}

		var body struct {
			Generator string         `yaml:"generator"`
			Params    map[string]any `yaml:"params"`
			Source    string         `yaml:"source"`
			Fields    []string       `yaml:"fields"`
		}
		if err := value.Decode(&body); err != nil {
			return err
		}
		m.Generator = body.Generator
		m.Params = body.Params
		m.Source = body.Source
		m.Fields = body.Fields
		return nil

	default:
		return fmt.Errorf("mapping instruction must be a string or a mapping (line %d)", node.Line)
	}
}

// MarshalYAML renders the canonical single-key form.
func (m MappingInstruction) MarshalYAML() (any, error) {
	if m.Generator == "" && len(m.Fields) == 0 {
		if m.Out == m.Source {
			return m.Out, nil
		}
		return map[string]string{m.Out: m.Source}, nil
	}
	body := map[string]any{}
	if m.Generator != "" {
		body["generator"] = m.Generator
		if len(m.Params) > 0 {
			body["params"] = m.Params
		}
	} else {
		body["source"] = m.Source
		body["fields"] = m.Fields
	}
	return map[string]any{m.Out: body}, nil
}
