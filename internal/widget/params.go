package widget

import (
	"fmt"

	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
)

// ParamSchema declares the parameters a widget accepts. Validation of the
// raw bag happens at dispatch time; widgets only ever see validated Params.
type ParamSchema struct {
	Fields []ParamField
}

// ParamField is one declared parameter.
type ParamField struct {
	Name     string
	Type     ParamType
	Required bool
	Default  any
}

// ParamType constrains a parameter value.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
	ParamBool   ParamType = "bool"
	ParamList   ParamType = "list"
)

// Params is a validated parameter bag.
type Params map[string]any

// String returns a string parameter or fallback.
func (p Params) String(key, fallback string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Number returns a numeric parameter or fallback.
func (p Params) Number(key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		if n, ok := fieldpath.AsNumber(v); ok {
			return n
		}
	}
	return fallback
}

// Bool returns a boolean parameter or fallback.
func (p Params) Bool(key string, fallback bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return fallback
}

// Strings returns a list parameter coerced to strings.
func (p Params) Strings(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// Validate checks a raw parameter bag against the schema: unknown keys are
// allowed through untouched, declared keys are type-checked, missing
// required keys fail, and defaults fill the gaps.
func (s ParamSchema) Validate(raw map[string]any) (Params, error) {
	params := make(Params, len(raw))
	for k, v := range raw {
		params[k] = v
	}

	for _, field := range s.Fields {
		value, present := params[field.Name]
		if !present || value == nil {
			if field.Required {
				return nil, fmt.Errorf("required parameter %q is missing", field.Name)
			}
			if field.Default != nil {
				params[field.Name] = field.Default
			}
			continue
		}
		if err := checkType(field, value); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func checkType(field ParamField, value any) error {
	switch field.Type {
	case ParamString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("parameter %q must be a string", field.Name)
		}
	case ParamNumber:
		if _, ok := fieldpath.AsNumber(value); !ok {
			return fmt.Errorf("parameter %q must be a number", field.Name)
		}
	case ParamBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("parameter %q must be a boolean", field.Name)
		}
	case ParamList:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("parameter %q must be a list", field.Name)
		}
	}
	return nil
}
