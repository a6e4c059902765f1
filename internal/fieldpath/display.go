package fieldpath

// DisplayField describes where a human-readable value for a row comes from:
// a dotted source path, an optional top-level fallback key, and an optional
// type coercion.
type DisplayField struct {
	Source   string `yaml:"source"`
	Fallback string `yaml:"fallback,omitempty"`
	Type     string `yaml:"type,omitempty"` // "", "json_array", "number"
}

// ExtractDisplay resolves a display field against a row: the source path is
// tried first, then the fallback as a top-level key. The json_array type
// additionally tolerates single-quoted pseudo-JSON in the resolved value.
func ExtractDisplay(row map[string]any, field DisplayField) (any, bool) {
	value, ok := Get(row, field.Source)
	if !ok && field.Fallback != "" {
		value, ok = Get(row, field.Fallback)
	}
	if !ok {
		return nil, false
	}

	switch field.Type {
	case "json_array":
		arr, ok := AsSlice(value)
		if !ok {
			return nil, false
		}
		return arr, true
	case "number":
		n, ok := AsNumber(value)
		if !ok {
			return nil, false
		}
		return n, true
	default:
		return value, true
	}
}
