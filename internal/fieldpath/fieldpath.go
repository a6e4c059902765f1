// Package fieldpath implements dot-path extraction over heterogeneous row
// values (maps, arrays, serialized JSON held in strings).
//
// Rows arrive from SQLite as map[string]any where structured columns are
// frequently stored as JSON text. The evaluator never panics on shape
// mismatch: every lookup returns (value, ok) and a missing or mistyped
// segment simply yields ok=false.
//
// ParseLoose is a deliberately narrow heuristic: any string whose first
// non-space byte is '{' or '[' is offered to the JSON parser, with a second
// attempt that rewrites single quotes for pseudo-JSON written by upstream
// tooling. The heuristic is lossy by design and is confined to this package;
// callers outside the ingestion boundary only ever see parsed values.
package fieldpath

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Get walks value segment by segment along a dot-separated path.
// A plain map descends by key; a string that looks like serialized JSON is
// parsed before descending. Any mismatch returns (nil, false).
func Get(value any, path string) (any, bool) {
	if path == "" {
		return value, value != nil
	}
	current := value
	for _, segment := range strings.Split(path, ".") {
		if s, ok := current.(string); ok && LooksStructured(s) {
			parsed, ok := ParseLoose(s)
			if !ok {
				return nil, false
			}
			current = parsed
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// LooksStructured reports whether s plausibly holds a serialized JSON
// object or array. Cheap prefix check only; ParseLoose decides for real.
func LooksStructured(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// ParseLoose parses serialized JSON, tolerating single-quoted pseudo-JSON
// produced by upstream export scripts. Returns (nil, false) when neither
// strict nor loosened parsing succeeds.
func ParseLoose(s string) (any, bool) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out, true
	}
	loosened := strings.ReplaceAll(s, "'", `"`)
	if err := json.Unmarshal([]byte(loosened), &out); err == nil {
		return out, true
	}
	return nil, false
}

// AsSlice coerces v into a []any. Strings are parsed first when they look
// structured. Scalar values are not wrapped.
func AsSlice(v any) ([]any, bool) {
	if s, ok := v.(string); ok && LooksStructured(s) {
		parsed, ok := ParseLoose(s)
		if !ok {
			return nil, false
		}
		v = parsed
	}
	arr, ok := v.([]any)
	return arr, ok
}

// AsNumber coerces v into a float64. Accepts native numbers, integer types
// produced by database drivers, and numeric strings.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsRecords coerces v into a slice of records ([]map[string]any), parsing a
// serialized string form first. Used to offer stringified record arrays to
// widgets in tabular form.
func AsRecords(v any) ([]map[string]any, bool) {
	arr, ok := AsSlice(v)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		records = append(records, m)
	}
	return records, true
}
