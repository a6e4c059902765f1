package mapper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/databuilder/internal/fieldpath"
)

// GeneratorFunc is a named pure function computing a derived output field
// from a row. Generators must not mutate the row.
type GeneratorFunc func(row map[string]any, params map[string]any, ctx Context) (any, error)

// The registry is fixed at startup; the DSL can only name what is here.
var generators = map[string]GeneratorFunc{
	"endpoint_url":             generateEndpointURL,
	"unique_id":                generateUniqueID,
	"extract_specific_epithet": generateSpecificEpithet,
	"media_urls":               generateMediaURLs,
}

// Lookup resolves a generator by name.
func Lookup(name string) (GeneratorFunc, bool) {
	gen, ok := generators[name]
	return gen, ok
}

// GeneratorNames lists the registered generator names, for diagnostics.
func GeneratorNames() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	return names
}

func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// generateEndpointURL builds the API endpoint URL for the row's entity:
// {base_url}/{group}/{id}.json.
func generateEndpointURL(row map[string]any, params map[string]any, ctx Context) (any, error) {
	base := paramString(params, "base_url", ctx.APIBaseURL)
	if base == "" {
		return nil, fmt.Errorf("endpoint_url: no base_url configured")
	}
	id, ok := entityID(row, ctx.Group)
	if !ok {
		return nil, fmt.Errorf("endpoint_url: row has no %s_id", ctx.Group)
	}
	return fmt.Sprintf("%s/%s/%s.json", strings.TrimRight(base, "/"), ctx.Group, id), nil
}

// generateUniqueID builds a prefixed stable identifier {prefix}_{group}_{id}.
// Rows without an id column get a random UUID so the document still carries
// a usable identifier.
func generateUniqueID(row map[string]any, params map[string]any, ctx Context) (any, error) {
	prefix := paramString(params, "prefix", ctx.IDPrefix)
	id, ok := entityID(row, ctx.Group)
	if !ok {
		id = uuid.NewString()
	}
	if prefix == "" {
		return fmt.Sprintf("%s_%s", ctx.Group, id), nil
	}
	return fmt.Sprintf("%s_%s_%s", prefix, ctx.Group, id), nil
}

// generateSpecificEpithet extracts the second whitespace-delimited token of
// a binomial name: "Araucaria columnaris" -> "columnaris".
func generateSpecificEpithet(row map[string]any, params map[string]any, _ Context) (any, error) {
	source := paramString(params, "source_field", "full_name")
	value, ok := fieldpath.Get(row, source)
	if !ok {
		return nil, fmt.Errorf("extract_specific_epithet: field %q missing", source)
	}
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("extract_specific_epithet: field %q is not a string", source)
	}
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("extract_specific_epithet: %q is not a binomial", name)
	}
	return tokens[1], nil
}

// generateMediaURLs collects media URLs from a serialized record list,
// e.g. an images column of [{"url": ...}, ...].
func generateMediaURLs(row map[string]any, params map[string]any, _ Context) (any, error) {
	source := paramString(params, "source_field", "images")
	urlField := paramString(params, "url_field", "url")

	value, ok := fieldpath.Get(row, source)
	if !ok {
		// An absent media column means no media, not a failure.
		return []string{}, nil
	}
	records, ok := fieldpath.AsRecords(value)
	if !ok {
		return nil, fmt.Errorf("media_urls: field %q is not a record list", source)
	}

	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if u, ok := rec[urlField].(string); ok && u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
