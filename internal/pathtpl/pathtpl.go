// Package pathtpl resolves output path patterns for generated artifacts.
//
// Patterns use literal {group}/{group_by} and {id} tokens rather than
// text/template so config files stay exporter-agnostic. A pattern that does
// not mention the group is resolved under the group's own subdirectory; a
// pattern that already carries the group as a path segment (or uses the
// {group_by} token) is resolved against the export root, preventing the
// group/group/id.html duplication.
package pathtpl

import (
	"path"
	"strings"
)

// SanitizeID makes an entity id safe for use as a filename segment.
func SanitizeID(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, "\\", "_")
	return id
}

// Resolve expands pattern for one (group, id) pair and returns a path
// relative to the export root.
func Resolve(pattern, group, id string) string {
	id = SanitizeID(id)

	expanded := pattern
	expanded = strings.ReplaceAll(expanded, "{group_by}", group)
	expanded = strings.ReplaceAll(expanded, "{group}", group)
	expanded = strings.ReplaceAll(expanded, "{id}", id)
	expanded = path.Clean(strings.TrimPrefix(expanded, "/"))

	if containsSegment(pattern, group) || strings.Contains(pattern, "{group_by}") || strings.Contains(pattern, "{group}") {
		return expanded
	}
	return path.Join(group, expanded)
}

// ResolveIndex expands an index pattern for a group. Index patterns carry no
// {id} token; a missing pattern defaults to the group's index.html.
func ResolveIndex(pattern, group string) string {
	if pattern == "" {
		return path.Join(group, "index.html")
	}
	return Resolve(pattern, group, "")
}

// Depth returns the number of directory levels below the export root for a
// resolved artifact path. Used to rewrite root-relative URLs in templates.
func Depth(resolved string) int {
	resolved = strings.Trim(path.Clean(resolved), "/")
	if resolved == "" || resolved == "." {
		return 0
	}
	return strings.Count(resolved, "/")
}

// containsSegment reports whether the raw pattern already names the group as
// one of its literal path segments.
func containsSegment(pattern, group string) bool {
	for _, seg := range strings.Split(pattern, "/") {
		if seg == group {
			return true
		}
	}
	return false
}
