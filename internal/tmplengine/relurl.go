package tmplengine

import "strings"

// RelativeURL rewrites a root-relative URL into a ../-prefixed relative URL
// based on the page's depth below the export root. Absolute URLs, anchors
// and scheme-qualified URLs pass through unchanged, as do already-relative
// paths.
func RelativeURL(url string, depth int) string {
	if url == "" {
		return url
	}
	if strings.HasPrefix(url, "#") || strings.Contains(url, "://") || strings.HasPrefix(url, "mailto:") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		return url
	}
	trimmed := strings.TrimPrefix(url, "/")
	if depth <= 0 {
		if trimmed == "" {
			return "."
		}
		return trimmed
	}
	return strings.Repeat("../", depth) + trimmed
}
