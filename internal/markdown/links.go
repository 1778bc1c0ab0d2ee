package markdown

import "strings"

// hasScheme reports whether href starts with a URL scheme, i.e. a letter
// followed by letters, digits, "+", "-" or "." up to a ":" that appears
// before any "/". Such references (http:, mailto:, data:, custom protocols)
// are external and never rewritten.
func hasScheme(href string) bool {
	for i := 0; i < len(href); i++ {
		c := href[i]
		switch {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}

// RewriteURL rewrites a relative reference found in a document body into a
// site-absolute URL. baseURL is the referencing page's site path without a
// trailing slash.
//
// External URLs, bare fragments, and already-absolute paths pass through
// unchanged. A query string or fragment is split off and reattached verbatim
// after the path portion is rewritten. Leading `../` segments drop trailing
// base segments, clamped at the root. Rewriting never fails; malformed input
// degrades to a best-effort joined path.
func RewriteURL(href, baseURL string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return href
	}
	if hasScheme(href) {
		return href
	}

	path, suffix := splitSuffix(href)
	if path == "" {
		// Pure query/fragment reference.
		return href
	}
	if strings.HasPrefix(path, "/") {
		return href
	}

	levelsUp := 0
	for strings.HasPrefix(path, "../") {
		levelsUp++
		path = path[len("../"):]
	}

	baseSegs := splitSegments(baseURL)
	if levelsUp > 0 {
		keep := len(baseSegs) - levelsUp
		if keep < 0 {
			// Traversing above the root collapses to the root.
			keep = 0
		}
		baseSegs = baseSegs[:keep]
	}

	segs := append(baseSegs, splitSegments(path)...)
	prefix := ""
	if strings.HasPrefix(baseURL, "/") {
		prefix = "/"
	}
	return prefix + strings.Join(segs, "/") + suffix
}

// splitSuffix separates the path portion from the first `?` or `#` onward.
func splitSuffix(href string) (path, suffix string) {
	idx := strings.IndexAny(href, "?#")
	if idx < 0 {
		return href, ""
	}
	return href[:idx], href[idx:]
}

// splitSegments splits a path into its non-empty segments, normalizing
// duplicate and leading/trailing slashes away.
func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}
