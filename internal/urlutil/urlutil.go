package urlutil

import "strings"

// NormalizeDomain reduces a URL or host to its bare registrable form for
// comparison: protocol and leading www. stripped, truncated at the first
// path/query/fragment separator, lower-cased. Malformed input is returned
// best-effort rather than rejected.
func NormalizeDomain(raw string) string {
	d := raw
	if i := prefixLen(d, "https://"); i > 0 {
		d = d[i:]
	} else if i := prefixLen(d, "http://"); i > 0 {
		d = d[i:]
	}
	if prefixLen(d, "www.") > 0 {
		d = d[4:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return strings.ToLower(d)
}

// NormalizeURL trims whitespace and prefixes https:// unless the input
// already carries an http or https scheme (kept byte-for-byte if so).
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if prefixLen(u, "https://") > 0 || prefixLen(u, "http://") > 0 {
		return u
	}
	return "https://" + u
}

// prefixLen reports len(prefix) when s starts with prefix case-insensitively,
// else 0.
func prefixLen(s, prefix string) int {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return len(prefix)
	}
	return 0
}
