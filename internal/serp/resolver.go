package serp

import (
	"strings"

	"optimise-growth-tools/internal/urlutil"
)

// Result is one organic search result as returned by the provider.
type Result struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
}

// ResolvePosition locates the target domain in rank-ordered results and
// returns its stated rank, falling back to the 1-based index when the
// provider omits the rank field. A result matches on exact domain equality
// or as a subdomain of the target (blog.example.com matches example.com).
// Returns nil when the domain does not appear in the result window.
func ResolvePosition(results []Result, targetDomain string) *int {
	target := urlutil.NormalizeDomain(targetDomain)
	for i, r := range results {
		d := urlutil.NormalizeDomain(r.Link)
		if d == target || strings.HasSuffix(d, "."+target) {
			pos := r.Position
			if pos == 0 {
				pos = i + 1
			}
			return &pos
		}
	}
	return nil
}
