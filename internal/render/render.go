// Package render defines the port to the document-rendering engine. The
// coordination layer only ever talks to this interface; the text pager in
// the textpager subpackage is the built-in adapter.
package render

import "github.com/pagemark/pagemark/internal/core/geometry"

// Tier classifies a search match.
type Tier string

const (
	TierExact Tier = "exact"
	TierFuzzy Tier = "fuzzy"
)

// SearchMatch is one search hit. MatchIndex is the ordinal position of this
// match within its page's text and disambiguates repeated substrings.
type SearchMatch struct {
	PageNumber int
	Text       string
	MatchIndex int
	Tier       Tier
}

// SearchResultSet holds one page of tiered results. Exact matches always
// precede fuzzy matches when displayed; intra-tier order is whatever the
// engine returned. HasMore is set when matches exist beyond the requested
// limit.
type SearchResultSet struct {
	Exact   []SearchMatch
	Fuzzy   []SearchMatch
	HasMore bool
}

// Empty reports whether both tiers are empty.
func (s SearchResultSet) Empty() bool {
	return len(s.Exact) == 0 && len(s.Fuzzy) == 0
}

// Len returns the total number of matches across both tiers.
func (s SearchResultSet) Len() int {
	return len(s.Exact) + len(s.Fuzzy)
}

// Engine is the rendering-engine contract the coordination layer consumes.
// Implementations are driven exclusively from the event loop.
type Engine interface {
	// PageGeometry returns the layout extent of the given page.
	PageGeometry(page int) (geometry.PageGeometry, error)

	// SetHighlightRects replaces the painted highlight set.
	SetHighlightRects(rects []geometry.HighlightRect)

	// JumpToRects scrolls the view to the given rectangles, in pixel space.
	JumpToRects(rects []geometry.HighlightRect)

	// Search returns up to limit tiered matches for the query.
	Search(query string, limit int) (SearchResultSet, error)

	// MatchRects resolves one match to its on-page rectangles. Resolution
	// consults live page layout and is comparatively expensive, so callers
	// resolve lazily, per user interaction. The tier selects the ordinal
	// space matchIndex belongs to: query occurrences for exact matches,
	// identical-text chunks for fuzzy ones.
	MatchRects(page int, tier Tier, matchText string, matchIndex int, query string) ([]geometry.HighlightRect, error)
}
