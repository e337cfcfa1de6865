package textpager

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/render"
)

const snippetRadius = 30

// Search implements render.Engine. Exact matches are substring occurrences
// in document order; the fuzzy tier ranks the remaining chunks with
// sahilm/fuzzy. The limit applies across both tiers, exact filling first.
func (p *Pager) Search(query string, limit int) (render.SearchResultSet, error) {
	var set render.SearchResultSet
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return set, nil
	}

	needle := strings.ToLower(query)
	total := 0

	// Chunks with an exact occurrence are excluded from the fuzzy tier.
	exactChunks := map[int]bool{}

	for _, page := range p.pages {
		ordinal := 0
		for _, ci := range page.chunks {
			text := p.chunks[ci].chunk.Text
			lower := strings.ToLower(text)

			from := 0
			for {
				at := strings.Index(lower[from:], needle)
				if at < 0 {
					break
				}
				at += from
				exactChunks[ci] = true

				total++
				if len(set.Exact) < limit {
					set.Exact = append(set.Exact, render.SearchMatch{
						PageNumber: page.number,
						Text:       snippet(text, at, len(needle)),
						MatchIndex: ordinal,
						Tier:       render.TierExact,
					})
				}
				ordinal++
				from = at + len(needle)
			}
		}
	}

	// Fuzzy tier over chunks without an exact hit.
	var candidates []string
	var candidateIdx []int
	for _, page := range p.pages {
		for _, ci := range page.chunks {
			if exactChunks[ci] {
				continue
			}
			candidates = append(candidates, p.chunks[ci].chunk.Text)
			candidateIdx = append(candidateIdx, ci)
		}
	}

	for _, m := range fuzzy.Find(query, candidates) {
		ci := candidateIdx[m.Index]
		c := p.chunks[ci].chunk

		total++
		if set.Len() < limit {
			set.Fuzzy = append(set.Fuzzy, render.SearchMatch{
				PageNumber: c.PageNumber,
				Text:       c.Text,
				MatchIndex: p.identicalTextOrdinal(ci),
				Tier:       render.TierFuzzy,
			})
		}
	}

	set.HasMore = total > set.Len()
	return set, nil
}

// MatchRects implements render.Engine. The tier picks the ordinal space:
// an exact match resolves to a sub-rectangle of the owning chunk box,
// proportional to the character position of the matchIndex-th query
// occurrence on the page; a fuzzy match resolves to the whole box of the
// matchIndex-th chunk on the page with the match's text.
func (p *Pager) MatchRects(page int, tier render.Tier, matchText string, matchIndex int, query string) ([]geometry.HighlightRect, error) {
	pi, ok := p.pageByNum[page]
	if !ok {
		return nil, fmt.Errorf("page %d not loaded", page)
	}
	layout := p.pages[pi]

	if tier == render.TierExact {
		return p.exactRects(layout, page, matchIndex, query)
	}
	return p.fuzzyRects(layout, page, matchText, matchIndex)
}

func (p *Pager) exactRects(layout pageLayout, page, matchIndex int, query string) ([]geometry.HighlightRect, error) {
	if query == "" {
		return nil, fmt.Errorf("no match %d on page %d: empty query", matchIndex, page)
	}

	needle := strings.ToLower(query)
	seen := 0
	for _, ci := range layout.chunks {
		cl := p.chunks[ci]
		lower := strings.ToLower(cl.chunk.Text)

		from := 0
		for {
			at := strings.Index(lower[from:], needle)
			if at < 0 {
				break
			}
			at += from
			if seen == matchIndex {
				if !cl.hasRect {
					return nil, fmt.Errorf("match on page %d: %w", page, geometry.ErrInvalidGeometry)
				}
				return []geometry.HighlightRect{subRect(cl.rect, lower, at, len(needle))}, nil
			}
			seen++
			from = at + len(needle)
		}
	}

	return nil, fmt.Errorf("no occurrence %d of %q on page %d", matchIndex, query, page)
}

// fuzzyRects resolves matchText as a whole chunk's text; matchIndex counts
// chunks on the page with identical text.
func (p *Pager) fuzzyRects(layout pageLayout, page int, matchText string, matchIndex int) ([]geometry.HighlightRect, error) {
	seen := 0
	for _, ci := range layout.chunks {
		cl := p.chunks[ci]
		if !strings.EqualFold(cl.chunk.Text, matchText) {
			continue
		}
		if seen == matchIndex {
			if !cl.hasRect {
				return nil, fmt.Errorf("match on page %d: %w", page, geometry.ErrInvalidGeometry)
			}
			return []geometry.HighlightRect{cl.rect}, nil
		}
		seen++
	}

	return nil, fmt.Errorf("no match %d for %q on page %d", matchIndex, matchText, page)
}

// identicalTextOrdinal counts earlier chunks on the same page carrying the
// same text, giving fuzzy matches a stable disambiguating ordinal.
func (p *Pager) identicalTextOrdinal(ci int) int {
	c := p.chunks[ci].chunk
	pi, ok := p.pageByNum[c.PageNumber]
	if !ok {
		return 0
	}

	ordinal := 0
	for _, other := range p.pages[pi].chunks {
		if other == ci {
			break
		}
		if strings.EqualFold(p.chunks[other].chunk.Text, c.Text) {
			ordinal++
		}
	}
	return ordinal
}

// subRect narrows a chunk rectangle horizontally to the matched character
// range, assuming uniform character width within the chunk.
func subRect(rect geometry.HighlightRect, text string, at, n int) geometry.HighlightRect {
	if len(text) == 0 || n <= 0 {
		return rect
	}

	perChar := rect.Width / float64(len(text))
	out := rect
	out.Left = rect.Left + perChar*float64(at)
	out.Width = perChar * float64(n)
	return out
}

// snippet returns the matched text with surrounding context, trimmed to a
// readable window. The offsets were computed in the case-folded text, which
// for non-ASCII input can differ in byte length from the original, so both
// cut points are clamped and snapped back to rune boundaries.
func snippet(text string, at, n int) string {
	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + n + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	if start > len(text) {
		start = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	s := text[start:end]
	if start > 0 {
		s = "…" + s
	}
	if end < len(text) {
		s += "…"
	}
	return s
}
