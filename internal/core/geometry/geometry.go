// Package geometry maps extracted-text records onto renderer-addressable
// rectangles. All coordinates are pixel offsets in the rendering engine's
// top-left-origin space.
package geometry

import (
	"errors"
	"fmt"

	"github.com/pagemark/pagemark/internal/core/document"
)

// ErrInvalidGeometry is returned for degenerate inputs: zero or negative
// extents, or an out-of-range page number. Callers drop the rectangle and
// never render it.
var ErrInvalidGeometry = errors.New("invalid geometry")

// HighlightRect is a renderer-addressable rectangle. Derived from a chunk or
// a search match, never hand-authored.
type HighlightRect struct {
	PageNumber int
	Left       float64
	Top        float64
	Width      float64
	Height     float64
}

// PageGeometry describes one page's extent at its native rendering scale.
type PageGeometry struct {
	PageNumber int     `json:"page_number"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// ChunkRect converts a text chunk's bounding box to a highlight rectangle.
//
// The extractor reports px_bottom as the bottom edge of the box measured
// downward from the page top (pymupdf's textpage convention), so the top
// edge is px_bottom minus the box height.
func ChunkRect(chunk document.TextChunk) (HighlightRect, error) {
	if chunk.PageNumber < 1 {
		return HighlightRect{}, fmt.Errorf("%w: page %d", ErrInvalidGeometry, chunk.PageNumber)
	}
	if chunk.Width <= 0 || chunk.Height <= 0 {
		return HighlightRect{}, fmt.Errorf("%w: %gx%g box", ErrInvalidGeometry, chunk.Width, chunk.Height)
	}

	top := chunk.PxBottom - chunk.Height
	if top < 0 {
		top = 0
	}

	return HighlightRect{
		PageNumber: chunk.PageNumber,
		Left:       chunk.PxLeft,
		Top:        top,
		Width:      chunk.Width,
		Height:     chunk.Height,
	}, nil
}
