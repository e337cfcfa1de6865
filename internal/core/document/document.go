// Package document defines the extracted-text data model shared by the
// transcript store, the coordinate normalizer, and the extraction client.
package document

import "fmt"

// Granularity selects the extraction unit size. Granularities are mutually
// exclusive per request; the chunk set for a loaded document is produced at
// exactly one of them.
type Granularity string

// Supported extraction granularities, smallest to largest.
const (
	BySpans  Granularity = "spans"
	ByLines  Granularity = "lines"
	ByBlocks Granularity = "blocks"
)

// DefaultGranularity is used when the caller does not choose one.
const DefaultGranularity = ByBlocks

// IsValid reports whether g is a recognized granularity.
func (g Granularity) IsValid() bool {
	switch g {
	case BySpans, ByLines, ByBlocks:
		return true
	default:
		return false
	}
}

// TextChunk is one segment of extracted text with its page-relative bounding
// box at the page's native rendering scale. PxBottom is the bottom edge of
// the box measured downward from the page top, as reported by the extractor.
type TextChunk struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	PxLeft     float64 `json:"px_left"`
	PxBottom   float64 `json:"px_bottom"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// ChunkID identifies a transcript entry by page and ordinal position within
// the loaded chunk sequence. It is the selection identity for transcript
// clicks.
type ChunkID struct {
	Page    int
	Ordinal int
}

func (id ChunkID) String() string {
	return fmt.Sprintf("chunk:%d/%d", id.Page, id.Ordinal)
}
