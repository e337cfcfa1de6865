// Package transcript holds the ordered chunk sequence for the loaded
// document and the windowing logic that keeps large transcripts scrollable
// without materializing every row.
package transcript

import (
	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
)

// Overscan is the number of extra rows returned on each side of the visible
// window so scrolling does not flash empty rows.
const Overscan = 5

// Row height estimation constants, in terminal rows. The estimate only sizes
// the scroll window; it is not a rendering-fidelity value.
const (
	minRowHeight     = 1
	charsPerRow      = 48
	maxEstimatedRows = 6
)

// IndexedChunk pairs a chunk with its ordinal position in the loaded
// sequence, so windowed consumers keep stable identities.
type IndexedChunk struct {
	Index int
	Chunk document.TextChunk
}

// Store holds the immutable-per-load chunk sequence plus loading state.
// Loads are guarded by a generation token: a response commits only when it
// belongs to the most recently begun load, so an older response can never
// overwrite a newer one. Store is written and read only from the event loop.
type Store struct {
	chunks  []document.TextChunk
	pages   map[int]geometry.PageGeometry
	loading bool
	errMsg  string
	loaded  bool
	gen     uint64
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{pages: map[int]geometry.PageGeometry{}}
}

// BeginLoad marks the store loading and returns the generation token the
// eventual Commit or Fail must present.
func (s *Store) BeginLoad() uint64 {
	s.gen++
	s.loading = true
	return s.gen
}

// Commit atomically replaces the chunk set with a completed extraction
// response. A stale generation is discarded and Commit reports false.
func (s *Store) Commit(gen uint64, chunks []document.TextChunk, pages []geometry.PageGeometry) bool {
	if gen != s.gen {
		return false
	}

	s.chunks = chunks
	s.pages = make(map[int]geometry.PageGeometry, len(pages))
	for _, p := range pages {
		s.pages[p.PageNumber] = p
	}
	s.loading = false
	s.loaded = true
	s.errMsg = ""
	return true
}

// Fail records a load failure. On first load the store stays empty; after a
// successful load the prior valid chunk set is retained so the user keeps a
// browsable transcript. Stale generations are discarded.
func (s *Store) Fail(gen uint64, msg string) bool {
	if gen != s.gen {
		return false
	}

	s.loading = false
	s.errMsg = msg
	if !s.loaded {
		s.chunks = nil
		s.pages = map[int]geometry.PageGeometry{}
	}
	return true
}

// Clear drops the loaded document entirely.
func (s *Store) Clear() {
	s.gen++
	s.chunks = nil
	s.pages = map[int]geometry.PageGeometry{}
	s.loading = false
	s.loaded = false
	s.errMsg = ""
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool { return s.loading }

// Err returns the retained failure message, or "" when the last load
// succeeded.
func (s *Store) Err() string { return s.errMsg }

// Len returns the number of loaded chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Chunk returns the chunk at the given ordinal.
func (s *Store) Chunk(i int) (document.TextChunk, bool) {
	if i < 0 || i >= len(s.chunks) {
		return document.TextChunk{}, false
	}
	return s.chunks[i], true
}

// Chunks returns the full loaded sequence. Rendering paths must use Window
// instead; this accessor exists for the engine adapter, which builds its
// page layout once per load.
func (s *Store) Chunks() []document.TextChunk { return s.chunks }

// PageGeometry returns the geometry for the given page number.
func (s *Store) PageGeometry(page int) (geometry.PageGeometry, bool) {
	g, ok := s.pages[page]
	return g, ok
}

// Window returns the chunks covering the visible index range [first, last]
// plus the overscan margin on each side. Out-of-range bounds are clamped.
func (s *Store) Window(first, last int) []IndexedChunk {
	if len(s.chunks) == 0 || last < first {
		return nil
	}

	first -= Overscan
	last += Overscan
	if first < 0 {
		first = 0
	}
	if last >= len(s.chunks) {
		last = len(s.chunks) - 1
	}
	if first > last {
		return nil
	}

	out := make([]IndexedChunk, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, IndexedChunk{Index: i, Chunk: s.chunks[i]})
	}
	return out
}

// EstimateRowHeight returns the estimated rendered height of a transcript
// row in terminal rows. The estimate grows monotonically with text length,
// has a fixed minimum, and is deterministic for a given chunk so the scroll
// window does not jitter.
func EstimateRowHeight(chunk document.TextChunk) int {
	rows := minRowHeight + len(chunk.Text)/charsPerRow
	if rows > maxEstimatedRows {
		rows = maxEstimatedRows
	}
	return rows
}
