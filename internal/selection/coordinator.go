// Package selection arbitrates which transcript entry or search match is
// selected and drives the rendering engine's highlight and jump primitives.
package selection

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/render"
)

// State is the coordinator's lifecycle state. It restarts on every
// user-initiated selection.
type State int

const (
	// StateIdle means nothing is selected.
	StateIdle State = iota
	// StateSelecting means a selection is resolving its geometry.
	StateSelecting
	// StateSettled means the engine has been told to highlight and jump.
	// The coordinator accepts a new selection immediately.
	StateSettled
)

// Kind distinguishes the two selectable identities.
type Kind int

const (
	KindChunk Kind = iota
	KindMatch
)

// Target identifies what the user selected: a transcript chunk by page and
// ordinal, or a search match by page and match index. At most one selection
// exists at a time; selecting one kind clears the other.
type Target struct {
	Kind       Kind
	ChunkID    document.ChunkID
	MatchPage  int
	MatchIndex int
}

// ChunkTarget builds a transcript-entry target.
func ChunkTarget(id document.ChunkID) Target {
	return Target{Kind: KindChunk, ChunkID: id}
}

// MatchTarget builds a search-match target.
func MatchTarget(page, matchIndex int) Target {
	return Target{Kind: KindMatch, MatchPage: page, MatchIndex: matchIndex}
}

// Coordinator is the single source of truth for the current selection.
// Every Select issues a new generation; a resolution settles only when it
// presents the current generation, so when two selections race the later
// one always wins and the earlier resolution is discarded.
type Coordinator struct {
	engine render.Engine
	state  State
	target Target
	hasSel bool
	gen    uint64
}

// New creates an idle coordinator driving the given engine.
func New(engine render.Engine) *Coordinator {
	return &Coordinator{engine: engine}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// Selected returns the currently selected target, if any.
func (c *Coordinator) Selected() (Target, bool) {
	return c.target, c.hasSel
}

// IsChunkSelected reports whether the given transcript entry is the current
// selection.
func (c *Coordinator) IsChunkSelected(id document.ChunkID) bool {
	return c.hasSel && c.target.Kind == KindChunk && c.target.ChunkID == id
}

// IsMatchSelected reports whether the given search match is the current
// selection.
func (c *Coordinator) IsMatchSelected(page, matchIndex int) bool {
	return c.hasSel && c.target.Kind == KindMatch &&
		c.target.MatchPage == page && c.target.MatchIndex == matchIndex
}

// Select starts a new selection and returns the generation token its
// resolution must present to Settle. Any in-flight resolution for a prior
// generation is implicitly discarded.
func (c *Coordinator) Select(target Target) uint64 {
	c.gen++
	c.state = StateSelecting
	c.target = target
	c.hasSel = true
	return c.gen
}

// Settle completes the selection carrying the given generation: the engine
// is told to paint the highlight set and then to jump to it, in that order,
// exactly once. A stale generation is dropped and Settle reports false.
// Degenerate rectangle sets are logged and dropped without settling.
func (c *Coordinator) Settle(gen uint64, rects []geometry.HighlightRect, err error) bool {
	if gen != c.gen {
		return false
	}

	if err != nil {
		if errors.Is(err, geometry.ErrInvalidGeometry) {
			log.Warn().Err(err).Msg("selection: discarding degenerate rectangle")
		} else {
			log.Warn().Err(err).Msg("selection: geometry resolution failed")
		}
		c.state = StateIdle
		c.hasSel = false
		return false
	}

	c.engine.SetHighlightRects(rects)
	c.engine.JumpToRects(rects)
	c.state = StateSettled
	return true
}

// Clear drops the selection and the painted highlights, returning to idle.
func (c *Coordinator) Clear() {
	c.gen++
	c.state = StateIdle
	c.hasSel = false
	c.engine.SetHighlightRects(nil)
}
