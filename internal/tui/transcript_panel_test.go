package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/transcript"
)

func loadedStore(t *testing.T, n int) *transcript.Store {
	t.Helper()

	store := transcript.NewStore()
	chunks := make([]document.TextChunk, 0, n)
	for i := range n {
		chunks = append(chunks, document.TextChunk{
			PageNumber: i/5 + 1,
			Text:       fmt.Sprintf("entry %d", i),
			PxLeft:     10,
			PxBottom:   20,
			Width:      50,
			Height:     12,
		})
	}

	gen := store.BeginLoad()
	require.True(t, store.Commit(gen, chunks, []geometry.PageGeometry{
		{PageNumber: 1, Width: 612, Height: 792},
	}))
	return store
}

func TestTranscriptPanel_cursor_movement_clamps(t *testing.T) {
	p := NewTranscriptPanel(loadedStore(t, 3))
	p.SetSize(40, 20)

	p.MoveUp()
	assert.Equal(t, 0, p.Cursor())

	p.MoveDown()
	p.MoveDown()
	p.MoveDown()
	p.MoveDown()
	assert.Equal(t, 2, p.Cursor())
}

func TestTranscriptPanel_selected_id_tracks_cursor(t *testing.T) {
	p := NewTranscriptPanel(loadedStore(t, 10))
	p.SetSize(40, 20)

	for range 6 {
		p.MoveDown()
	}

	id, ok := p.SelectedID()
	require.True(t, ok)
	assert.Equal(t, document.ChunkID{Page: 2, Ordinal: 6}, id)
}

func TestTranscriptPanel_selected_id_empty_store(t *testing.T) {
	p := NewTranscriptPanel(transcript.NewStore())

	_, ok := p.SelectedID()
	assert.False(t, ok)
}

func TestTranscriptPanel_scrolls_to_keep_cursor_visible(t *testing.T) {
	p := NewTranscriptPanel(loadedStore(t, 30))
	p.SetSize(40, 5)

	for range 20 {
		p.MoveDown()
	}

	first, last := p.visibleRange()
	assert.GreaterOrEqual(t, p.Cursor(), first)
	assert.LessOrEqual(t, p.Cursor(), last)

	// Scrolling back up pulls the window with the cursor.
	for range 20 {
		p.MoveUp()
	}
	assert.Equal(t, 0, p.Cursor())
	first, _ = p.visibleRange()
	assert.Equal(t, 0, first)
}

func TestTranscriptPanel_reset(t *testing.T) {
	p := NewTranscriptPanel(loadedStore(t, 30))
	p.SetSize(40, 5)
	for range 20 {
		p.MoveDown()
	}

	p.Reset()

	assert.Equal(t, 0, p.Cursor())
	first, _ := p.visibleRange()
	assert.Equal(t, 0, first)
}

func TestTranscriptPanel_view(t *testing.T) {
	notSelected := func(document.ChunkID) bool { return false }

	t.Run("empty store", func(t *testing.T) {
		p := NewTranscriptPanel(transcript.NewStore())
		p.SetSize(40, 10)

		assert.Contains(t, p.View(true, notSelected), "No transcript loaded")
	})

	t.Run("loading store", func(t *testing.T) {
		store := transcript.NewStore()
		store.BeginLoad()
		p := NewTranscriptPanel(store)
		p.SetSize(40, 10)

		assert.Contains(t, p.View(true, notSelected), "Extracting")
	})

	t.Run("failed first load shows the backend message", func(t *testing.T) {
		store := transcript.NewStore()
		gen := store.BeginLoad()
		store.Fail(gen, "Could not fetch the PDF")
		p := NewTranscriptPanel(store)
		p.SetSize(40, 10)

		view := p.View(true, notSelected)
		assert.Contains(t, view, "Extraction failed")
		assert.Contains(t, view, "Could not fetch the PDF")
	})

	t.Run("loaded store renders visible rows only", func(t *testing.T) {
		p := NewTranscriptPanel(loadedStore(t, 30))
		p.SetSize(40, 5)

		view := p.View(true, notSelected)
		assert.Contains(t, view, "entry 0")
		assert.NotContains(t, view, "entry 20")
	})

	t.Run("rows are tagged with their page", func(t *testing.T) {
		p := NewTranscriptPanel(loadedStore(t, 3))
		p.SetSize(40, 10)

		assert.Contains(t, p.View(true, notSelected), "p1")
	})
}

func TestWrapToWidth(t *testing.T) {
	lines := wrapToWidth("the quick brown fox jumps", 10)

	assert.Equal(t, []string{"the quick", "brown fox", "jumps"}, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 10)
	}

	assert.Equal(t, []string{""}, wrapToWidth("   ", 10))
	assert.NotContains(t, strings.Join(wrapToWidth("single", 3), ""), " ")
}
