package textpager

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
)

func testChunks() []document.TextChunk {
	return []document.TextChunk{
		{PageNumber: 1, Text: "The quick brown fox", PxLeft: 10, PxBottom: 30, Width: 200, Height: 12},
		{PageNumber: 1, Text: "jumps over the lazy dog", PxLeft: 10, PxBottom: 50, Width: 220, Height: 12},
		{PageNumber: 2, Text: "Second page paragraph about foxes", PxLeft: 10, PxBottom: 30, Width: 300, Height: 12},
	}
}

func testPages() []geometry.PageGeometry {
	return []geometry.PageGeometry{
		{PageNumber: 1, Width: 612, Height: 792},
		{PageNumber: 2, Width: 612, Height: 792},
	}
}

func loadedPager(t *testing.T) *Pager {
	t.Helper()
	p := New()
	p.SetSize(80, 24)
	p.Load(testChunks(), testPages())
	return p
}

func TestPager_PageGeometry(t *testing.T) {
	t.Run("returns response geometry", func(t *testing.T) {
		p := loadedPager(t)

		g, err := p.PageGeometry(1)
		require.NoError(t, err)
		assert.Equal(t, 612.0, g.Width)
		assert.Equal(t, 792.0, g.Height)
	})

	t.Run("synthesizes missing geometry from chunk extents", func(t *testing.T) {
		p := New()
		p.SetSize(80, 24)
		p.Load(testChunks(), nil)

		g, err := p.PageGeometry(1)
		require.NoError(t, err)
		assert.Equal(t, 230.0, g.Width)
		assert.Equal(t, 50.0, g.Height)
	})

	t.Run("unknown page errors", func(t *testing.T) {
		p := loadedPager(t)
		_, err := p.PageGeometry(99)
		assert.Error(t, err)
	})
}

func TestPager_View(t *testing.T) {
	t.Run("renders page headers and chunk text", func(t *testing.T) {
		p := loadedPager(t)

		view := p.View()
		assert.Contains(t, view, "page 1")
		assert.Contains(t, view, "The quick brown fox")
	})

	t.Run("empty pager shows placeholder", func(t *testing.T) {
		p := New()
		p.SetSize(80, 24)
		assert.Contains(t, p.View(), "No document loaded")
	})
}

func TestPager_JumpToRects(t *testing.T) {
	t.Run("scrolls toward the target chunk line", func(t *testing.T) {
		chunks := make([]document.TextChunk, 0, 60)
		for i := range 60 {
			chunks = append(chunks, document.TextChunk{
				PageNumber: 1,
				Text:       strings.Repeat("lorem ipsum ", 3),
				PxLeft:     10,
				PxBottom:   float64(20 + i*13),
				Width:      400,
				Height:     12,
			})
		}
		p := New()
		p.SetSize(80, 10)
		p.Load(chunks, []geometry.PageGeometry{{PageNumber: 1, Width: 612, Height: 800}})

		rect, err := geometry.ChunkRect(chunks[50])
		require.NoError(t, err)
		p.JumpToRects([]geometry.HighlightRect{rect})

		line, ok := p.lineForRect(rect)
		require.True(t, ok)
		assert.Greater(t, line, 0)
	})

	t.Run("no rects is a no-op", func(t *testing.T) {
		p := loadedPager(t)
		p.JumpToRects(nil)
	})
}

func TestWrapText(t *testing.T) {
	t.Run("wraps at width", func(t *testing.T) {
		lines := wrapText("one two three four five", 9)
		for _, l := range lines {
			assert.LessOrEqual(t, len(l), 9)
		}
		assert.Equal(t, "one two three four five", strings.Join(lines, " "))
	})

	t.Run("hard breaks oversized words", func(t *testing.T) {
		lines := wrapText(strings.Repeat("x", 25), 10)
		assert.Len(t, lines, 3)
	})

	t.Run("empty text yields one empty line", func(t *testing.T) {
		assert.Equal(t, []string{""}, wrapText("", 10))
	})
}
