package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
)

func makeChunks(n int) []document.TextChunk {
	chunks := make([]document.TextChunk, n)
	for i := range chunks {
		chunks[i] = document.TextChunk{
			PageNumber: 1,
			Text:       fmt.Sprintf("chunk %d", i),
			PxLeft:     10,
			PxBottom:   float64(20 + i*14),
			Width:      50,
			Height:     12,
		}
	}
	return chunks
}

func TestStore_Commit(t *testing.T) {
	t.Run("replaces chunk set atomically", func(t *testing.T) {
		s := NewStore()
		gen := s.BeginLoad()
		assert.True(t, s.Loading())

		ok := s.Commit(gen, makeChunks(3), []geometry.PageGeometry{{PageNumber: 1, Width: 612, Height: 792}})
		require.True(t, ok)
		assert.False(t, s.Loading())
		assert.Equal(t, 3, s.Len())
		assert.Empty(t, s.Err())

		g, found := s.PageGeometry(1)
		require.True(t, found)
		assert.Equal(t, 612.0, g.Width)
	})

	t.Run("single chunk scenario", func(t *testing.T) {
		s := NewStore()
		gen := s.BeginLoad()

		chunk := document.TextChunk{
			PageNumber: 1, Text: "Hello",
			PxLeft: 10, PxBottom: 20, Width: 50, Height: 12,
		}
		require.True(t, s.Commit(gen, []document.TextChunk{chunk}, nil))
		require.Equal(t, 1, s.Len())

		got, ok := s.Chunk(0)
		require.True(t, ok)
		rect, err := geometry.ChunkRect(got)
		require.NoError(t, err)
		assert.Equal(t, 1, rect.PageNumber)
		assert.Equal(t, 50.0, rect.Width)
		assert.Equal(t, 12.0, rect.Height)
	})

	t.Run("discards stale generation", func(t *testing.T) {
		s := NewStore()
		old := s.BeginLoad()
		latest := s.BeginLoad()

		require.True(t, s.Commit(latest, makeChunks(5), nil))

		// The older request's response arrives late; it must not overwrite.
		assert.False(t, s.Commit(old, makeChunks(1), nil))
		assert.Equal(t, 5, s.Len())
	})
}

func TestStore_Fail(t *testing.T) {
	t.Run("first load failure leaves empty set", func(t *testing.T) {
		s := NewStore()
		gen := s.BeginLoad()

		require.True(t, s.Fail(gen, "backend unavailable"))
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, "backend unavailable", s.Err())
		assert.False(t, s.Loading())
	})

	t.Run("reload failure retains prior chunks", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Commit(s.BeginLoad(), makeChunks(4), nil))

		require.True(t, s.Fail(s.BeginLoad(), "timeout"))
		assert.Equal(t, 4, s.Len())
		assert.Equal(t, "timeout", s.Err())
	})

	t.Run("stale failure is discarded", func(t *testing.T) {
		s := NewStore()
		old := s.BeginLoad()
		latest := s.BeginLoad()
		require.True(t, s.Commit(latest, makeChunks(2), nil))

		assert.False(t, s.Fail(old, "late error"))
		assert.Empty(t, s.Err())
		assert.Equal(t, 2, s.Len())
	})
}

func TestStore_Window(t *testing.T) {
	t.Run("returns visible range plus overscan", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Commit(s.BeginLoad(), makeChunks(100), nil))

		win := s.Window(40, 50)
		require.Len(t, win, 11+2*Overscan)
		assert.Equal(t, 40-Overscan, win[0].Index)
		assert.Equal(t, 50+Overscan, win[len(win)-1].Index)
	})

	t.Run("clamps at sequence bounds", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Commit(s.BeginLoad(), makeChunks(10), nil))

		win := s.Window(0, 4)
		require.NotEmpty(t, win)
		assert.Equal(t, 0, win[0].Index)
		assert.Equal(t, 9, win[len(win)-1].Index)
	})

	t.Run("empty store yields nothing", func(t *testing.T) {
		s := NewStore()
		assert.Nil(t, s.Window(0, 10))
	})
}

func TestEstimateRowHeight(t *testing.T) {
	t.Run("fixed minimum for short text", func(t *testing.T) {
		h := EstimateRowHeight(document.TextChunk{Text: "hi"})
		assert.Equal(t, minRowHeight, h)
	})

	t.Run("monotonic in text length", func(t *testing.T) {
		prev := 0
		for _, n := range []int{0, 10, 50, 120, 400} {
			h := EstimateRowHeight(document.TextChunk{Text: strings.Repeat("x", n)})
			assert.GreaterOrEqual(t, h, prev, "length %d", n)
			prev = h
		}
	})

	t.Run("stable across calls", func(t *testing.T) {
		chunk := document.TextChunk{Text: strings.Repeat("word ", 40)}
		first := EstimateRowHeight(chunk)
		for range 10 {
			assert.Equal(t, first, EstimateRowHeight(chunk))
		}
	})

	t.Run("capped for very long text", func(t *testing.T) {
		h := EstimateRowHeight(document.TextChunk{Text: strings.Repeat("x", 10000)})
		assert.Equal(t, maxEstimatedRows, h)
	})
}
