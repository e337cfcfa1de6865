package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/render"
)

func newCoordinator() *Coordinator {
	return New(DefaultDebounce, DefaultInitialLimit, DefaultLimitStep)
}

func resultSet(exact, fuzzy int, hasMore bool) render.SearchResultSet {
	var set render.SearchResultSet
	for i := range exact {
		set.Exact = append(set.Exact, render.SearchMatch{
			PageNumber: 1, Text: "exact", MatchIndex: i, Tier: render.TierExact,
		})
	}
	for i := range fuzzy {
		set.Fuzzy = append(set.Fuzzy, render.SearchMatch{
			PageNumber: 1, Text: "fuzzy", MatchIndex: i, Tier: render.TierFuzzy,
		})
	}
	set.HasMore = hasMore
	return set
}

func TestCoordinator_Debounce(t *testing.T) {
	t.Run("keystroke resets the delay window", func(t *testing.T) {
		c := newCoordinator()

		tok1, ok := c.Input("f")
		require.True(t, ok)
		tok2, ok := c.Input("fo")
		require.True(t, ok)
		tok3, ok := c.Input("foo")
		require.True(t, ok)

		// Only the window current at expiry triggers a request.
		_, fired := c.TimerFired(tok1)
		assert.False(t, fired)
		_, fired = c.TimerFired(tok2)
		assert.False(t, fired)

		req, fired := c.TimerFired(tok3)
		require.True(t, fired)
		assert.Equal(t, "foo", req.Query)
		assert.Equal(t, DefaultInitialLimit, req.Limit)
		assert.Equal(t, StateSearching, c.State())
	})

	t.Run("empty query issues no request and shows nothing", func(t *testing.T) {
		c := newCoordinator()

		_, ok := c.Input("")
		assert.False(t, ok)
		assert.Equal(t, StateIdle, c.State())
	})

	t.Run("clearing the query invalidates in-flight results", func(t *testing.T) {
		c := newCoordinator()

		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)

		_, ok := c.Input("")
		assert.False(t, ok)

		assert.False(t, c.Commit(req.Gen, resultSet(2, 0, false), nil))
		assert.Equal(t, StateIdle, c.State())
	})

	t.Run("default values applied", func(t *testing.T) {
		c := New(0, 0, 0)
		assert.Equal(t, DefaultDebounce, c.Debounce())
	})
}

func TestCoordinator_Pagination(t *testing.T) {
	t.Run("load more composes on the last requested limit", func(t *testing.T) {
		c := newCoordinator()

		tok, _ := c.Input("foo")
		req, fired := c.TimerFired(tok)
		require.True(t, fired)
		assert.Equal(t, 10, req.Limit)

		req, ok := c.LoadMore()
		require.True(t, ok)
		assert.Equal(t, 20, req.Limit)
		assert.Equal(t, "foo", req.Query)

		req, ok = c.LoadMore()
		require.True(t, ok)
		assert.Equal(t, 30, req.Limit)
	})

	t.Run("new query resets the limit", func(t *testing.T) {
		c := newCoordinator()

		tok, _ := c.Input("foo")
		c.TimerFired(tok)
		c.LoadMore()

		tok, _ = c.Input("bar")
		req, fired := c.TimerFired(tok)
		require.True(t, fired)
		assert.Equal(t, 10, req.Limit)
	})

	t.Run("load more without an active query is rejected", func(t *testing.T) {
		c := newCoordinator()
		_, ok := c.LoadMore()
		assert.False(t, ok)
	})
}

func TestCoordinator_Commit(t *testing.T) {
	t.Run("results state for non-empty set", func(t *testing.T) {
		c := newCoordinator()
		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)

		require.True(t, c.Commit(req.Gen, resultSet(2, 1, true), nil))
		assert.Equal(t, StateResults, c.State())
		assert.True(t, c.HasMore())
	})

	t.Run("no results is distinct from idle", func(t *testing.T) {
		c := newCoordinator()
		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)

		require.True(t, c.Commit(req.Gen, resultSet(0, 0, false), nil))
		assert.Equal(t, StateNoResults, c.State())
	})

	t.Run("stale response discarded after requery", func(t *testing.T) {
		c := newCoordinator()

		tok, _ := c.Input("foo")
		oldReq, _ := c.TimerFired(tok)

		tok, _ = c.Input("foobar")
		newReq, _ := c.TimerFired(tok)

		// The older request completes after the newer one.
		require.True(t, c.Commit(newReq.Gen, resultSet(3, 0, false), nil))
		assert.False(t, c.Commit(oldReq.Gen, resultSet(1, 0, false), nil))

		assert.Len(t, c.Results().Exact, 3)
	})

	t.Run("failure surfaces without retry", func(t *testing.T) {
		c := newCoordinator()
		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)

		require.True(t, c.Commit(req.Gen, render.SearchResultSet{}, errors.New("engine busy")))
		assert.Equal(t, StateError, c.State())
		assert.Equal(t, "engine busy", c.Err())
	})
}

func TestCoordinator_Matches(t *testing.T) {
	t.Run("exact tier renders before fuzzy", func(t *testing.T) {
		c := newCoordinator()
		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)
		require.True(t, c.Commit(req.Gen, resultSet(2, 2, false), nil))

		matches := c.Matches()
		require.Len(t, matches, 4)
		assert.Equal(t, render.TierExact, matches[0].Tier)
		assert.Equal(t, render.TierExact, matches[1].Tier)
		assert.Equal(t, render.TierFuzzy, matches[2].Tier)
		assert.Equal(t, render.TierFuzzy, matches[3].Tier)
	})
}

func TestCoordinator_Reset(t *testing.T) {
	t.Run("reset returns to idle and invalidates everything", func(t *testing.T) {
		c := newCoordinator()
		tok, _ := c.Input("foo")
		req, _ := c.TimerFired(tok)

		c.Reset()
		assert.Equal(t, StateIdle, c.State())
		assert.False(t, c.Commit(req.Gen, resultSet(1, 0, false), nil))
		_, fired := c.TimerFired(tok)
		assert.False(t, fired)
	})
}
