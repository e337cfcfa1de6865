// Package search turns free-text query input into a live, paginated, tiered
// result set. The coordinator owns all debounce and request bookkeeping; the
// event loop schedules its timers and runs its requests, then feeds the
// outcomes back in. Stale timers and stale responses are identified by
// token and discarded.
package search

import (
	"strings"
	"time"

	"github.com/pagemark/pagemark/internal/render"
)

// Reference values from the coordinator contract.
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultInitialLimit = 10
	DefaultLimitStep    = 10
)

// State describes what the results panel should show.
type State int

const (
	// StateIdle is the empty-query state: show nothing, not an error.
	StateIdle State = iota
	// StateDebouncing means input arrived and the delay window is open.
	StateDebouncing
	// StateSearching means a request is in flight.
	StateSearching
	// StateResults means the current result set is non-empty.
	StateResults
	// StateNoResults means a non-empty query matched nothing in either
	// tier, reported distinctly from the idle state.
	StateNoResults
	// StateError means the last request failed; a fresh user action
	// retries, never the coordinator.
	StateError
)

// Request describes one search the event loop should run against the
// engine. Gen must be presented back to Commit.
type Request struct {
	Query string
	Limit int
	Gen   uint64
}

// Coordinator holds the search state machine. It is driven only from the
// event loop.
type Coordinator struct {
	debounce     time.Duration
	initialLimit int
	limitStep    int

	pending       string // query text as typed, pre-debounce
	activeQuery   string // query of the last issued request
	lastLimit     int
	debounceToken uint64
	gen           uint64

	state   State
	results render.SearchResultSet
	errMsg  string
}

// New creates an idle coordinator. Non-positive arguments fall back to the
// reference values.
func New(debounce time.Duration, initialLimit, limitStep int) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if initialLimit <= 0 {
		initialLimit = DefaultInitialLimit
	}
	if limitStep <= 0 {
		limitStep = DefaultLimitStep
	}
	return &Coordinator{
		debounce:     debounce,
		initialLimit: initialLimit,
		limitStep:    limitStep,
	}
}

// Debounce returns the configured delay window.
func (c *Coordinator) Debounce() time.Duration { return c.debounce }

// State returns the display state.
func (c *Coordinator) State() State { return c.state }

// Results returns the committed result set.
func (c *Coordinator) Results() render.SearchResultSet { return c.results }

// Query returns the query of the last issued request.
func (c *Coordinator) Query() string { return c.activeQuery }

// Err returns the retained failure message for StateError.
func (c *Coordinator) Err() string { return c.errMsg }

// Input records a keystroke's new query value and opens a fresh delay
// window, invalidating any earlier window. The returned token identifies
// the timer the caller must schedule; ok is false for an empty query, which
// issues no request and resets the coordinator to idle.
func (c *Coordinator) Input(query string) (token uint64, ok bool) {
	c.pending = query
	c.debounceToken++

	if strings.TrimSpace(query) == "" {
		c.gen++ // in-flight responses are now stale
		c.activeQuery = ""
		c.results = render.SearchResultSet{}
		c.errMsg = ""
		c.state = StateIdle
		return 0, false
	}

	c.state = StateDebouncing
	return c.debounceToken, true
}

// TimerFired reports the expiry of a delay window. Only the window current
// at expiry triggers a request: stale tokens return ok false. The returned
// request uses the query value present when the window elapsed and resets
// the limit to the initial page size.
func (c *Coordinator) TimerFired(token uint64) (Request, bool) {
	if token != c.debounceToken || strings.TrimSpace(c.pending) == "" {
		return Request{}, false
	}

	c.activeQuery = c.pending
	c.lastLimit = c.initialLimit
	return c.issue(), true
}

// LoadMore re-issues the active query with the limit grown by the step.
// Increments compose on the last requested limit, not the initial one.
func (c *Coordinator) LoadMore() (Request, bool) {
	if c.activeQuery == "" {
		return Request{}, false
	}

	c.lastLimit += c.limitStep
	return c.issue(), true
}

// Commit applies a completed request's outcome. Stale generations are
// discarded: if a newer request was issued while this one ran, its result
// set must not overwrite the newer state.
func (c *Coordinator) Commit(gen uint64, set render.SearchResultSet, err error) bool {
	if gen != c.gen {
		return false
	}

	if err != nil {
		c.errMsg = err.Error()
		c.state = StateError
		return true
	}

	c.results = set
	c.errMsg = ""
	if set.Empty() {
		c.state = StateNoResults
	} else {
		c.state = StateResults
	}
	return true
}

// Matches returns the committed matches in display order: the exact tier
// always renders before the fuzzy tier.
func (c *Coordinator) Matches() []render.SearchMatch {
	out := make([]render.SearchMatch, 0, c.results.Len())
	out = append(out, c.results.Exact...)
	out = append(out, c.results.Fuzzy...)
	return out
}

// HasMore reports whether more matches exist beyond the last request.
func (c *Coordinator) HasMore() bool { return c.results.HasMore }

// Reset drops all search state, e.g. when the document is replaced.
func (c *Coordinator) Reset() {
	c.debounceToken++
	c.gen++
	c.pending = ""
	c.activeQuery = ""
	c.lastLimit = 0
	c.results = render.SearchResultSet{}
	c.errMsg = ""
	c.state = StateIdle
}

func (c *Coordinator) issue() Request {
	c.gen++
	c.state = StateSearching
	return Request{Query: c.activeQuery, Limit: c.lastLimit, Gen: c.gen}
}
