package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/pagemark/pagemark/internal/core/styles"
	"github.com/pagemark/pagemark/internal/render"
	"github.com/pagemark/pagemark/internal/search"
)

// SearchPanel owns the query input widget and the result-list cursor. The
// search semantics live in the coordinator; the panel is presentation and
// navigation state only.
type SearchPanel struct {
	ctl    *search.Coordinator
	input  textinput.Model
	cursor int
	offset int
	width  int
	height int
}

// NewSearchPanel creates a panel over the given coordinator.
func NewSearchPanel(ctl *search.Coordinator) *SearchPanel {
	input := textinput.New()
	input.Placeholder = "search document"
	input.Prompt = "/ "
	input.CharLimit = 200

	return &SearchPanel{ctl: ctl, input: input}
}

// SetSize updates the panel dimensions.
func (p *SearchPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - 4
	p.clampScroll()
}

// Input exposes the text input for focus management and key forwarding.
func (p *SearchPanel) Input() *textinput.Model { return &p.input }

// Value returns the current query text.
func (p *SearchPanel) Value() string { return p.input.Value() }

// ResetCursor moves the result cursor back to the top, for a fresh result
// set.
func (p *SearchPanel) ResetCursor() {
	p.cursor = 0
	p.offset = 0
}

// Selected returns the match under the cursor.
func (p *SearchPanel) Selected() (render.SearchMatch, bool) {
	matches := p.ctl.Matches()
	if len(matches) == 0 || p.cursor >= len(matches) {
		return render.SearchMatch{}, false
	}
	return matches[p.cursor], true
}

// MoveUp moves the result cursor up one row.
func (p *SearchPanel) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
		p.clampScroll()
	}
}

// MoveDown moves the result cursor down one row.
func (p *SearchPanel) MoveDown() {
	if p.cursor < len(p.ctl.Matches())-1 {
		p.cursor++
		p.clampScroll()
	}
}

func (p *SearchPanel) clampScroll() {
	visible := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	} else if p.cursor >= p.offset+visible {
		p.offset = p.cursor - visible + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

func (p *SearchPanel) visibleRows() int {
	visible := p.height - 2 // input line + status line
	if visible < 1 {
		visible = 1
	}
	return visible
}

// View renders the query input and the tiered result list.
func (p *SearchPanel) View(focused bool) string {
	var b strings.Builder

	b.WriteString(p.input.View())
	b.WriteString("\n")

	switch p.ctl.State() {
	case search.StateIdle:
		// Empty query: show nothing, not an error.
	case search.StateDebouncing:
		b.WriteString(styles.TextMutedStyle.Render("…"))
		b.WriteString("\n")
	case search.StateSearching:
		b.WriteString(styles.TextMutedStyle.Render("Searching…"))
		b.WriteString("\n")
	case search.StateNoResults:
		b.WriteString(styles.SearchEmptyStyle.Render("No results found"))
		b.WriteString("\n")
	case search.StateError:
		b.WriteString(styles.TextErrorStyle.Render(p.ctl.Err()))
		b.WriteString("\n")
	case search.StateResults:
		p.renderResults(&b, focused)
	}

	return b.String()
}

func (p *SearchPanel) renderResults(b *strings.Builder, focused bool) {
	matches := p.ctl.Matches()
	visible := p.visibleRows()

	end := p.offset + visible
	if end > len(matches) {
		end = len(matches)
	}

	for i := p.offset; i < end; i++ {
		b.WriteString(p.renderMatch(matches[i], focused && i == p.cursor))
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d exact, %d fuzzy", len(p.ctl.Results().Exact), len(p.ctl.Results().Fuzzy))
	if p.ctl.HasMore() {
		summary += " • ctrl+l for more"
	}
	b.WriteString(styles.TextMutedStyle.Render(summary))
	b.WriteString("\n")
}

func (p *SearchPanel) renderMatch(m render.SearchMatch, underCursor bool) string {
	tier := styles.SearchTierExactStyle.Render("●")
	if m.Tier == render.TierFuzzy {
		tier = styles.SearchTierFuzzyStyle.Render("○")
	}

	marker := "  "
	if underCursor {
		marker = styles.TextPrimaryStyle.Render("┃ ")
	}

	page := styles.TranscriptPageStyle.Render(fmt.Sprintf("p%-3d", m.PageNumber))

	textWidth := p.width - 10
	if textWidth < 10 {
		textWidth = 10
	}
	text := strings.Join(strings.Fields(m.Text), " ")
	runes := []rune(text)
	if len(runes) > textWidth {
		text = string(runes[:textWidth-1]) + "…"
	}

	style := styles.TextForegroundStyle
	if underCursor {
		style = styles.SearchRowSelectedStyle
	}

	return marker + tier + " " + page + " " + style.Render(text)
}
