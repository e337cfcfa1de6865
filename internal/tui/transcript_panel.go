package tui

import (
	"fmt"
	"strings"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/styles"
	"github.com/pagemark/pagemark/internal/transcript"
)

// TranscriptPanel is the windowed side-panel over the transcript store. It
// contains pure data logic with no Bubble Tea dependencies: cursor and
// scroll offset move over estimated row heights so only the visible rows
// are ever materialized.
type TranscriptPanel struct {
	store  *transcript.Store
	cursor int
	offset int // first visible chunk index
	width  int
	height int
}

// NewTranscriptPanel creates a panel over the given store.
func NewTranscriptPanel(store *transcript.Store) *TranscriptPanel {
	return &TranscriptPanel{store: store}
}

// SetSize updates the panel dimensions.
func (p *TranscriptPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.clampScroll()
}

// Reset returns the panel to the top, e.g. after a new document loads.
func (p *TranscriptPanel) Reset() {
	p.cursor = 0
	p.offset = 0
}

// Cursor returns the cursor's chunk index.
func (p *TranscriptPanel) Cursor() int { return p.cursor }

// SelectedID returns the identity of the chunk under the cursor.
func (p *TranscriptPanel) SelectedID() (document.ChunkID, bool) {
	chunk, ok := p.store.Chunk(p.cursor)
	if !ok {
		return document.ChunkID{}, false
	}
	return document.ChunkID{Page: chunk.PageNumber, Ordinal: p.cursor}, true
}

// MoveUp moves the cursor up one row.
func (p *TranscriptPanel) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
		p.clampScroll()
	}
}

// MoveDown moves the cursor down one row.
func (p *TranscriptPanel) MoveDown() {
	if p.cursor < p.store.Len()-1 {
		p.cursor++
		p.clampScroll()
	}
}

// visibleRange returns the chunk index range [first, last] that fits in the
// panel height at the current offset, using estimated row heights.
func (p *TranscriptPanel) visibleRange() (int, int) {
	if p.store.Len() == 0 {
		return 0, -1
	}

	budget := p.height
	last := p.offset
	for i := p.offset; i < p.store.Len(); i++ {
		chunk, _ := p.store.Chunk(i)
		budget -= transcript.EstimateRowHeight(chunk)
		if budget < 0 {
			break
		}
		last = i
	}
	return p.offset, last
}

// clampScroll keeps the cursor inside the visible window.
func (p *TranscriptPanel) clampScroll() {
	if p.cursor < p.offset {
		p.offset = p.cursor
		return
	}

	for {
		_, last := p.visibleRange()
		if p.cursor <= last || p.offset >= p.cursor {
			return
		}
		p.offset++
	}
}

// View renders the visible transcript window. Rows come from the store's
// windowed accessor; the full list is never materialized.
func (p *TranscriptPanel) View(focused bool, isSelected func(document.ChunkID) bool) string {
	var b strings.Builder

	if p.store.Loading() {
		b.WriteString(styles.TextMutedStyle.Render("Extracting…"))
		return b.String()
	}
	if msg := p.store.Err(); msg != "" && p.store.Len() == 0 {
		b.WriteString(styles.TextErrorStyle.Render("Extraction failed"))
		b.WriteString("\n")
		b.WriteString(styles.TextMutedStyle.Render(msg))
		return b.String()
	}
	if p.store.Len() == 0 {
		b.WriteString(styles.TextMutedStyle.Render("No transcript loaded"))
		return b.String()
	}

	first, last := p.visibleRange()
	rendered := 0
	for _, row := range p.store.Window(first, last) {
		if row.Index < first || row.Index > last {
			continue // overscan rows are fetched but not drawn
		}

		id := document.ChunkID{Page: row.Chunk.PageNumber, Ordinal: row.Index}
		rows := transcript.EstimateRowHeight(row.Chunk)
		line := p.renderRow(row.Chunk, rows, row.Index == p.cursor && focused, isSelected(id))
		b.WriteString(line)
		b.WriteString("\n")
		rendered += rows
	}

	for i := rendered; i < p.height; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (p *TranscriptPanel) renderRow(chunk document.TextChunk, rows int, underCursor, selected bool) string {
	textWidth := p.width - 7
	if textWidth < 10 {
		textWidth = 10
	}

	marker := "  "
	if underCursor {
		marker = styles.TextPrimaryStyle.Render("┃ ")
	}

	page := styles.TranscriptPageStyle.Render(fmt.Sprintf("p%-3d", chunk.PageNumber))

	text := strings.Join(strings.Fields(chunk.Text), " ")
	maxChars := textWidth * rows
	runes := []rune(text)
	if len(runes) > maxChars {
		text = string(runes[:maxChars-1]) + "…"
	}

	style := styles.TranscriptRowStyle
	if selected {
		style = styles.TranscriptRowSelectedStyle
	}

	lines := wrapToWidth(text, textWidth)
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i, l := range lines {
		prefix := marker + page + " "
		if i > 0 {
			prefix = marker + "     "
		}
		lines[i] = prefix + style.Render(l)
	}
	return strings.Join(lines, "\n")
}

// wrapToWidth greedily wraps text into lines of at most width runes.
func wrapToWidth(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur := ""
	for _, w := range words {
		switch {
		case cur == "":
			cur = w
		case len([]rune(cur))+1+len([]rune(w)) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
