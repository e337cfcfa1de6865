// Package textpager is the built-in rendering-engine adapter. It lays the
// extracted chunks out as wrapped terminal lines, page by page, and drives a
// bubbles viewport for highlight painting and pixel-space jumps.
package textpager

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/core/styles"
)

const minWrapWidth = 20

// chunkLayout records where one chunk landed in the flattened line layout.
type chunkLayout struct {
	chunk     document.TextChunk
	rect      geometry.HighlightRect
	hasRect   bool
	firstLine int
	lineCount int
}

// pageLayout records one page's slice of the flattened layout.
type pageLayout struct {
	number    int
	geom      geometry.PageGeometry
	firstLine int
	lineCount int
	chunks    []int // indices into Pager.chunks
	text      string
}

// Pager implements render.Engine over the loaded chunk set.
type Pager struct {
	vp         viewport.Model
	width      int
	chunks     []chunkLayout
	pages      []pageLayout
	pageByNum  map[int]int
	lines      []string
	highlights []geometry.HighlightRect
}

// New creates an empty pager.
func New() *Pager {
	return &Pager{
		vp:        viewport.New(0, 0),
		pageByNum: map[int]int{},
	}
}

// SetSize resizes the viewport and reflows the layout.
func (p *Pager) SetSize(width, height int) {
	p.width = width
	p.vp.Width = width
	p.vp.Height = height
	p.reflow()
}

// Load replaces the pager content with a freshly committed chunk set. Pages
// missing from the extraction response get their geometry synthesized from
// the chunk extents so jumps still land proportionally.
func (p *Pager) Load(chunks []document.TextChunk, pages []geometry.PageGeometry) {
	p.chunks = make([]chunkLayout, len(chunks))
	byPage := map[int][]int{}
	var order []int

	for i, c := range chunks {
		cl := chunkLayout{chunk: c}
		if rect, err := geometry.ChunkRect(c); err == nil {
			cl.rect = rect
			cl.hasRect = true
		}
		p.chunks[i] = cl

		if _, seen := byPage[c.PageNumber]; !seen {
			order = append(order, c.PageNumber)
		}
		byPage[c.PageNumber] = append(byPage[c.PageNumber], i)
	}

	geomByPage := map[int]geometry.PageGeometry{}
	for _, g := range pages {
		geomByPage[g.PageNumber] = g
	}

	p.pages = p.pages[:0]
	p.pageByNum = map[int]int{}
	for _, num := range order {
		idxs := byPage[num]
		g, ok := geomByPage[num]
		if !ok {
			g = synthesizeGeometry(num, chunks, idxs)
		}

		var b strings.Builder
		for j, ci := range idxs {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(chunks[ci].Text)
		}

		p.pageByNum[num] = len(p.pages)
		p.pages = append(p.pages, pageLayout{
			number: num,
			geom:   g,
			chunks: idxs,
			text:   b.String(),
		})
	}

	p.highlights = nil
	p.reflow()
	p.vp.GotoTop()
}

// Clear drops all content.
func (p *Pager) Clear() {
	p.chunks = nil
	p.pages = nil
	p.pageByNum = map[int]int{}
	p.lines = nil
	p.highlights = nil
	p.vp.SetContent("")
}

// PageGeometry implements render.Engine.
func (p *Pager) PageGeometry(page int) (geometry.PageGeometry, error) {
	i, ok := p.pageByNum[page]
	if !ok {
		return geometry.PageGeometry{}, fmt.Errorf("page %d not loaded", page)
	}
	return p.pages[i].geom, nil
}

// SetHighlightRects implements render.Engine. The previous highlight set is
// replaced wholesale.
func (p *Pager) SetHighlightRects(rects []geometry.HighlightRect) {
	p.highlights = rects
	p.render()
}

// JumpToRects implements render.Engine. The viewport scrolls so the line
// corresponding to the first rectangle's vertical position is visible near
// the top of the view.
func (p *Pager) JumpToRects(rects []geometry.HighlightRect) {
	if len(rects) == 0 {
		return
	}

	line, ok := p.lineForRect(rects[0])
	if !ok {
		return
	}

	offset := line - p.vp.Height/4
	if offset < 0 {
		offset = 0
	}
	p.vp.SetYOffset(offset)
}

// Update forwards scroll keys to the viewport.
func (p *Pager) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// View renders the current viewport frame.
func (p *Pager) View() string {
	return p.vp.View()
}

// ScrollPercent reports the viewport scroll position for the status line.
func (p *Pager) ScrollPercent() float64 {
	return p.vp.ScrollPercent()
}

// lineForRect maps a pixel-space rectangle to a flattened line index. The
// owning chunk's layout position wins when the rectangle matches a chunk
// box; otherwise the jump falls back to the rectangle's proportional
// position within its page.
func (p *Pager) lineForRect(rect geometry.HighlightRect) (int, bool) {
	pi, ok := p.pageByNum[rect.PageNumber]
	if !ok {
		return 0, false
	}
	page := p.pages[pi]

	for _, ci := range page.chunks {
		cl := p.chunks[ci]
		if cl.hasRect && rectsOverlap(cl.rect, rect) {
			return cl.firstLine, true
		}
	}

	if page.geom.Height <= 0 || page.lineCount == 0 {
		return page.firstLine, true
	}
	frac := rect.Top / page.geom.Height
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return page.firstLine + int(frac*float64(page.lineCount-1)), true
}

func rectsOverlap(a, b geometry.HighlightRect) bool {
	if a.PageNumber != b.PageNumber {
		return false
	}
	return a.Left < b.Left+b.Width && b.Left < a.Left+a.Width &&
		a.Top < b.Top+b.Height && b.Top < a.Top+a.Height
}

// reflow rebuilds the flattened line layout at the current width.
func (p *Pager) reflow() {
	width := p.width
	if width < minWrapWidth {
		width = minWrapWidth
	}

	p.lines = p.lines[:0]
	for i := range p.pages {
		page := &p.pages[i]
		page.firstLine = len(p.lines)

		header := fmt.Sprintf("── page %d ", page.number)
		if pad := width - len([]rune(header)); pad > 0 {
			header += strings.Repeat("─", pad)
		}
		p.lines = append(p.lines, styles.PagerPageHeaderStyle.Render(header))

		for _, ci := range page.chunks {
			cl := &p.chunks[ci]
			cl.firstLine = len(p.lines)
			wrapped := wrapText(cl.chunk.Text, width)
			cl.lineCount = len(wrapped)
			p.lines = append(p.lines, wrapped...)
		}

		page.lineCount = len(p.lines) - page.firstLine
	}

	p.render()
}

// render paints the flattened lines into the viewport, styling the lines of
// highlighted chunks.
func (p *Pager) render() {
	if len(p.lines) == 0 {
		p.vp.SetContent(styles.TextMutedStyle.Render("No document loaded"))
		return
	}

	marked := map[int]bool{}
	for _, hr := range p.highlights {
		pi, ok := p.pageByNum[hr.PageNumber]
		if !ok {
			continue
		}
		for _, ci := range p.pages[pi].chunks {
			cl := p.chunks[ci]
			if cl.hasRect && rectsOverlap(cl.rect, hr) {
				for l := cl.firstLine; l < cl.firstLine+cl.lineCount; l++ {
					marked[l] = true
				}
			}
		}
	}

	out := make([]string, len(p.lines))
	for i, line := range p.lines {
		if marked[i] {
			out[i] = styles.PagerHighlightStyle.Render(line)
		} else {
			out[i] = line
		}
	}
	p.vp.SetContent(strings.Join(out, "\n"))
}

func synthesizeGeometry(num int, chunks []document.TextChunk, idxs []int) geometry.PageGeometry {
	g := geometry.PageGeometry{PageNumber: num}
	for _, i := range idxs {
		c := chunks[i]
		if right := c.PxLeft + c.Width; right > g.Width {
			g.Width = right
		}
		if c.PxBottom > g.Height {
			g.Height = c.PxBottom
		}
	}
	return g
}

// wrapText greedily wraps text into lines no wider than width runes. Words
// longer than the width are hard-broken.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curLen = 0
	}

	for _, word := range words {
		runes := []rune(word)
		for len(runes) > width {
			if curLen > 0 {
				flush()
			}
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		wlen := len(runes)
		if wlen == 0 {
			continue
		}

		switch {
		case curLen == 0:
			cur.WriteString(string(runes))
			curLen = wlen
		case curLen+1+wlen <= width:
			cur.WriteString(" ")
			cur.WriteString(string(runes))
			curLen += 1 + wlen
		default:
			flush()
			cur.WriteString(string(runes))
			curLen = wlen
		}
	}
	if curLen > 0 {
		flush()
	}
	return lines
}
