package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/core/styles"
)

const (
	helpMaxWidth  = 72
	helpMaxHeight = 28
	helpMargin    = 4
	helpChrome    = 6
)

const helpMarkdown = `# pagemark

Browse a PDF's extracted transcript, jump the page view to any entry,
and search across the document.

## Panels

| Key | Action |
| --- | --- |
| ` + "`tab`" + ` | cycle focus between transcript, pager, and search |
| ` + "`/`" + ` | focus the search input |
| ` + "`esc`" + ` | leave search, or clear the selection |

## Transcript

| Key | Action |
| --- | --- |
| ` + "`j` / `k`" + ` | move the cursor |
| ` + "`enter`" + ` | highlight the entry and jump the page view to it |

## Search

| Key | Action |
| --- | --- |
| ` + "`j` / `k`" + ` | move through results |
| ` + "`enter`" + ` | jump to the result |
| ` + "`ctrl+l`" + ` | load more results |

## Document

| Key | Action |
| --- | --- |
| ` + "`o`" + ` | open the extraction form |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |
`

// HelpModal renders the keybinding reference as markdown in a scrollable
// overlay.
type HelpModal struct {
	viewport viewport.Model
}

// NewHelpModal builds the modal sized for the given terminal dimensions.
func NewHelpModal(width, height int) HelpModal {
	modalWidth := min(width-helpMargin, helpMaxWidth)
	modalHeight := min(height-helpMargin, helpMaxHeight)

	vp := viewport.New(modalWidth-2, modalHeight-helpChrome)
	m := HelpModal{viewport: vp}
	m.renderContent(modalWidth - 2)
	return m
}

func (m *HelpModal) renderContent(width int) {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		m.viewport.SetContent(helpMarkdown)
		return
	}

	rendered, err := renderer.Render(helpMarkdown)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		m.viewport.SetContent(helpMarkdown)
		return
	}

	m.viewport.SetContent(strings.TrimSpace(rendered))
}

// ScrollUp scrolls the help content up.
func (m *HelpModal) ScrollUp() { m.viewport.ScrollUp(1) }

// ScrollDown scrolls the help content down.
func (m *HelpModal) ScrollDown() { m.viewport.ScrollDown(1) }

// Overlay renders the modal centered within the given dimensions.
func (m HelpModal) Overlay(width, height int) string {
	modalWidth := min(width-helpMargin, helpMaxWidth)
	modalHeight := min(height-helpMargin, helpMaxHeight)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.PanelTitleStyle.Render("Help"),
		"",
		m.viewport.View(),
		styles.HelpLineStyle.Render("[j/k] scroll  [?/esc] close"),
	)

	modal := styles.PanelBorderFocusedStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
