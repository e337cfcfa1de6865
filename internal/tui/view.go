package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pagemark/pagemark/internal/core/styles"
)

const (
	sidePanelMinWidth = 32
	sidePanelRatio    = 3 // side panel takes 1/3 of the width
	panelChrome       = 2 // border cells on each axis
	statusBarHeight   = 1
)

func (m *Model) layout() {
	side := m.width / sidePanelRatio
	if side < sidePanelMinWidth {
		side = sidePanelMinWidth
	}
	if side > m.width-20 {
		side = m.width / 2
	}

	body := m.height - statusBarHeight
	transcriptHeight := body * 3 / 5
	searchHeight := body - transcriptHeight

	m.transcriptPanel.SetSize(side-panelChrome, transcriptHeight-panelChrome)
	m.searchPanel.SetSize(side-panelChrome, searchHeight-panelChrome)
	m.pager.SetSize(m.width-side-panelChrome, body-panelChrome)
}

// View composes the three panels, the status bar, and any active overlay.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showForm {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.Form().View())
	}
	if m.showHelp {
		return m.help.Overlay(m.width, m.height)
	}

	side := m.width / sidePanelRatio
	if side < sidePanelMinWidth {
		side = sidePanelMinWidth
	}
	if side > m.width-20 {
		side = m.width / 2
	}
	body := m.height - statusBarHeight
	transcriptHeight := body * 3 / 5
	searchHeight := body - transcriptHeight

	transcript := m.panel("Transcript", m.transcriptView(), side, transcriptHeight, m.focus == focusTranscript)
	searchBox := m.panel("Search", m.searchPanel.View(m.focus == focusSearch), side, searchHeight, m.focus == focusSearch)
	pager := m.panel("Document", m.pager.View(), m.width-side, body, m.focus == focusPager)

	left := lipgloss.JoinVertical(lipgloss.Left, transcript, searchBox)
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, pager)
	screen := lipgloss.JoinVertical(lipgloss.Left, main, m.statusBar())

	if m.toasts.HasToasts() {
		return m.overlayToasts(screen)
	}
	return screen
}

func (m *Model) panel(title, content string, width, height int, focused bool) string {
	border := styles.PanelBorderStyle
	if focused {
		border = styles.PanelBorderFocusedStyle
	}

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.PanelTitleStyle.Render(title),
		content,
	)

	return border.
		Width(width - panelChrome).
		Height(height - panelChrome).
		Render(inner)
}

func (m *Model) transcriptView() string {
	if m.store.Loading() {
		return m.spinner.View() + styles.TextMutedStyle.Render(" extracting…")
	}
	return m.transcriptPanel.View(m.focus == focusTranscript, m.sel.IsChunkSelected)
}

func (m *Model) statusBar() string {
	var parts []string

	if m.store.Len() > 0 {
		parts = append(parts, fmt.Sprintf("%d entries", m.store.Len()))
		parts = append(parts, fmt.Sprintf("%d%%", int(m.pager.ScrollPercent()*100)))
	}
	if m.store.Err() != "" {
		parts = append(parts, styles.TextErrorStyle.Render(m.store.Err()))
	}

	keys := styles.StatusKeyStyle.Render("[/] search  [o] open  [?] help  [q] quit")
	status := strings.Join(parts, "  ")
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(keys) - 2
	if gap < 1 {
		gap = 1
	}

	return styles.StatusBarStyle.Width(m.width).Render(status + strings.Repeat(" ", gap) + keys)
}

func (m *Model) overlayToasts(screen string) string {
	var rendered []string
	for _, t := range m.toasts.Toasts() {
		style := styles.ToastInfoStyle
		if t.level == toastError {
			style = styles.ToastErrorStyle
		}
		rendered = append(rendered, style.Width(toastWidth).Render(t.message))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	lines := strings.Split(screen, "\n")
	toastLines := strings.Split(stack, "\n")
	for i, tl := range toastLines {
		if i >= len(lines) {
			break
		}
		pad := m.width - lipgloss.Width(tl) - 1
		if pad < 0 {
			pad = 0
		}
		lines[i] = strings.Repeat(" ", pad) + tl
	}
	return strings.Join(lines, "\n")
}
