package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/core/config"
	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/core/styles"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/render"
	"github.com/pagemark/pagemark/internal/render/textpager"
	"github.com/pagemark/pagemark/internal/search"
	"github.com/pagemark/pagemark/internal/selection"
	"github.com/pagemark/pagemark/internal/transcript"
)

type focusArea int

const (
	focusTranscript focusArea = iota
	focusPager
	focusSearch
)

type (
	extractionDoneMsg struct {
		gen    uint64
		result *extract.Result
		err    error
	}

	searchDebounceMsg struct {
		token uint64
	}

	searchResultsMsg struct {
		gen uint64
		set render.SearchResultSet
		err error
	}

	selectionResolvedMsg struct {
		gen   uint64
		rects []geometry.HighlightRect
		err   error
	}

	toastTickMsg time.Time
)

// Model is the root bubbletea model. It owns the shared document state and
// routes messages between the transcript, pager, and search panels.
type Model struct {
	cfg    *config.Config
	client *extract.Client

	store     *transcript.Store
	pager     *textpager.Pager
	sel       *selection.Coordinator
	searchCtl *search.Coordinator

	transcriptPanel *TranscriptPanel
	searchPanel     *SearchPanel
	toasts          *ToastController
	spinner         spinner.Model
	keys            KeyMap

	slot      *extract.SourceSlot
	documents []string

	form     *ExtractForm
	showForm bool

	help     HelpModal
	showHelp bool

	focus       focusArea
	width       int
	height      int
	initial     *extract.Request
	formOnStart bool
}

// NewModel wires the application together. documents is the set of local
// PDF paths offered by the extraction form; initial, when non-nil, starts
// an extraction as soon as the program runs.
func NewModel(cfg *config.Config, client *extract.Client, slot *extract.SourceSlot, documents []string, initial *extract.Request) *Model {
	store := transcript.NewStore()
	pager := textpager.New()
	searchCtl := search.New(cfg.Search.Debounce(), cfg.Search.InitialLimit, cfg.Search.LimitStep)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return &Model{
		cfg:             cfg,
		client:          client,
		store:           store,
		pager:           pager,
		sel:             selection.New(pager),
		searchCtl:       searchCtl,
		transcriptPanel: NewTranscriptPanel(store),
		searchPanel:     NewSearchPanel(searchCtl),
		toasts:          NewToastController(),
		spinner:         sp,
		keys:            DefaultKeyMap(),
		slot:            slot,
		documents:       documents,
		initial:         initial,
	}
}

// OpenFormOnStart makes Init open the extraction form instead of waiting
// for a keypress.
func (m *Model) OpenFormOnStart() { m.formOnStart = true }

// Init starts the initial extraction when one was requested on the command
// line.
func (m *Model) Init() tea.Cmd {
	if m.initial != nil {
		req := *m.initial
		m.initial = nil
		return m.startExtraction(req)
	}
	if m.formOnStart {
		m.form = NewExtractForm(m.cfg.Extraction, m.documents)
		m.showForm = true
		return m.form.Form().Init()
	}
	return nil
}

// startExtraction begins loading and returns the command that talks to the
// backend. The transcript keeps showing the previous document until the
// response commits.
func (m *Model) startExtraction(req extract.Request) tea.Cmd {
	gen := m.store.BeginLoad()
	client := m.client

	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			result, err := client.Extract(context.Background(), req)
			return extractionDoneMsg{gen: gen, result: result, err: err}
		},
	)
}

// searchCmd runs the search immediately, on the update goroutine: the
// engine reads the same layout that extraction commits mutate, so engine
// calls never leave the event loop. Only the result delivery goes through
// the message queue.
func (m *Model) searchCmd(req search.Request) tea.Cmd {
	set, err := m.pager.Search(req.Query, req.Limit)
	msg := searchResultsMsg{gen: req.Gen, set: set, err: err}
	return func() tea.Msg { return msg }
}

func (m *Model) debounceCmd(token uint64) tea.Cmd {
	return tea.Tick(m.searchCtl.Debounce(), func(time.Time) tea.Msg {
		return searchDebounceMsg{token: token}
	})
}

func (m *Model) toastTickCmd() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

func (m *Model) notifyError(message string) tea.Cmd {
	m.toasts.Error(message)
	if !m.toasts.Ticking() {
		m.toasts.SetTicking(true)
		return m.toastTickCmd()
	}
	return nil
}

func (m *Model) notifyInfo(message string) tea.Cmd {
	m.toasts.Info(message)
	if !m.toasts.Ticking() {
		m.toasts.SetTicking(true)
		return m.toastTickCmd()
	}
	return nil
}

// Update routes messages to the owning component.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case extractionDoneMsg:
		return m, m.handleExtractionDone(msg)

	case searchDebounceMsg:
		req, ok := m.searchCtl.TimerFired(msg.token)
		if !ok {
			return m, nil
		}
		m.searchPanel.ResetCursor()
		return m, m.searchCmd(req)

	case searchResultsMsg:
		m.searchCtl.Commit(msg.gen, msg.set, msg.err)
		return m, nil

	case selectionResolvedMsg:
		if !m.sel.Settle(msg.gen, msg.rects, msg.err) && msg.err != nil {
			return m, m.notifyError("could not locate the selection on the page")
		}
		return m, nil

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, m.toastTickCmd()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case spinner.TickMsg:
		if !m.store.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.showForm {
		return m, m.updateForm(msg)
	}
	return m, nil
}

func (m *Model) handleExtractionDone(msg extractionDoneMsg) tea.Cmd {
	if msg.err != nil {
		if !m.store.Fail(msg.gen, msg.err.Error()) {
			return nil
		}
		log.Error().Err(msg.err).Msg("extraction failed")
		return m.notifyError(msg.err.Error())
	}

	if !m.store.Commit(msg.gen, msg.result.Chunks, msg.result.Pages) {
		return nil
	}

	m.pager.Load(msg.result.Chunks, msg.result.Pages)
	m.sel.Clear()
	m.searchCtl.Reset()
	m.searchPanel.Input().SetValue("")
	m.searchPanel.ResetCursor()
	m.transcriptPanel.Reset()

	return m.notifyInfo(fmt.Sprintf("Extracted %d entries in %.1fs", m.store.Len(), msg.result.RunTime.Seconds()))
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showForm {
		return m, m.updateForm(msg)
	}

	if m.showHelp {
		switch msg.String() {
		case "j", "down":
			m.help.ScrollDown()
		case "k", "up":
			m.help.ScrollUp()
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	// The search input swallows printable keys, so global bindings are
	// restricted while it has focus.
	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.slot.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help = NewHelpModal(m.width, m.height)
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.OpenForm):
		m.form = NewExtractForm(m.cfg.Extraction, m.documents)
		m.showForm = true
		return m, m.form.Form().Init()

	case key.Matches(msg, m.keys.FocusSearch):
		m.focus = focusSearch
		return m, m.searchPanel.Input().Focus()

	case key.Matches(msg, m.keys.NextPanel):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, m.keys.ClearSel):
		m.sel.Clear()
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		if req, ok := m.searchCtl.LoadMore(); ok {
			return m, m.searchCmd(req)
		}
		return m, nil
	}

	switch m.focus {
	case focusTranscript:
		return m.handleTranscriptKey(msg)
	case focusPager:
		return m, m.pager.Update(msg)
	}
	return m, nil
}

func (m *Model) handleTranscriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.transcriptPanel.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.transcriptPanel.MoveDown()
	case key.Matches(msg, m.keys.Select):
		return m, m.selectTranscriptEntry()
	}
	return m, nil
}

func (m *Model) selectTranscriptEntry() tea.Cmd {
	id, ok := m.transcriptPanel.SelectedID()
	if !ok {
		return nil
	}
	chunk, ok := m.store.Chunk(m.transcriptPanel.Cursor())
	if !ok {
		return nil
	}

	gen := m.sel.Select(selection.ChunkTarget(id))
	rect, err := geometry.ChunkRect(chunk)
	msg := selectionResolvedMsg{gen: gen, err: err}
	if err == nil {
		msg.rects = []geometry.HighlightRect{rect}
	}
	return func() tea.Msg { return msg }
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusTranscript
		m.searchPanel.Input().Blur()
		return m, nil

	case "up":
		m.searchPanel.MoveUp()
		return m, nil

	case "down":
		m.searchPanel.MoveDown()
		return m, nil

	case "enter":
		return m, m.selectSearchMatch()

	case "ctrl+l":
		if req, ok := m.searchCtl.LoadMore(); ok {
			return m, m.searchCmd(req)
		}
		return m, nil
	}

	input := m.searchPanel.Input()
	before := input.Value()
	updated, cmd := input.Update(msg)
	*input = updated

	if input.Value() == before {
		return m, cmd
	}

	token, ok := m.searchCtl.Input(input.Value())
	if !ok {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounceCmd(token))
}

func (m *Model) selectSearchMatch() tea.Cmd {
	match, ok := m.searchPanel.Selected()
	if !ok {
		return nil
	}

	gen := m.sel.Select(selection.MatchTarget(match.PageNumber, match.MatchIndex))
	rects, err := m.pager.MatchRects(match.PageNumber, match.Tier, match.Text, match.MatchIndex, m.searchCtl.Query())
	msg := selectionResolvedMsg{gen: gen, rects: rects, err: err}
	return func() tea.Msg { return msg }
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Form().Update(msg)
	if f, ok := form.(*huh.Form); ok {
		*m.form.Form() = *f
	}

	if m.form.Aborted() {
		m.showForm = false
		return nil
	}
	if !m.form.Completed() {
		return cmd
	}

	m.showForm = false
	result := m.form.Result()

	req := extract.Request{
		PDFURL:         result.PDFURL,
		Options:        result.Options,
		MaxUploadBytes: extract.DefaultMaxUploadBytes,
	}

	if result.FilePath != "" {
		data, err := os.ReadFile(result.FilePath)
		if err != nil {
			return m.notifyError(fmt.Sprintf("could not read %s: %s", result.FilePath, err))
		}
		src := extract.NewSource(filepath.Base(result.FilePath), data)
		m.slot.Set(src)
		req.PDFFile = src.Bytes()
		req.FileName = src.Name()
	}

	return m.startExtraction(req)
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusTranscript:
		m.focus = focusPager
	case focusPager:
		m.focus = focusSearch
	default:
		m.focus = focusTranscript
	}
	if m.focus == focusSearch {
		m.searchPanel.Input().Focus()
	} else {
		m.searchPanel.Input().Blur()
	}
}
