package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ResolvingView ViewState = iota
	ReviewView
	CandidateView
	ConfirmView
	AssembleView
	ResultView
)

// BuildRequest carries the playlist parameters the TUI assembles with.
// Timeout, when positive, bounds each resolve or assemble operation; the
// interactive views have no deadline.
type BuildRequest struct {
	Title       string
	Description string
	Privacy     string
	Queries     []string
	Timeout     time.Duration
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	resolver      *tasks.Resolver
	assembler     *tasks.Assembler
	request       BuildRequest
	width         int
	height        int
	results       []models.ResolutionResult
	dropped       map[string]bool
	queryList     list.Model
	candidateList list.Model
	reviewing     int
	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	outcome       *models.PlaylistOutcome
	err           error
	help          help.Model
	keys          keyMap
}

type resolveCompleteMsg struct {
	results []models.ResolutionResult
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type assembleCompleteMsg struct {
	outcome *models.PlaylistOutcome
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, resolver *tasks.Resolver, assembler *tasks.Assembler, request BuildRequest) *Model {
	return &Model{
		ctx:       ctx,
		view:      ResolvingView,
		resolver:  resolver,
		assembler: assembler,
		request:   request,
		dropped:   make(map[string]bool),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init kicks off resolution of the requested queries.
func (m *Model) Init() tea.Cmd {
	return m.startResolve()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.queryList.Width() == 0 {
			m.queryList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.candidateList.Width() == 0 {
			m.candidateList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ReviewView:
			return m.handleReviewKeys(msg)
		case CandidateView:
			return m.handleCandidateKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case resolveCompleteMsg:
		m.progressChan = nil
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.results = msg.results
		m.rebuildQueryList()
		m.view = ReviewView
		return m, nil

	case assembleCompleteMsg:
		m.progressChan = nil
		m.outcome = msg.outcome
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ResolvingView:
		return m.renderProgress("Resolving Queries")
	case ReviewView:
		return m.renderReview()
	case CandidateView:
		return m.renderCandidates()
	case ConfirmView:
		return m.renderConfirm()
	case AssembleView:
		return m.renderProgress("Building Playlist")
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		if item, ok := m.queryList.SelectedItem().(queryItem); ok {
			m.dropped[item.result.Query] = !m.dropped[item.result.Query]
			index := m.queryList.Index()
			m.rebuildQueryList()
			m.queryList.Select(index)
		}
		return m, nil
	case "b":
		if len(m.pickedIDs()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	case "enter":
		if item, ok := m.queryList.SelectedItem().(queryItem); ok {
			if len(item.result.Candidates) > 0 && !m.dropped[item.result.Query] {
				m.reviewing = m.queryList.Index()
				m.rebuildCandidateList()
				m.view = CandidateView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.queryList, cmd = m.queryList.Update(msg)
	return m, cmd
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ReviewView
		return m, nil
	case "enter":
		if item, ok := m.candidateList.SelectedItem().(candidateItem); ok {
			candidate := item.candidate
			m.results[m.reviewing].Selected = &candidate
			m.results[m.reviewing].Reason = ""
			index := m.queryList.Index()
			m.rebuildQueryList()
			m.queryList.Select(index)
			m.view = ReviewView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = ReviewView
		return m, nil
	case "y":
		m.view = AssembleView
		return m, m.startAssemble()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.outcome == nil {
			m.view = ReviewView
			m.err = nil
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ReviewView:
		m.queryList, cmd = m.queryList.Update(msg)
	case CandidateView:
		m.candidateList, cmd = m.candidateList.Update(msg)
	}
	return m, cmd
}

// pickedIDs returns the ids that would go into the playlist: every query
// that resolved, was not dropped, taking any override into account.
func (m *Model) pickedIDs() []string {
	var ids []string
	for _, result := range m.results {
		if result.Selected == nil || m.dropped[result.Query] {
			continue
		}
		ids = append(ids, result.Selected.ID)
	}
	return ids
}

func (m *Model) rebuildQueryList() {
	items := make([]list.Item, len(m.results))
	for i, result := range m.results {
		items[i] = queryItem{result: result, dropped: m.dropped[result.Query]}
	}
	m.queryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.queryList.Title = "Resolved Queries"
	m.queryList.SetSize(m.width-4, m.height-8)
}

func (m *Model) rebuildCandidateList() {
	result := m.results[m.reviewing]
	items := make([]list.Item, len(result.Candidates))
	for i, candidate := range result.Candidates {
		current := result.Selected != nil && result.Selected.ID == candidate.ID
		items[i] = candidateItem{candidate: candidate, current: current}
	}
	m.candidateList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.candidateList.Title = fmt.Sprintf("Candidates for '%s'", result.Query)
	m.candidateList.SetSize(m.width-4, m.height-8)
}

// operationCtx derives the context for one resolve or assemble run.
func (m *Model) operationCtx() (context.Context, context.CancelFunc) {
	if m.request.Timeout > 0 {
		return context.WithTimeout(m.ctx, m.request.Timeout)
	}
	return m.ctx, func() {}
}

func (m *Model) startResolve() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	ch := m.progressChan
	ctx, cancel := m.operationCtx()
	go func() {
		defer cancel()
		results, err := m.resolver.Resolve(ctx, m.request.Queries, ch)
		m.results = results
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) startAssemble() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	ids := m.pickedIDs()
	ch := m.progressChan
	ctx, cancel := m.operationCtx()
	go func() {
		defer cancel()
		outcome, err := m.assembler.CreateFromIDs(ctx, m.request.Title, m.request.Description, m.request.Privacy, ids, ch)
		m.outcome = outcome
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	view := m.view
	ch := m.progressChan
	return func() tea.Msg {
		if ch != nil {
			if update, ok := <-ch; ok {
				return progressUpdateMsg(update)
			}
		}
		if view == AssembleView {
			return assembleCompleteMsg{outcome: m.outcome, err: m.err}
		}
		return resolveCompleteMsg{results: m.results, err: m.err}
	}
}

func (m *Model) renderProgress(heading string) string {
	title := styles.title.Render(heading)

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveTracks:
		phase = fmt.Sprintf("Resolving queries (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.AddTracks:
		phase = fmt.Sprintf("Adding tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderReview() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.drop, m.keys.build, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	picked := len(m.pickedIDs())
	status := fmt.Sprintf("%d of %d queries will go into '%s'", picked, len(m.results), m.request.Title)

	return fmt.Sprintf("%s\n\n%s\n\n%s", m.queryList.View(), styles.warn.Render(status), helpView)
}

func (m *Model) renderCandidates() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.candidateList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create playlist '%s'?", m.request.Title))
	info := fmt.Sprintf("\nTracks: %d\nPrivacy: %s\n", len(m.pickedIDs()), m.request.Privacy)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil && m.outcome == nil {
		return styles.err.Render(fmt.Sprintf("Build failed: %v\n\nPress r to review again, q to quit", m.err))
	}

	title := styles.ok.Render("✓ Playlist Created")
	info := fmt.Sprintf(
		"\n%s\n%s\nAdded: %d of %d",
		m.outcome.Title,
		m.outcome.PlaylistURL,
		m.outcome.TotalAdded,
		m.outcome.TotalRequested,
	)

	var skipped string
	if len(m.outcome.Skipped) > 0 {
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Skipped %d entries:", len(m.outcome.Skipped))))
		for _, skip := range m.outcome.Skipped {
			skipped += fmt.Sprintf("\n  • %s (%s)", skip.Query, skip.Reason)
		}
	}

	var trailer string
	if m.err != nil {
		trailer = fmt.Sprintf("\n\n%s", styles.err.Render(fmt.Sprintf("Warning: %v", m.err)))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s\n%s%s%s\n\n%s", title, info, skipped, trailer, helpView)
}
