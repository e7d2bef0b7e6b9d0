// Package tui is the interactive dashboard over a playback session.
package tui

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/favorites"
	"github.com/tessro/cadence/internal/history"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/tui/components"
	"github.com/tessro/cadence/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelLikes
	PanelHistory

	panelCount
)

// SearchKind selects what the search overlay looks up.
type SearchKind int

const (
	SearchTracks SearchKind = iota
	SearchAlbum

	searchKindCount
)

const (
	searchDebounce = 300 * time.Millisecond
	searchLimit    = 20
	statusTTL      = 5 * time.Second
	volumeStep     = 0.05
	defaultRefresh = time.Second
)

// Options configures the dashboard.
type Options struct {
	// Refresh is how often the clock and panels update.
	Refresh time.Duration
	// Theme is "", "auto", "dark" or "light".
	Theme string
}

// Model is the main TUI model
type Model struct {
	ctx     context.Context
	s       *session.Session
	refresh time.Duration
	now     func() time.Time

	width        int
	height       int
	focusedPanel Panel

	// State
	state   core.PlaybackState
	queue   core.QueueSnapshot
	history []history.Entry
	likes   []string
	known   map[string]core.Track

	// Progress of the current track. The engine has no clock of its own,
	// so the dashboard counts playing time and reports the end.
	elapsed    time.Duration
	lastTick   time.Time
	clockTrack string

	updates     <-chan core.PlaybackState
	unsubscribe func()

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	likesView   *components.Likes
	historyView *components.History

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Track
	searchCursor  int
	searchKind    SearchKind
	searching     bool
	lastQuery     string
	searchErr     error

	// Status line
	status       string
	statusIsErr  bool
	statusExpiry time.Time

	quitting bool
}

// NewModel creates a model over s. Call Close when done with it.
func NewModel(ctx context.Context, s *session.Session, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search tracks..."
	ti.CharLimit = 100
	ti.Width = 50

	updates, unsubscribe := s.Engine.Subscribe()

	m := Model{
		ctx:          ctx,
		s:            s,
		refresh:      cmp.Or(max(opts.Refresh, 0), defaultRefresh),
		now:          time.Now,
		focusedPanel: PanelNowPlaying,
		updates:      updates,
		unsubscribe:  unsubscribe,
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		likesView:    components.NewLikes(),
		historyView:  components.NewHistory(),
		searchInput:  ti,
	}
	m.sync()
	m.clockTrack = trackID(m.state.Track)
	return m
}

// Close ends the model's engine subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Messages
type tickMsg time.Time
type stateMsg core.PlaybackState
type errMsg struct{ err error }
type noticeMsg favorites.Notice

// Search messages
type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	query   string
	kind    SearchKind
	results []core.Track
	err     error
}

// songMsg carries a track fetched for playback.
type songMsg struct {
	track core.Track
	err   error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForState() tea.Cmd {
	ctx, ch := m.ctx, m.updates
	return func() tea.Msg {
		select {
		case st := <-ch:
			return stateMsg(st)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForError() tea.Cmd {
	ctx, ch := m.ctx, m.s.Engine.Errors()
	return func() tea.Msg {
		select {
		case err, ok := <-ch:
			if !ok {
				return nil
			}
			return errMsg{err}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForNotice() tea.Cmd {
	ctx, ch := m.ctx, m.s.Favorites.Notices()
	return func() tea.Msg {
		select {
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			return noticeMsg(n)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	ctx, catalog, kind := m.ctx, m.s.Catalog, m.searchKind
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{query: query, kind: kind}
		}

		var (
			results []core.Track
			err     error
		)
		if kind == SearchAlbum {
			results, err = catalog.Album(ctx, query)
		} else {
			results, err = catalog.Search(ctx, query, searchLimit)
		}
		return searchResultsMsg{query: query, kind: kind, results: results, err: err}
	}
}

func (m Model) fetchSong(id string) tea.Cmd {
	ctx, catalog := m.ctx, m.s.Catalog
	return func() tea.Msg {
		t, err := catalog.Song(ctx, id)
		return songMsg{track: t, err: err}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForState(),
		m.waitForError(),
		m.waitForNotice(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		m.advanceClock(now)
		m.sync()
		if now.After(m.statusExpiry) {
			m.status = ""
		}
		return m, m.tick()

	case stateMsg:
		m.sync()
		return m, m.waitForState()

	case errMsg:
		m.setError(msg.err)
		return m, m.waitForError()

	case noticeMsg:
		m.setError(errors.New(favorites.Notice(msg).String()))
		m.sync()
		return m, m.waitForNotice()

	case songMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.s.Engine.PlayTrack(m.ctx, msg.track)
		m.restartClock()
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}
		return m, nil

	case searchResultsMsg:
		// Results for a query or kind the user has moved on from.
		if msg.query != m.lastQuery || msg.kind != m.searchKind {
			return m, nil
		}
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Search overlay
	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.lastQuery = ""
		m.searchErr = nil
		m.searching = false
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	e := m.s.Engine
	switch msg.String() {
	case " ":
		if !e.TogglePlay(m.ctx) {
			m.setStatus("Nothing to play")
		}
	case "n":
		if e.Advance(m.ctx) {
			m.restartClock()
		} else {
			m.setStatus("End of queue")
		}
	case "p":
		if e.Retreat(m.ctx) {
			m.restartClock()
		} else {
			m.setStatus("Start of queue")
		}
	case "+", "=":
		m.changeVolume(volumeStep)
	case "-":
		m.changeVolume(-volumeStep)
	case "s":
		e.SetShuffle(!m.state.Shuffle)
		m.setStatus("Shuffle " + onOff(!m.state.Shuffle))
	case "r":
		m.setStatus("Repeat " + e.CycleRepeatMode().String())
	case "l":
		m.toggleLike(trackID(m.state.Track))
	default:
		return m.handlePanelKey(msg)
	}

	m.sync()
	return m, nil
}

// handlePanelKey handles keys that act on the focused panel.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case PanelQueue:
		switch msg.String() {
		case "j", "down":
			m.queueView.SelectNext(m.queue.Len())
		case "k", "up":
			m.queueView.SelectPrev()
		case "enter":
			if m.s.Engine.JumpTo(m.ctx, m.queueView.Selected()) {
				m.restartClock()
			}
		case "x", "delete":
			if m.s.Engine.RemoveAt(m.queueView.Selected()) {
				m.setStatus("Removed from queue")
			}
		}

	case PanelLikes:
		switch msg.String() {
		case "j", "down":
			m.likesView.SelectNext(len(m.likes))
		case "k", "up":
			m.likesView.SelectPrev()
		case "enter":
			if i := m.likesView.Selected(); i < len(m.likes) {
				if t, ok := m.known[m.likes[i]]; ok {
					m.s.Engine.PlayTrack(m.ctx, t)
					m.restartClock()
				} else {
					cmd = m.fetchSong(m.likes[i])
				}
			}
		case "d":
			if i := m.likesView.Selected(); i < len(m.likes) {
				m.toggleLike(m.likes[i])
			}
		}
	}

	m.sync()
	return m, cmd
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil

	case "enter":
		if m.searchCursor < len(m.searchResults) {
			if m.searchKind == SearchAlbum {
				m.s.Engine.SetQueue(m.searchResults)
				m.s.Engine.JumpTo(m.ctx, m.searchCursor)
			} else {
				m.s.Engine.PlayTrack(m.ctx, m.searchResults[m.searchCursor])
			}
			m.restartClock()
			m.closeSearch()
			m.sync()
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil

	case "ctrl+t":
		m.searchKind = (m.searchKind + 1) % searchKindCount
		m.searchResults = nil
		m.searchCursor = 0
		m.searchErr = nil
		m.lastQuery = m.searchInput.Value()
		if m.lastQuery != "" {
			m.searching = true
			return m, m.doSearch(m.lastQuery)
		}
		return m, nil

	case "ctrl+q":
		if m.searchCursor < len(m.searchResults) {
			t := m.searchResults[m.searchCursor]
			m.s.Engine.Enqueue(t)
			m.setStatus("Queued " + t.String())
			m.closeSearch()
			m.sync()
		}
		return m, nil
	}

	// Handle text input
	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	// Debounce search
	if query := m.searchInput.Value(); query != m.lastQuery {
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) closeSearch() {
	m.showSearch = false
	m.searchInput.Blur()
}

// sync copies the session's current state into the model.
func (m *Model) sync() {
	m.state = m.s.Engine.State()
	m.queue = m.s.Engine.Queue()
	m.history = m.s.History.Entries()
	m.likes = m.s.Favorites.IDs()

	m.known = make(map[string]core.Track, len(m.queue.Tracks)+len(m.history))
	for _, e := range m.history {
		m.known[e.Track.ID] = e.Track
	}
	for _, t := range m.queue.Tracks {
		m.known[t.ID] = t
	}

	// A track that started outside the dashboard restarts the clock.
	if id := trackID(m.state.Track); id != m.clockTrack {
		m.clockTrack = id
		m.elapsed = 0
	}
}

// advanceClock counts playing time up to now and reports the end of the
// current track to the engine.
func (m *Model) advanceClock(now time.Time) {
	last := m.lastTick
	m.lastTick = now
	if last.IsZero() || !m.state.IsPlaying || m.state.Track == nil {
		return
	}

	m.elapsed += now.Sub(last)
	total := m.state.Track.Duration()
	if total <= 0 || m.elapsed < total {
		return
	}

	m.s.Engine.TrackEnded(m.ctx)
	m.restartClock()
}

func (m *Model) restartClock() {
	m.elapsed = 0
	m.clockTrack = trackID(m.s.Engine.State().Track)
}

func (m *Model) changeVolume(delta float64) {
	vol := min(max(m.state.Volume+delta, 0), 1)
	if err := m.s.Engine.SetVolume(m.ctx, vol); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Volume %d%%", int(vol*100+0.5)))
}

func (m *Model) toggleLike(id string) {
	if id == "" {
		m.setStatus("No track to like")
		return
	}
	// Failures come back as notices once the like has been reverted.
	liked, _ := m.s.Favorites.Toggle(m.ctx, id)

	name := id
	if t, ok := m.known[id]; ok {
		name = t.String()
	}
	if liked {
		m.setStatus("♥ Liked " + name)
	} else {
		m.setStatus("Removed like for " + name)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusIsErr = false
	m.statusExpiry = m.now().Add(statusTTL)
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusIsErr = true
	m.statusExpiry = m.now().Add(statusTTL)
}

func trackID(t *core.Track) string {
	if t == nil {
		return ""
	}
	return t.ID
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	// Show overlays if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Queue (bottom)
	// Right: Likes (top), History (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	liked := m.s.Favorites.IsLiked
	lookup := func(id string) (core.Track, bool) {
		t, ok := m.known[id]
		return t, ok
	}

	nowPlaying := m.nowPlaying.Render(m.state, m.elapsed, liked(trackID(m.state.Track)),
		leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	queueView := m.queueView.Render(m.queue, liked, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelQueue)
	likesView := m.likesView.Render(m.likes, lookup, rightWidth-2, topHeight-2, m.focusedPanel == PanelLikes)
	historyView := m.historyView.Render(m.history, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, likesView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n/p:next/prev  l:like  s:shuffle  r:repeat  +/-:volume  tab:panel")

	switch {
	case m.status != "" && m.statusIsErr:
		status = styles.ErrorText.Render("Error: " + m.status)
	case m.status != "":
		status = styles.Highlight.Render(m.status)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Cadence UI - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/=          Volume up
  -            Volume down
  s            Toggle shuffle
  r            Cycle repeat (none, all, one)
  l            Like/unlike current track

  Queue Panel
  ───────────
  j/↓  k/↑     Move selection
  Enter        Play selected
  x            Remove selected

  Likes Panel
  ───────────
  j/↓  k/↑     Move selection
  Enter        Play selected
  d            Unlike selected

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	tabs := []string{"Tracks", "Album"}
	activeTabStyle := lipgloss.NewStyle().Padding(0, 1).Background(styles.Primary).Foreground(lipgloss.Color("0"))
	tabStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(styles.TextMuted)
	for i, tab := range tabs {
		if SearchKind(i) == m.searchKind {
			b.WriteString(activeTabStyle.Render(tab))
		} else {
			b.WriteString(tabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	selectedStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	switch {
	case m.searchErr != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.searchErr.Error()))
	case m.searching:
		b.WriteString(styles.Muted.Render("Searching..."))
	case len(m.searchResults) == 0 && m.lastQuery != "":
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		const maxResults = 10
		start := max(0, m.searchCursor-maxResults+1)
		end := min(len(m.searchResults), start+maxResults)
		for i := start; i < end; i++ {
			t := m.searchResults[i]
			line := t.Title
			if line == "" {
				line = t.ID
			}
			if t.Artist != "" {
				line += " " + styles.Muted.Render(t.Artist)
			}

			if i == m.searchCursor {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if end < len(m.searchResults) {
			b.WriteString(styles.Muted.Render(fmt.Sprintf("  ...and %d more", len(m.searchResults)-end)))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Ctrl+t:tracks/album  ↑/↓:nav  Enter:play  Ctrl+q:queue  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, s *session.Session, opts Options) error {
	styles.ApplyTheme(opts.Theme)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, s, opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
