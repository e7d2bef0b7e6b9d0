package wizard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
)

// SearchKind selects what the query is matched against.
type SearchKind int

const (
	SearchTracks SearchKind = iota
	SearchAlbum
)

var searchTabs = []string{"Tracks", "Album"}

// SearchFunc looks up tracks for a query.
type SearchFunc func(query string, kind SearchKind) ([]core.Track, error)

// Selection is what the user picked. For an album search, Tracks is the
// whole album and Start the track the cursor was on.
type Selection struct {
	Kind   SearchKind
	Tracks []core.Track
	Start  int
}

// SearchModel is the bubbletea model for the search wizard.
type SearchModel struct {
	input      textinput.Model
	results    []core.Track
	cursor     int
	kind       SearchKind
	searchFunc SearchFunc
	selected   *Selection
	err        error
	debounce   time.Duration
	lastQuery  string
	searching  bool
	width      int
	height     int
}

// Styles
var (
	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	searchTabStyle = lipgloss.NewStyle().
			Padding(0, 2)

	searchActiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0"))

	searchResultStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	searchSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	searchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewSearchModel creates a new search wizard model.
func NewSearchModel(searchFunc SearchFunc) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search songs, or an album id on the Album tab"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return SearchModel{
		input:      ti,
		searchFunc: searchFunc,
		debounce:   300 * time.Millisecond,
		kind:       SearchTracks,
		width:      80,
		height:     20,
	}
}

// Init initializes the model.
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// debounceMsg is sent after the debounce period.
type debounceMsg struct {
	query string
}

// searchResultsMsg contains search results.
type searchResultsMsg struct {
	query   string
	results []core.Track
	err     error
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if len(m.results) > 0 && m.cursor < len(m.results) {
				m.selected = m.selection()
				return m, tea.Quit
			}

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}

		case "tab", "shift+tab":
			m.kind = (m.kind + 1) % SearchKind(len(searchTabs))
			if m.input.Value() != "" {
				m.searching = true
				return m, m.doSearch(m.input.Value())
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query == m.input.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		// Results for a query the user has since typed past are dropped.
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.err = msg.err
		m.cursor = 0
	}

	// Handle text input
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	// Debounce search
	if m.input.Value() != m.lastQuery {
		query := m.input.Value()
		cmds = append(cmds, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m SearchModel) selection() *Selection {
	if m.kind == SearchAlbum {
		return &Selection{Kind: SearchAlbum, Tracks: m.results, Start: m.cursor}
	}
	return &Selection{Kind: SearchTracks, Tracks: []core.Track{m.results[m.cursor]}}
}

// doSearch performs the search.
func (m SearchModel) doSearch(query string) tea.Cmd {
	kind := m.kind
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{query: query}
		}
		results, err := m.searchFunc(query, kind)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(searchTitleStyle.Render("🔍 Search"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, tab := range searchTabs {
		if SearchKind(i) == m.kind {
			b.WriteString(searchActiveTabStyle.Render(tab))
		} else {
			b.WriteString(searchTabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + m.err.Error()))
	case m.searching:
		b.WriteString("Searching...")
	case len(m.results) == 0 && m.input.Value() != "":
		b.WriteString("No results found")
	default:
		maxResults := max(m.height-10, 5)
		for i, t := range m.results {
			if i >= maxResults {
				b.WriteString(searchSubtitleStyle.Render("  ...and more"))
				break
			}

			line := t.Title
			if line == "" {
				line = t.ID
			}
			if t.Artist != "" {
				line += " " + searchSubtitleStyle.Render(t.Artist)
			}

			if i == m.cursor {
				b.WriteString(searchSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(searchResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(searchSubtitleStyle.Render("↑/↓ navigate • tab switch type • enter select • esc quit"))

	return b.String()
}

// Selected returns the selection, or nil if the wizard was cancelled.
func (m SearchModel) Selected() *Selection {
	return m.selected
}

// RunSearch runs the search wizard and returns the selection.
func RunSearch(searchFunc SearchFunc) (*Selection, error) {
	model := NewSearchModel(searchFunc)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
