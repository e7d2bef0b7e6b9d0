package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
)

// PickerModel is the bubbletea model for choosing a track from a list.
type PickerModel struct {
	title    string
	tracks   []core.Track
	current  int
	cursor   int
	selected int
	width    int
	height   int
}

// Styles for the track picker
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerCurrentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	pickerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewPickerModel creates a picker over tracks. current marks the track at
// the queue cursor, or -1; the picker starts there.
func NewPickerModel(title string, tracks []core.Track, current int) PickerModel {
	return PickerModel{
		title:    title,
		tracks:   tracks,
		current:  current,
		cursor:   max(current, 0),
		selected: -1,
		width:    80,
		height:   20,
	}
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if m.cursor < len(m.tracks) {
				m.selected = m.cursor
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.tracks)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.tracks)-1, 0)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")

	if len(m.tracks) == 0 {
		b.WriteString(pickerDimStyle.Render("Nothing to pick from"))
		b.WriteString("\n")
	}

	// Keep the cursor inside the visible window.
	visible := max(m.height-6, 5)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.tracks))

	for i := start; i < end; i++ {
		t := m.tracks[i]
		var line strings.Builder
		if i == m.current {
			line.WriteString(pickerCurrentStyle.Render("▶ "))
		} else {
			line.WriteString("  ")
		}
		line.WriteString(fmt.Sprintf("%2d. %s", i+1, t.String()))

		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("▸ " + line.String()))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + line.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render("↑/↓ navigate • enter select • esc quit"))

	return b.String()
}

// Selected returns the picked index, or -1 if the picker was cancelled.
func (m PickerModel) Selected() int {
	return m.selected
}

// RunPicker runs the track picker and returns the picked index, or -1.
func RunPicker(title string, tracks []core.Track, current int) (int, error) {
	model := NewPickerModel(title, tracks, current)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, err
	}
	return finalModel.(PickerModel).Selected(), nil
}
