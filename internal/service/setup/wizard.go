// Package setup is the interactive first-run wizard that writes the
// runtime .env file.
package setup

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandevgo/gemibot/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the wizard. Update returns nil once the step is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd)
	View(state *State) string
}

func steps(overwrite bool) []Step {
	return []Step{
		NewDiscordTokenStep(),
		NewGoogleKeyStep(),
		NewModelStep(),
		NewForumStep(),
		NewFeedStep(),
		NewSaveStep(overwrite),
	}
}

type item struct {
	id   string
	desc string
}

func (i item) Title() string       { return i.id }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

var _ list.Item = item{}

type model struct {
	steps    []Step
	current  int
	state    *State
	quitting bool
	width    int
	height   int
}

func newModel(overwrite bool) model {
	return model{
		steps: steps(overwrite),
		state: NewState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) == 0 {
		return nil
	}
	return m.steps[0].Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.current >= len(m.steps) {
		return m, tea.Quit
	}

	next, cmd := m.steps[m.current].Update(msg, m.state, m.width, m.height)
	if next == nil {
		m.current++
		if m.current >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.current].Init()
	}
	m.steps[m.current] = next
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}
	if m.current >= len(m.steps) {
		return "Configuration complete!\n"
	}
	header := titleStyle.Render(fmt.Sprintf("Setting up %s (%d/%d)", core.AppName, m.current+1, len(m.steps)))
	return header + "\n\n" + m.steps[m.current].View(m.state)
}

// RunWizard runs the TUI and returns the collected state. With overwrite
// unset an existing env file is left alone and reported as an error.
func RunWizard(overwrite bool) (*State, error) {
	p := tea.NewProgram(newModel(overwrite), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting {
		return nil, fmt.Errorf("%s setup interrupted", core.AppName)
	}
	if final.state.Path == "" {
		return nil, fmt.Errorf("%s setup did not save the configuration", core.AppName)
	}
	return final.state, nil
}
