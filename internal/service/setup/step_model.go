package setup

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var models = []list.Item{
	item{id: "gemini-2.5-flash-lite", desc: "Default. Fast and cheap, handles tool calls well"},
	item{id: "gemini-2.5-flash", desc: "Stronger reasoning, higher latency"},
	item{id: "gemini-2.5-pro", desc: "Best quality, lowest free-tier quota"},
}

// ModelStep picks the main model. The default is omitted from the env file
// so later default changes still apply.
type ModelStep struct {
	list list.Model
}

func NewModelStep() Step {
	l := list.New(models, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select the main model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	if width > 0 && height > 4 {
		s.list.SetSize(width, height-4)
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if i, ok := s.list.SelectedItem().(item); ok && s.list.Index() > 0 {
			state.Values.MainModel = i.id
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *State) string {
	return s.list.View()
}
