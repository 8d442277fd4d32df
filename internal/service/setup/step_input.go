package setup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep asks for one free-form value.
type InputStep struct {
	input    textinput.Model
	prompt   string
	optional bool
	validate func(string) error
	assign   func(*State, string)
	err      error
}

func newInputStep(prompt, placeholder string, secret bool, assign func(*State, string)) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{
		input:  ti,
		prompt: prompt,
		assign: assign,
	}
}

func NewDiscordTokenStep() Step {
	s := newInputStep("Enter your Discord bot token", "MTIz...", true, func(st *State, v string) {
		st.Values.DiscordToken = v
	})
	s.validate = required
	return s
}

func NewGoogleKeyStep() Step {
	s := newInputStep("Enter your Google AI Studio API key", "AIza...", true, func(st *State, v string) {
		st.Values.GoogleAPIKey = v
	})
	s.validate = required
	return s
}

func NewForumStep() Step {
	s := newInputStep("Enter the news forum channel ID", "123456789012345678", false, func(st *State, v string) {
		st.Values.ForumChannelID = v
	})
	s.optional = true
	s.validate = snowflake
	return s
}

func NewFeedStep() Step {
	s := newInputStep("Enter the news RSS feed URL", "https://example.com/rss", false, func(st *State, v string) {
		st.Values.FeedURL = v
	})
	s.optional = true
	s.validate = feedURL
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		v := strings.TrimSpace(s.input.Value())
		if v == "" && s.optional {
			return nil, nil
		}
		if s.validate != nil {
			if err := s.validate(v); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.assign(state, v)
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *State) string {
	var b strings.Builder
	b.WriteString(s.prompt + ":\n\n")
	b.WriteString(s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	hint := "(press enter to confirm)"
	if s.optional {
		hint = "(press enter to confirm, leave empty to skip)"
	}
	b.WriteString(hintStyle.Render(hint) + "\n")
	return b.String()
}

func required(v string) error {
	if v == "" {
		return fmt.Errorf("a value is required")
	}
	return nil
}

func snowflake(v string) error {
	if v == "" {
		return nil
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return fmt.Errorf("channel id must be numeric")
		}
	}
	return nil
}

func feedURL(v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("expected an http(s) URL")
	}
	return nil
}
