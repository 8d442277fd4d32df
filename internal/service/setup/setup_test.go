package setup

import (
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/config"
)

func typeText(t *testing.T, s Step, st *State, text string) Step {
	t.Helper()
	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}, st, 80, 24)
	require.NotNil(t, next)
	return next
}

func enter(s Step, st *State) Step {
	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter}, st, 80, 24)
	return next
}

func TestInputStep_Required(t *testing.T) {
	st := NewState()
	s := NewDiscordTokenStep()

	next := enter(s, st)
	require.NotNil(t, next, "empty token must not advance")
	assert.Contains(t, next.View(st), "a value is required")

	next = typeText(t, next, st, "  secret-token ")
	assert.Nil(t, enter(next, st))
	assert.Equal(t, "secret-token", st.Values.DiscordToken)
}

func TestInputStep_OptionalSkip(t *testing.T) {
	st := NewState()
	assert.Nil(t, enter(NewFeedStep(), st))
	assert.Empty(t, st.Values.FeedURL)
}

func TestInputStep_Validation(t *testing.T) {
	tests := []struct {
		name  string
		step  func() Step
		input string
		ok    bool
	}{
		{"numeric forum id", NewForumStep, "123456789", true},
		{"forum id with letters", NewForumStep, "12ab", false},
		{"https feed", NewFeedStep, "https://example.com/rss", true},
		{"feed without scheme", NewFeedStep, "example.com/rss", false},
		{"ftp feed", NewFeedStep, "ftp://example.com/rss", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState()
			s := typeText(t, tt.step(), st, tt.input)
			next := enter(s, st)
			if tt.ok {
				assert.Nil(t, next)
			} else {
				assert.NotNil(t, next)
			}
		})
	}
}

func TestModelStep(t *testing.T) {
	t.Run("default is not written", func(t *testing.T) {
		st := NewState()
		assert.Nil(t, enter(NewModelStep(), st))
		assert.Empty(t, st.Values.MainModel)
	})

	t.Run("other model is written", func(t *testing.T) {
		st := NewState()
		s := NewModelStep()
		s, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown}, st, 80, 24)
		require.NotNil(t, s)
		assert.Nil(t, enter(s, st))
		assert.Equal(t, "gemini-2.5-flash", st.Values.MainModel)
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEMI_RUNTIME_PATH", dir)

	values := &config.SetupValues{
		DiscordToken:   "tok",
		GoogleAPIKey:   "key",
		ForumChannelID: "42",
	}
	path, err := Save(values, false)
	require.NoError(t, err)
	assert.Equal(t, config.GetEnvPath(), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DISCORD_TOKEN=tok\nGOOGLE_API_KEY=key\nFORUM_CHANNEL_ID=42\n", string(data))

	_, err = Save(values, false)
	assert.ErrorContains(t, err, "already exists")

	values.DiscordToken = "tok2"
	_, err = Save(values, true)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DISCORD_TOKEN=tok2")
}

func TestSaveStep(t *testing.T) {
	t.Setenv("GEMI_RUNTIME_PATH", t.TempDir())

	st := NewState()
	st.Values.DiscordToken = "tok"
	s := NewSaveStep(false)

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter}, st, 80, 24)
	assert.NotNil(t, next, "only the save message triggers the write")

	msg := s.Init()()
	assert.Nil(t, send(s, st, msg))
	assert.Equal(t, config.GetEnvPath(), st.Path)
}

func send(s Step, st *State, msg tea.Msg) Step {
	next, _ := s.Update(msg, st, 80, 24)
	return next
}

func TestWizardFlow(t *testing.T) {
	t.Setenv("GEMI_RUNTIME_PATH", t.TempDir())

	m := newModel(false)
	var tm tea.Model = m
	feed := func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		tm, cmd = tm.Update(msg)
		return cmd
	}
	key := func(k tea.KeyType) { feed(tea.KeyMsg{Type: k}) }
	runes := func(s string) { feed(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}) }

	feed(tea.WindowSizeMsg{Width: 80, Height: 24})
	runes("tok")
	key(tea.KeyEnter)
	runes("key")
	key(tea.KeyEnter)
	key(tea.KeyEnter) // default model
	key(tea.KeyEnter) // no forum
	cmd := feed(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	feed(saveMsg{})

	final := tm.(model)
	assert.Equal(t, len(final.steps), final.current)
	assert.Equal(t, "tok", final.state.Values.DiscordToken)
	assert.Equal(t, "key", final.state.Values.GoogleAPIKey)
	assert.Equal(t, config.GetEnvPath(), final.state.Path)
	assert.Equal(t, "Configuration complete!\n", final.View())
}
