package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/pkg/env"
)

// SaveStep writes the collected values to the runtime env file.
type SaveStep struct {
	overwrite bool
	err       error
}

type saveMsg struct{}

func NewSaveStep(overwrite bool) Step {
	return &SaveStep{overwrite: overwrite}
}

func (s *SaveStep) Init() tea.Cmd {
	return func() tea.Msg { return saveMsg{} }
}

func (s *SaveStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	if _, ok := msg.(saveMsg); !ok {
		return s, nil
	}
	path, err := Save(&state.Values, s.overwrite)
	if err != nil {
		s.err = err
		return s, nil
	}
	state.Path = path
	return nil, nil
}

func (s *SaveStep) View(state *State) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n" + hintStyle.Render("(press ctrl+c to quit)") + "\n"
	}
	return "Saving configuration...\n"
}

// Save renders values as an env file under the runtime directory and
// returns its path. An existing file is kept unless overwrite is set.
func Save(values *config.SetupValues, overwrite bool) (string, error) {
	if err := os.MkdirAll(config.GetRuntimePath(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}

	path := config.GetEnvPath()
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists, rerun with --force to replace it", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	content, err := env.MarshalEnv(values)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Clean(path), []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
