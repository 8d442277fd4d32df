package setup

import "github.com/sandevgo/gemibot/internal/config"

// State accumulates the answers as the wizard advances.
type State struct {
	Values config.SetupValues
	// Path is where the env file ended up once saved.
	Path string
}

func NewState() *State {
	return &State{}
}
