package history

import (
	"slices"
	"sync"

	"github.com/sandevgo/gemibot/internal/core"
)

// MemoryBackend keeps histories in a map for the lifetime of the process.
// The lock guards the map only; a Load followed by a Save is not atomic.
type MemoryBackend struct {
	mu    sync.RWMutex
	turns map[string][]core.Turn
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{turns: make(map[string][]core.Turn)}
}

func (m *MemoryBackend) Load(key string) ([]core.Turn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.turns[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(t), true
}

func (m *MemoryBackend) Save(key string, turns []core.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[key] = slices.Clone(turns)
}

// Len reports the number of live scopes.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}
