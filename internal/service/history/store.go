// Package history keeps the per-scope turn lists the agent talks through.
package history

import (
	"context"
	"slices"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

// Store maps scope keys to turn histories. New guild and DM scopes start
// with the preamble; threads start from a copy of their parent.
type Store struct {
	backend  core.HistoryBackend
	preamble []core.Turn
}

func NewStore(backend core.HistoryBackend, preamble []core.Turn) *Store {
	return &Store{
		backend:  backend,
		preamble: slices.Clone(preamble),
	}
}

// GetOrCreate returns the history of scope, creating it on first use.
func (s *Store) GetOrCreate(ctx context.Context, scope Scope) []core.Turn {
	key := scope.Key()
	if turns, ok := s.backend.Load(key); ok {
		return turns
	}

	logger := log.FromCtx(ctx).With().Str("scope", key).Logger()

	var turns []core.Turn
	switch scope.Kind {
	case ScopeThread:
		if parent, ok := s.backend.Load(scope.Parent); ok {
			turns = parent
			logger.Debug().Str("parent", scope.Parent).Int("turns", len(parent)).Msg("thread history seeded from parent")
		} else {
			turns = []core.Turn{}
			logger.Debug().Str("parent", scope.Parent).Msg("thread history started empty")
		}
	default:
		turns = slices.Clone(s.preamble)
		logger.Debug().Msg("history started with preamble")
	}

	s.backend.Save(key, turns)
	return slices.Clone(turns)
}

// Append adds turns to the end of the scope's history.
func (s *Store) Append(scope Scope, turns ...core.Turn) {
	key := scope.Key()
	current, _ := s.backend.Load(key)
	s.backend.Save(key, append(current, turns...))
}

// Snapshot returns a copy of the history stored under key.
func (s *Store) Snapshot(key string) ([]core.Turn, bool) {
	return s.backend.Load(key)
}

// Copy replaces the history at toKey with an independent copy of the one at
// fromKey. It reports false and leaves toKey alone when fromKey is unknown.
func (s *Store) Copy(ctx context.Context, fromKey, toKey string) bool {
	turns, ok := s.backend.Load(fromKey)
	if !ok {
		return false
	}
	s.backend.Save(toKey, slices.Clone(turns))
	log.FromCtx(ctx).Info().Str("from", fromKey).Str("to", toKey).Int("turns", len(turns)).Msg("history copied")
	return true
}
