// Package resolver maps loose natural-language references onto platform
// objects by fuzzy name matching.
package resolver

import (
	"context"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

type Kind string

const (
	KindRole         Kind = "role"
	KindUser         Kind = "user"
	KindChannel      Kind = "channel"
	KindVoiceChannel Kind = "voice_channel"
)

// Acceptance thresholds by action.
const (
	ThresholdRole        = 80
	ThresholdDefault     = 70
	ThresholdDestructive = 85
	ThresholdMention     = 80
)

var selfReferences = map[string]struct{}{
	"me": {}, "my": {}, "i": {},
	"мои": {}, "я": {}, "у меня": {}, "мне": {},
}

// IsSelfReference reports whether text refers to the speaker.
func IsSelfReference(text string) bool {
	_, ok := selfReferences[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Candidate is a named platform object. Several candidates may share an ID
// when an object is known under more than one name.
type Candidate struct {
	ID   string
	Name string
}

type Query struct {
	Text       string
	Kind       Kind
	Candidates []Candidate
	Threshold  int
	// Self is returned for self-reference tokens when set.
	Self *Candidate
	// ExactFirst accepts a case-insensitive exact name match before scoring.
	ExactFirst bool
}

type Match struct {
	Candidate
	Score   int
	Variant string
}

// Resolve returns the best candidate for q or an EntityNotFound tool error.
// Candidates with equal names are not disambiguated: the first one wins.
func Resolve(ctx context.Context, q Query) (Match, error) {
	logger := log.FromCtx(ctx)

	if q.Self != nil && IsSelfReference(q.Text) {
		return Match{Candidate: *q.Self, Score: 100, Variant: q.Text}, nil
	}

	names := make([]string, len(q.Candidates))
	for i, c := range q.Candidates {
		names[i] = c.Name
	}

	variants := Variants(q.Text)

	if q.ExactFirst {
		for _, v := range variants {
			for i, n := range names {
				if strings.EqualFold(n, v) {
					return Match{Candidate: q.Candidates[i], Score: 100, Variant: v}, nil
				}
			}
		}
	}

	best := Match{Score: -1}
	for _, v := range variants {
		idx, score, ok := BestMatch(v, names)
		if ok && score > best.Score {
			best = Match{Candidate: q.Candidates[idx], Score: score, Variant: v}
		}
	}

	logger.Debug().
		Str("kind", string(q.Kind)).
		Str("query", q.Text).
		Str("match", best.Name).
		Int("score", best.Score).
		Int("threshold", q.Threshold).
		Msg("entity resolution")

	if best.Score < 0 || best.Score < q.Threshold {
		return Match{}, notFound(q.Kind, q.Text)
	}
	return best, nil
}

func notFound(kind Kind, text string) *core.ToolError {
	switch kind {
	case KindRole:
		return core.NewToolError(core.KindEntityNotFound, "Не удалось найти роль, похожую на '%s'.", text)
	case KindUser:
		return core.NewToolError(core.KindEntityNotFound, "Не удалось найти пользователя, похожего на '%s'.", text)
	case KindVoiceChannel:
		return core.NewToolError(core.KindEntityNotFound, "Не удалось найти голосовой канал, похожий на '%s'.", text)
	default:
		return core.NewToolError(core.KindEntityNotFound, "Не удалось найти канал, похожий на '%s'.", text)
	}
}

func RoleCandidates(roles []core.Role) []Candidate {
	out := make([]Candidate, 0, len(roles))
	for _, r := range roles {
		out = append(out, Candidate{ID: r.ID, Name: r.Name})
	}
	return out
}

// MemberCandidates lists every member under its lowercased display name and
// then its lowercased username, dropping repeated names.
func MemberCandidates(members []core.Member) []Candidate {
	seen := make(map[string]struct{}, len(members)*2)
	out := make([]Candidate, 0, len(members)*2)
	add := func(id, name string) {
		name = strings.ToLower(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, Candidate{ID: id, Name: name})
	}
	for _, m := range members {
		add(m.ID, m.DisplayName)
	}
	for _, m := range members {
		add(m.ID, m.Username)
	}
	return out
}

// ChannelCandidates lists channels of the given kinds, all kinds when none given.
func ChannelCandidates(channels []core.Channel, kinds ...core.ChannelKind) []Candidate {
	out := make([]Candidate, 0, len(channels))
	for _, c := range channels {
		if len(kinds) > 0 && !containsKind(kinds, c.Kind) {
			continue
		}
		out = append(out, Candidate{ID: c.ID, Name: c.Name})
	}
	return out
}

func containsKind(kinds []core.ChannelKind, k core.ChannelKind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}
