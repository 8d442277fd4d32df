package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/resolver"
)

// Env is the context one invocation runs in: who asked, where, and in reply
// to what.
type Env struct {
	Platform core.Platform
	GuildID  string
	// ChannelID is where the request was posted.
	ChannelID string
	Author    core.User
	// Message is the request itself; its ReferenceID and Mentions drive
	// pin/unpin and user lookups.
	Message core.Message
	BotID   string
}

func (e *Env) InGuild() bool {
	return e.GuildID != ""
}

// mentionedOthers returns users mentioned in the request other than the bot.
func (e *Env) mentionedOthers() []core.User {
	var out []core.User
	for _, u := range e.Message.Mentions {
		if u.ID != e.BotID {
			out = append(out, u)
		}
	}
	return out
}

func (e *Env) selfCandidate() *resolver.Candidate {
	return &resolver.Candidate{ID: e.Author.ID, Name: e.Author.Name()}
}

// resolveMember finds a guild member by name. An empty query or a
// self-reference means the author.
func (e *Env) resolveMember(ctx context.Context, query string, members []core.Member) (core.Member, error) {
	id := e.Author.ID
	if strings.TrimSpace(query) != "" {
		m, err := resolver.Resolve(ctx, resolver.Query{
			Text:       query,
			Kind:       resolver.KindUser,
			Candidates: resolver.MemberCandidates(members),
			Threshold:  resolver.ThresholdDefault,
			Self:       e.selfCandidate(),
		})
		if err != nil {
			return core.Member{}, err
		}
		id = m.ID
	}
	return findMember(members, id)
}

func findMember(members []core.Member, id string) (core.Member, error) {
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return core.Member{}, core.NewToolError(core.KindEntityNotFound, "Не удалось найти этого участника на сервере.")
}

// Args are the named arguments of an invocation as decoded from JSON.
type Args map[string]any

// Str returns a non-blank string argument.
func (a Args) Str(key string) (string, bool) {
	v, ok := a[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Optional returns a string argument or "".
func (a Args) Optional(key string) string {
	v, _ := a.Str(key)
	return v
}

// Has reports whether key is present with a non-null value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Int accepts JSON numbers and numeric strings.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("'%s' must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("'%s' must be an integer", key)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("'%s' must be an integer", key)
	}
}

// Strings accepts a JSON array of strings or a single string.
func (a Args) Strings(key string) []string {
	switch v := a[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

// parseColor reads #RRGGBB (the hash is optional).
func parseColor(hex string) (int, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	v, err := strconv.ParseInt(h, 16, 32)
	if err != nil || v < 0 || v > 0xFFFFFF {
		return 0, core.NewToolError(core.KindInvalidArgument, "Неверный формат цвета '%s'.", hex)
	}
	return int(v), nil
}

func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
