package test

import (
	"context"
	"errors"
	"sync"

	"github.com/sandevgo/gemibot/internal/core"
)

var ErrNoReply = errors.New("generator: no scripted reply left")

// Generator replays scripted completions in order and records every
// request it receives.
type Generator struct {
	mu       sync.Mutex
	Replies  []string
	Err      error
	Requests [][]core.Turn
}

func NewGenerator(replies ...string) *Generator {
	return &Generator{Replies: replies}
}

func (g *Generator) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([]core.Turn, len(turns))
	copy(cp, turns)
	g.Requests = append(g.Requests, cp)

	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Replies) == 0 {
		return "", ErrNoReply
	}
	r := g.Replies[0]
	g.Replies = g.Replies[1:]
	return r, nil
}

func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}

// LastText returns the text of the final turn of the last request.
func (g *Generator) LastText() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Requests) == 0 {
		return ""
	}
	req := g.Requests[len(g.Requests)-1]
	var out string
	for _, p := range req[len(req)-1].Parts {
		if p.Kind == core.PartText {
			out += p.Text
		}
	}
	return out
}
