package tools

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/news"
	"github.com/sandevgo/gemibot/pkg/budget"
	"github.com/sandevgo/gemibot/test"
)

var (
	alice = core.User{ID: "u1", Username: "alice", DisplayName: "Alice"}
	bob   = core.User{ID: "u2", Username: "bob", DisplayName: "Bobby"}
)

type copyCall struct{ from, to string }

type recordingCopier struct {
	mu    sync.Mutex
	calls []copyCall
}

func (c *recordingCopier) Copy(ctx context.Context, from, to string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, copyCall{from, to})
	return true
}

type stubPublisher struct {
	urls []string
	res  news.Published
	err  error
}

func (s *stubPublisher) Publish(ctx context.Context, url string) (news.Published, error) {
	s.urls = append(s.urls, url)
	return s.res, s.err
}

type fixture struct {
	platform  *test.Platform
	gen       *test.Generator
	copier    *recordingCopier
	publisher *stubPublisher
	registry  *Registry
	env       *Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := test.NewPlatform()
	p.RolesList = []core.Role{
		{ID: "r0", Name: "@everyone"},
		{ID: "r1", Name: "Moderator", Position: 2},
		{ID: "r2", Name: "VIP", Position: 1},
	}
	p.MembersList = []core.Member{
		{User: alice, RoleIDs: []string{"r0", "r1"}},
		{User: bob, RoleIDs: []string{"r0"}},
	}
	p.ChannelsList = []core.Channel{
		{ID: "c1", GuildID: "g1", Name: "general", Kind: core.ChannelText},
		{ID: "c2", GuildID: "g1", Name: "news", Kind: core.ChannelText},
		{ID: "v1", GuildID: "g1", Name: "lobby", Kind: core.ChannelVoice},
		{ID: "v2", GuildID: "g1", Name: "music", Kind: core.ChannelVoice},
		{ID: "k1", GuildID: "g1", Name: "Text Channels", Kind: core.ChannelCategory},
	}

	f := &fixture{
		platform:  p,
		gen:       test.NewGenerator(),
		copier:    &recordingCopier{},
		publisher: &stubPublisher{},
	}
	tb := NewToolbox(f.gen, f.copier, f.publisher, budget.NewApprox(), nil)
	f.registry = tb.Registry()
	f.env = &Env{
		Platform:  p,
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    alice,
		Message:   core.Message{ID: "req", ChannelID: "c1", GuildID: "g1", Author: alice},
		BotID:     "bot",
	}
	return f
}

func (f *fixture) run(t *testing.T, tool string, args map[string]any) (Result, error) {
	t.Helper()
	return f.registry.Execute(context.Background(), f.env, core.ToolInvocation{Name: tool, Args: args})
}

func (f *fixture) mustRun(t *testing.T, tool string, args map[string]any) string {
	t.Helper()
	res, err := f.run(t, tool, args)
	require.NoError(t, err)
	return res.Output
}

func requireKind(t *testing.T, err error, kind core.ErrorKind) *core.ToolError {
	t.Helper()
	te, ok := core.AsToolError(err)
	require.True(t, ok, "expected a tool error, got %v", err)
	require.Equal(t, kind, te.Kind, te.Message)
	return te
}
