package history

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/core"
)

var preamble = []core.Turn{
	core.UserTurn(core.TextPart("persona")),
	core.ModelTurn("ok"),
}

func newStore() *Store {
	return NewStore(NewMemoryBackend(), preamble)
}

func TestStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(s *Store)
		scope Scope
		want  []core.Turn
	}{
		{
			name:  "new guild starts with preamble",
			scope: GuildScope("g1"),
			want:  preamble,
		},
		{
			name:  "new dm starts with preamble",
			scope: DMScope("c1"),
			want:  preamble,
		},
		{
			name: "thread inherits guild history",
			setup: func(s *Store) {
				s.GetOrCreate(ctx, GuildScope("g1"))
				s.Append(GuildScope("g1"), core.UserTurn(core.TextPart("hi")), core.ModelTurn("hello"))
			},
			scope: ThreadScope("t1", "g1"),
			want: append(append([]core.Turn{}, preamble...),
				core.UserTurn(core.TextPart("hi")), core.ModelTurn("hello")),
		},
		{
			name:  "thread without parent starts empty",
			scope: ThreadScope("t1", "g2"),
			want:  []core.Turn{},
		},
		{
			name:  "thread outside guild uses dm base",
			scope: ThreadScope("t2", ""),
			want:  []core.Turn{},
		},
		{
			name: "existing history is returned as is",
			setup: func(s *Store) {
				s.GetOrCreate(ctx, DMScope("c1"))
				s.Append(DMScope("c1"), core.ModelTurn("again"))
			},
			scope: DMScope("c1"),
			want:  append(append([]core.Turn{}, preamble...), core.ModelTurn("again")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			if tt.setup != nil {
				tt.setup(s)
			}
			got := s.GetOrCreate(ctx, tt.scope)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetOrCreate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_ThreadSeedIsIndependent(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	guild := GuildScope("g1")
	thread := ThreadScope("t1", "g1")

	s.GetOrCreate(ctx, guild)
	s.GetOrCreate(ctx, thread)
	s.Append(thread, core.UserTurn(core.TextPart("thread only")))

	got, ok := s.Snapshot(guild.Key())
	require.True(t, ok)
	if diff := cmp.Diff(preamble, got); diff != "" {
		t.Errorf("parent changed by thread append (-want +got):\n%s", diff)
	}
}

func TestStore_CopyIsIndependent(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	a := GuildScope("g1")
	b := DMScope("c1")

	s.GetOrCreate(ctx, a)
	s.Append(a, core.UserTurn(core.TextPart("server talk")))
	before, _ := s.Snapshot(a.Key())

	require.True(t, s.Copy(ctx, a.Key(), b.Key()))
	s.Append(b, core.UserTurn(core.TextPart("private talk")), core.ModelTurn("sure"))

	afterA, _ := s.Snapshot(a.Key())
	if diff := cmp.Diff(before, afterA); diff != "" {
		t.Errorf("source changed after mutating copy (-want +got):\n%s", diff)
	}

	gotB, _ := s.Snapshot(b.Key())
	assert.Len(t, gotB, len(before)+2)

	s.Append(a, core.ModelTurn("server only"))
	gotB2, _ := s.Snapshot(b.Key())
	assert.Equal(t, gotB, gotB2)
}

func TestStore_CopyUnknownSource(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.GetOrCreate(ctx, DMScope("c1"))
	s.Append(DMScope("c1"), core.ModelTurn("keep"))

	assert.False(t, s.Copy(ctx, GuildScope("missing").Key(), DMScope("c1").Key()))

	got, _ := s.Snapshot(DMScope("c1").Key())
	assert.Len(t, got, len(preamble)+1)
}

func TestStore_CopyOverwritesTarget(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.GetOrCreate(ctx, GuildScope("g1"))
	s.GetOrCreate(ctx, DMScope("c1"))
	s.Append(DMScope("c1"), core.ModelTurn("old dm"))

	require.True(t, s.Copy(ctx, GuildScope("g1").Key(), DMScope("c1").Key()))

	got, _ := s.Snapshot(DMScope("c1").Key())
	if diff := cmp.Diff(preamble, got); diff != "" {
		t.Errorf("target not replaced (-want +got):\n%s", diff)
	}
}

func TestStore_PreambleNotShared(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	first := s.GetOrCreate(ctx, GuildScope("g1"))
	first[0] = core.ModelTurn("tampered")

	second := s.GetOrCreate(ctx, GuildScope("g2"))
	assert.Equal(t, preamble[0], second[0])
}

func TestScope_Key(t *testing.T) {
	assert.Equal(t, "guild:1", GuildScope("1").Key())
	assert.Equal(t, "dm:2", DMScope("2").Key())
	assert.Equal(t, "thread:3", ThreadScope("3", "1").Key())
	assert.Equal(t, "guild:1", ThreadScope("3", "1").Parent)
	assert.Equal(t, DMBaseKey, ThreadScope("3", "").Parent)
}
