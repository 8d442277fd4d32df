package resolver

import (
	"context"
	"testing"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TransliterationRoundTrip(t *testing.T) {
	queries := []string{"Вася", "общий чат", "Модератор", "Гость сервера"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			target, ok := Transliterate(q)
			require.True(t, ok)
			candidates := []Candidate{
				{ID: "noise-1", Name: "zzz"},
				{ID: "target", Name: target},
				{ID: "noise-2", Name: "qwerty uiop"},
			}

			m, err := Resolve(context.Background(), Query{
				Text:       q,
				Kind:       KindChannel,
				Candidates: candidates,
				Threshold:  ThresholdDefault,
			})
			require.NoError(t, err)
			assert.Equal(t, "target", m.ID)
		})
	}
}

func TestResolve_NicknameSpellings(t *testing.T) {
	tests := []struct {
		query string
		name  string
	}{
		{"Юля", "yulya"},
		{"Юлия", "yuliya"},
		{"Вася", "vasya"},
		{"Яна", "yana"},
		{"Вася", "vasia"},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.name, func(t *testing.T) {
			m, err := Resolve(context.Background(), Query{
				Text:       tt.query,
				Kind:       KindUser,
				Candidates: []Candidate{{ID: "noise", Name: "petya"}, {ID: "target", Name: tt.name}},
				Threshold:  ThresholdDefault,
			})
			require.NoError(t, err)
			assert.Equal(t, "target", m.ID)
			assert.Equal(t, 100, m.Score)
		})
	}
}

func TestResolve_RoleWithOneLetterMissing(t *testing.T) {
	m, err := Resolve(context.Background(), Query{
		Text:       "mod",
		Kind:       KindRole,
		Candidates: []Candidate{{ID: "r1", Name: "mods"}},
		Threshold:  ThresholdRole,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", m.ID)
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	candidates := []Candidate{{ID: "1", Name: "general"}}
	queries := []string{"generl", "genral chat", "gen"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			s := TokenSetRatio(q, "general")
			require.Greater(t, s, 0)

			_, err := Resolve(context.Background(), Query{Text: q, Kind: KindChannel, Candidates: candidates, Threshold: s})
			assert.NoError(t, err, "score == threshold must be accepted")

			_, err = Resolve(context.Background(), Query{Text: q, Kind: KindChannel, Candidates: candidates, Threshold: s + 1})
			assert.True(t, core.IsKind(err, core.KindEntityNotFound), "score == threshold-1 must be rejected")
		})
	}
}

func TestResolve_SelfReference(t *testing.T) {
	self := &Candidate{ID: "author", Name: "author"}
	for _, token := range []string{"me", "Я", "мне", " у меня "} {
		m, err := Resolve(context.Background(), Query{
			Text:      token,
			Kind:      KindUser,
			Threshold: ThresholdDefault,
			Self:      self,
		})
		require.NoError(t, err, token)
		assert.Equal(t, "author", m.ID)
	}
}

func TestResolve_FirstVariantWinsTies(t *testing.T) {
	latin, _ := Transliterate("мод")
	candidates := []Candidate{
		{ID: "latin", Name: latin},
		{ID: "cyrillic", Name: "мод"},
	}
	m, err := Resolve(context.Background(), Query{Text: "мод", Kind: KindRole, Candidates: candidates, Threshold: ThresholdRole})
	require.NoError(t, err)
	assert.Equal(t, "cyrillic", m.ID)
	assert.Equal(t, "мод", m.Variant)
}

// Two roles with one name cannot be told apart; the first listed wins.
func TestResolve_NameCollisionIsNotDisambiguated(t *testing.T) {
	candidates := RoleCandidates([]core.Role{
		{ID: "first", Name: "Admin"},
		{ID: "second", Name: "Admin"},
	})
	m, err := Resolve(context.Background(), Query{Text: "admin", Kind: KindRole, Candidates: candidates, Threshold: ThresholdRole})
	require.NoError(t, err)
	assert.Equal(t, "first", m.ID)
}

func TestResolve_ExactFirst(t *testing.T) {
	candidates := []Candidate{
		{ID: "1", Name: "General Voice"},
		{ID: "2", Name: "general"},
	}

	m, err := Resolve(context.Background(), Query{Text: "general", Kind: KindVoiceChannel, Candidates: candidates, Threshold: ThresholdDefault})
	require.NoError(t, err)
	assert.Equal(t, "1", m.ID, "without exact preference the first 100 wins")

	m, err = Resolve(context.Background(), Query{Text: "general", Kind: KindVoiceChannel, Candidates: candidates, Threshold: ThresholdDefault, ExactFirst: true})
	require.NoError(t, err)
	assert.Equal(t, "2", m.ID)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve(context.Background(), Query{
		Text:       "несуществующая",
		Kind:       KindRole,
		Candidates: []Candidate{{ID: "1", Name: "Admin"}},
		Threshold:  ThresholdRole,
	})
	te, ok := core.AsToolError(err)
	require.True(t, ok)
	assert.Equal(t, core.KindEntityNotFound, te.Kind)
	assert.Contains(t, te.Message, "несуществующая")

	_, err = Resolve(context.Background(), Query{Text: "x", Kind: KindRole, Threshold: 0})
	assert.True(t, core.IsKind(err, core.KindEntityNotFound), "empty candidate list never matches")
}

func TestMemberCandidates(t *testing.T) {
	members := []core.Member{
		{User: core.User{ID: "1", Username: "vasya_p", DisplayName: "Вася Пупкин"}},
		{User: core.User{ID: "2", Username: "petya", DisplayName: "Petya"}},
	}
	got := MemberCandidates(members)
	assert.Equal(t, []Candidate{
		{ID: "1", Name: "вася пупкин"},
		{ID: "2", Name: "petya"},
		{ID: "1", Name: "vasya_p"},
	}, got)

	m, err := Resolve(context.Background(), Query{Text: "vasya_p", Kind: KindUser, Candidates: got, Threshold: ThresholdDefault})
	require.NoError(t, err)
	assert.Equal(t, "1", m.ID)
}

func TestChannelCandidates(t *testing.T) {
	channels := []core.Channel{
		{ID: "t", Name: "chat", Kind: core.ChannelText},
		{ID: "v", Name: "voice", Kind: core.ChannelVoice},
		{ID: "c", Name: "cat", Kind: core.ChannelCategory},
	}
	assert.Len(t, ChannelCandidates(channels), 3)
	assert.Equal(t, []Candidate{{ID: "v", Name: "voice"}}, ChannelCandidates(channels, core.ChannelVoice))
}

func TestExpandMentions(t *testing.T) {
	members := []core.Member{
		{User: core.User{ID: "1", Username: "vasya", DisplayName: "Вася"}},
	}

	out := ExpandMentions(context.Background(), "Привет, MENTION{вася}! И MENTION{Никто}.", members)
	assert.Equal(t, "Привет, <@1>! И Никто.", out)

	assert.Equal(t, "no placeholders", ExpandMentions(context.Background(), "no placeholders", members))
}
