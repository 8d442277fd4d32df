package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"general"}, Variants("General"))

	assert.Equal(t, []string{"вася", "vasya", "vasia"}, Variants("Вася"))
	assert.Equal(t, []string{"юля", "yulya", "iulia"}, Variants("Юля"))
}

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Юлия", "yuliya", true},
		{"Яна", "yana", true},
		{"Щука", "schuka", true},
		{"Ёжик", "yozhik", true},
		{"Гость сервера", "gost servera", true},
		{"чат general", "chat general", true},
		{"чат 🔥", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Transliterate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVariants_UntransliterableKeepsUnidecode(t *testing.T) {
	v := Variants("чат 🔥")
	assert.Equal(t, "чат 🔥", v[0])
	assert.NotContains(t, v, "")
}

func TestVariants_MixedScriptKeepsOriginalFirst(t *testing.T) {
	v := Variants("чат general")
	assert.Equal(t, "чат general", v[0])
	assert.Len(t, v, 2)
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "общий чат", "общий чат", 100},
		{"word order", "чат общий", "общий чат", 100},
		{"subset", "general", "general chat", 100},
		{"punctuation ignored", "general-chat", "general chat", 100},
		{"case ignored", "Модератор", "модератор", 100},
		{"empty", "", "anything", 0},
		{"only punctuation", "!!!", "anything", 0},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b))
		})
	}
}

// Insertions and deletions are scored like thefuzz's Indel ratio.
func TestTokenSetRatio_IndelNormalization(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"mod", "mods", 86},
		{"generl", "general", 92},
		{"gen", "general", 60},
		{"vasia", "vasya", 80},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b))
		})
	}
	assert.GreaterOrEqual(t, TokenSetRatio("mod", "mods"), 80, "passes the role threshold")
}

func TestTokenSetRatio_TypoScoresHigh(t *testing.T) {
	s := TokenSetRatio("модератр", "модератор")
	assert.GreaterOrEqual(t, s, 80)
	assert.Less(t, s, 100)
}

func TestBestMatch(t *testing.T) {
	idx, score, ok := BestMatch("admin", []string{"Moderator", "Admin", "admin"})
	assert.True(t, ok)
	assert.Equal(t, 1, idx, "earlier candidate wins a tie")
	assert.Equal(t, 100, score)

	_, _, ok = BestMatch("admin", nil)
	assert.False(t, ok)
}
