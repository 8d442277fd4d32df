package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Token    string        `env:"DISCORD_TOKEN,required,notEmpty"`
	Forum    int64         `env:"FORUM_CHANNEL_ID"`
	Chance   float64       `env:"CHANCE"`
	Debug    bool          `env:"DEBUG"`
	Interval time.Duration `env:"INTERVAL"`
	Proxies  []string      `env:"PROXIES" envSeparator:";"`
	Title    string        `env:"TITLE"`
	Skipped  string
	hidden   string `env:"HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	out, err := MarshalEnv(&sample{
		Token:    "abc",
		Forum:    42,
		Chance:   0.15,
		Interval: 168 * time.Hour,
		Proxies:  []string{"https://a/?", "https://b/"},
		Title:    "two words",
		Skipped:  "x",
		hidden:   "y",
	})
	require.NoError(t, err)

	assert.Equal(t, "DISCORD_TOKEN=abc\n"+
		"FORUM_CHANNEL_ID=42\n"+
		"CHANCE=0.15\n"+
		"INTERVAL=168h0m0s\n"+
		"PROXIES=https://a/?;https://b/\n"+
		"TITLE=\"two words\"\n", out)
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarshalEnv_RejectsNonPointer(t *testing.T) {
	_, err := MarshalEnv(sample{})
	assert.Error(t, err)
}
