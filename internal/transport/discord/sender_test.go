package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"привет"}, splitMessage("привет", maxMessageLen))
	assert.Nil(t, splitMessage("  \n ", maxMessageLen))
}

func TestSplitMessage_KeepsLinesWhole(t *testing.T) {
	line := strings.Repeat("я", 900)
	text := line + "\n" + line + "\n" + line

	chunks := splitMessage(text, maxMessageLen)

	require.Len(t, chunks, 2)
	assert.Equal(t, line+"\n"+line, chunks[0])
	assert.Equal(t, line, chunks[1])
}

func TestSplitMessage_CutsOverlongLine(t *testing.T) {
	text := strings.Repeat("a", 4500)

	chunks := splitMessage(text, maxMessageLen)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), maxMessageLen)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
