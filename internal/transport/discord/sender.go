package discord

import (
	"strings"
	"unicode/utf8"
)

// maxMessageLen is Discord's per-message character limit.
const maxMessageLen = 2000

// splitMessage splits text into chunks of at most maxLen characters. Lines
// are kept whole where possible; a single line longer than maxLen is cut.
// Blank chunks are dropped.
func splitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n+1 > maxLen {
			flush()
		}
		for n > maxLen {
			r := []rune(line)
			chunks = append(chunks, string(r[:maxLen]))
			line = string(r[maxLen:])
			n -= maxLen
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		curLen += n + 1
	}
	flush()
	return chunks
}
