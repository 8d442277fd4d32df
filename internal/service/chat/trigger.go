package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Triggers detects the wake words that open a direct command.
type Triggers struct {
	words []string
	// strip holds the compiled prefix pattern of every word.
	strip map[string]*regexp.Regexp
}

func NewTriggers(words []string) Triggers {
	t := Triggers{
		words: make([]string, 0, len(words)),
		strip: make(map[string]*regexp.Regexp, len(words)),
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := t.strip[w]; dup {
			continue
		}
		t.words = append(t.words, w)
		t.strip[w] = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(w) + `[ ,.!?]*`)
	}
	return t
}

// Match returns the trigger word the message starts with. The word must be
// followed by the end of the text or by a character that is not a letter
// or digit, so "геминия" does not match "гемини".
func (t Triggers) Match(content string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(content))
	for _, w := range t.words {
		if !strings.HasPrefix(lower, w) {
			continue
		}
		rest := lower[len(w):]
		if rest == "" {
			return w, true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return w, true
		}
	}
	return "", false
}

// Strip removes a leading trigger word and the punctuation after it. Words
// outside the set leave text unchanged.
func (t Triggers) Strip(text, trigger string) string {
	re, ok := t.strip[trigger]
	if !ok {
		return text
	}
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}
