// Package budget trims prompt material to a token budget.
package budget

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// runesPerToken approximates the tokenizer when the BPE ranks are unavailable.
// Cyrillic text averages fewer runes per token than English, so this errs short.
const runesPerToken = 3

var (
	tokenizer     *tiktoken.Tiktoken
	tokenizerOnce sync.Once
)

func sharedTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			return
		}
		tokenizer = tk
	})
	return tokenizer
}

type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Clamp counts and truncates text by tokens.
type Clamp struct {
	enc encoder
}

// New uses the cl100k tokenizer, falling back to a rune estimate when its
// ranks cannot be loaded.
func New() *Clamp {
	c := &Clamp{}
	if tk := sharedTokenizer(); tk != nil {
		c.enc = tk
	}
	return c
}

// NewApprox never touches the tokenizer.
func NewApprox() *Clamp {
	return &Clamp{}
}

func (c *Clamp) Tokens(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return (utf8.RuneCountInString(text) + runesPerToken - 1) / runesPerToken
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text that fits in maxTokens.
func (c *Clamp) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if c.enc == nil {
		return truncateRunes(text, maxTokens*runesPerToken)
	}

	ids := c.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	// A cut can land inside a multi-byte rune.
	return strings.ToValidUTF8(c.enc.Decode(ids[:maxTokens]), "")
}

func truncateRunes(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
