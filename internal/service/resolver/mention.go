package resolver

import (
	"context"
	"regexp"

	"github.com/sandevgo/gemibot/internal/core"
)

var mentionRe = regexp.MustCompile(`MENTION\{([^}]+)\}`)

// ExpandMentions replaces MENTION{name} placeholders with platform mentions of
// the best matching member. Unmatched placeholders fall back to the bare name.
func ExpandMentions(ctx context.Context, text string, members []core.Member) string {
	if text == "" || !mentionRe.MatchString(text) {
		return text
	}
	candidates := MemberCandidates(members)

	return mentionRe.ReplaceAllStringFunc(text, func(placeholder string) string {
		name := mentionRe.FindStringSubmatch(placeholder)[1]
		m, err := Resolve(ctx, Query{
			Text:       name,
			Kind:       KindUser,
			Candidates: candidates,
			Threshold:  ThresholdMention,
		})
		if err != nil {
			return name
		}
		return core.User{ID: m.ID}.Mention()
	})
}
