// Package news turns articles into forum posts and publishes the newest
// feed entry on a schedule.
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/budget"
	"github.com/sandevgo/gemibot/pkg/extract"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	maxArticleTokens = 3000
	maxTitleRunes    = 100
	// Discord caps a message, and so a forum starter post, at 2000 characters.
	maxPostRunes = 2000
	maxTags      = 3
)

// ArticleFetcher is the resilient fetcher as seen by the publisher.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) (string, bool)
}

// Forum is the slice of the platform the publisher writes to.
type Forum interface {
	ForumTags(ctx context.Context, forumID string) ([]core.ForumTag, error)
	CreateForumPost(ctx context.Context, forumID string, post core.ForumPost) (string, error)
}

// Post is the generated post for one article.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Published struct {
	Title     string
	ThreadURL string
}

type Publisher struct {
	fetcher ArticleFetcher
	gen     core.Generator
	forum   Forum
	forumID string
	clamp   *budget.Clamp
}

func NewPublisher(fetcher ArticleFetcher, gen core.Generator, forum Forum, forumID string, clamp *budget.Clamp) *Publisher {
	return &Publisher{
		fetcher: fetcher,
		gen:     gen,
		forum:   forum,
		forumID: forumID,
		clamp:   clamp,
	}
}

// Publish reads the article at url, rewrites it as a post and opens a forum
// thread for it. Failures are reportable tool errors.
func (p *Publisher) Publish(ctx context.Context, url string) (Published, error) {
	logger := log.FromCtx(ctx).With().Str("url", url).Logger()

	if p.forumID == "" {
		return Published{}, core.NewToolError(core.KindInvalidArgument, "Форум-канал для новостей не настроен. Проверь FORUM_CHANNEL_ID.")
	}

	article, ok := p.fetcher.FetchArticle(ctx, url)
	if !ok {
		return Published{}, core.NewToolError(core.KindFetchExhausted,
			"Не удалось прочитать статью. Возможно, ссылка неверна, сайт недоступен или истекло время ожидания.")
	}

	post, err := p.generatePost(ctx, article)
	if err != nil {
		return Published{}, err
	}

	tags, err := p.forum.ForumTags(ctx, p.forumID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Published{}, core.WrapToolError(core.KindEntityNotFound, err, "Не удалось найти форум-канал. Проверь FORUM_CHANNEL_ID.")
		}
		return Published{}, core.WrapToolError(core.KindToolExecution, err, "Не удалось получить теги форума.")
	}

	threadURL, err := p.forum.CreateForumPost(ctx, p.forumID, core.ForumPost{
		Title:   truncateRunes(post.Title, maxTitleRunes),
		Content: withSource(post.Content, url),
		TagIDs:  p.selectTags(ctx, post, tags),
	})
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			return Published{}, core.WrapToolError(core.KindPermissionDenied, err, "У меня нет прав на публикацию в форум-канале.")
		}
		return Published{}, core.WrapToolError(core.KindToolExecution, err, "Произошла ошибка при публикации новости.")
	}

	logger.Info().Str("thread", threadURL).Str("title", post.Title).Msg("news published")
	return Published{Title: post.Title, ThreadURL: threadURL}, nil
}

func (p *Publisher) generatePost(ctx context.Context, article string) (Post, error) {
	article = p.clamp.Truncate(article, maxArticleTokens)

	text, err := p.gen.Generate(ctx, []core.Turn{core.UserTurn(core.TextPart(buildPostPrompt(article)))})
	if err != nil {
		return Post{}, fmt.Errorf("failed to generate post: %w", err)
	}

	var post Post
	if err := extract.Object(text, &post); err != nil {
		return Post{}, core.WrapToolError(core.KindGenerationParse, err, "Не смог придумать пост на основе этой статьи.")
	}
	post.Title = strings.TrimSpace(post.Title)
	post.Content = strings.TrimSpace(post.Content)
	if post.Title == "" || post.Content == "" {
		return Post{}, core.NewToolError(core.KindGenerationParse, "Не смог придумать пост на основе этой статьи.")
	}
	return post, nil
}

// selectTags asks the model for 1-3 tag names and keeps those the forum has.
// A failed answer leaves the post untagged.
func (p *Publisher) selectTags(ctx context.Context, post Post, available []core.ForumTag) []string {
	if len(available) == 0 {
		return nil
	}
	logger := log.FromCtx(ctx)

	names := make([]string, len(available))
	for i, t := range available {
		names[i] = t.Name
	}

	text, err := p.gen.Generate(ctx, []core.Turn{
		core.UserTurn(core.TextPart(buildTagsPrompt(post.Title, post.Content, names))),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("tag selection failed")
		return nil
	}

	var chosen []string
	if err := extract.Array(text, &chosen); err != nil {
		logger.Warn().Err(err).Str("response", text).Msg("tag selection unparsable")
		return nil
	}

	return MatchTags(chosen, available)
}

// MatchTags maps chosen names to tag ids by exact name, keeping forum order
// and at most three tags.
func MatchTags(chosen []string, available []core.ForumTag) []string {
	want := make(map[string]struct{}, len(chosen))
	for _, n := range chosen {
		want[strings.TrimSpace(n)] = struct{}{}
	}

	var ids []string
	for _, t := range available {
		if _, ok := want[t.Name]; !ok {
			continue
		}
		ids = append(ids, t.ID)
		if len(ids) == maxTags {
			break
		}
	}
	return ids
}

func withSource(content, url string) string {
	suffix := "\n\n[Источник](" + url + ")"
	room := maxPostRunes - utf8.RuneCountInString(suffix)
	return truncateRunes(content, room) + suffix
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
