package news

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/budget"
	"github.com/sandevgo/gemibot/pkg/srv"
)

type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	last := turns[len(turns)-1]
	g.prompts = append(g.prompts, last.Parts[0].Text)
	if len(g.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

type fakeArticles struct {
	text string
	ok   bool
	urls []string
}

func (f *fakeArticles) FetchArticle(ctx context.Context, url string) (string, bool) {
	f.urls = append(f.urls, url)
	return f.text, f.ok
}

type fakeForum struct {
	mu    sync.Mutex
	tags  []core.ForumTag
	posts []core.ForumPost
	err   error
}

func (f *fakeForum) ForumTags(ctx context.Context, forumID string) ([]core.ForumTag, error) {
	return f.tags, nil
}

func (f *fakeForum) CreateForumPost(ctx context.Context, forumID string, post core.ForumPost) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.posts = append(f.posts, post)
	return "https://discord.com/channels/1/99", nil
}

func (f *fakeForum) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

var forumTags = []core.ForumTag{
	{ID: "t1", Name: "Технологии"},
	{ID: "t2", Name: "ИИ"},
	{ID: "t3", Name: "Игры"},
}

func TestPublisher_Publish(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"```json\n{\"title\": \"Новая модель\", \"content\": \"Смотрите, что вышло!\"}\n```",
		`Вот теги: ["ИИ", "Технологии", "Кулинария"]`,
	}}
	articles := &fakeArticles{text: "Текст статьи", ok: true}
	forum := &fakeForum{tags: forumTags}
	p := NewPublisher(articles, gen, forum, "forum", budget.NewApprox())

	res, err := p.Publish(context.Background(), "https://habr.com/ru/articles/1/")
	require.NoError(t, err)

	assert.Equal(t, "Новая модель", res.Title)
	assert.Equal(t, "https://discord.com/channels/1/99", res.ThreadURL)
	require.Len(t, forum.posts, 1)
	post := forum.posts[0]
	assert.Equal(t, "Новая модель", post.Title)
	assert.Equal(t, "Смотрите, что вышло!\n\n[Источник](https://habr.com/ru/articles/1/)", post.Content)
	assert.Equal(t, []string{"t1", "t2"}, post.TagIDs)
	assert.Contains(t, gen.prompts[0], "Текст статьи")
	assert.Contains(t, gen.prompts[1], "Технологии, ИИ, Игры")
}

func TestPublisher_Errors(t *testing.T) {
	tests := []struct {
		name     string
		articles *fakeArticles
		replies  []string
		forumID  string
		wantKind core.ErrorKind
	}{
		{
			name:     "article unavailable",
			articles: &fakeArticles{ok: false},
			forumID:  "forum",
			wantKind: core.KindFetchExhausted,
		},
		{
			name:     "post not json",
			articles: &fakeArticles{text: "x", ok: true},
			replies:  []string{"Извини, не могу."},
			forumID:  "forum",
			wantKind: core.KindGenerationParse,
		},
		{
			name:     "post missing title",
			articles: &fakeArticles{text: "x", ok: true},
			replies:  []string{`{"content": "только текст"}`},
			forumID:  "forum",
			wantKind: core.KindGenerationParse,
		},
		{
			name:     "forum not configured",
			articles: &fakeArticles{text: "x", ok: true},
			wantKind: core.KindInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forum := &fakeForum{tags: forumTags}
			p := NewPublisher(tt.articles, &scriptedGenerator{replies: tt.replies}, forum, tt.forumID, budget.NewApprox())

			_, err := p.Publish(context.Background(), "https://example.com/a")
			require.Error(t, err)
			assert.True(t, core.IsKind(err, tt.wantKind), "got %v", err)
			assert.Empty(t, forum.posts)
		})
	}
}

func TestPublisher_TagFailureStillPosts(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"title": "T", "content": "C"}`, "не знаю"}}
	forum := &fakeForum{tags: forumTags}
	p := NewPublisher(&fakeArticles{text: "x", ok: true}, gen, forum, "forum", budget.NewApprox())

	_, err := p.Publish(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	require.Len(t, forum.posts, 1)
	assert.Empty(t, forum.posts[0].TagIDs)
}

func TestPublisher_ForbiddenForum(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"title": "T", "content": "C"}`, `[]`}}
	forum := &fakeForum{tags: forumTags, err: core.ErrForbidden}
	p := NewPublisher(&fakeArticles{text: "x", ok: true}, gen, forum, "forum", budget.NewApprox())

	_, err := p.Publish(context.Background(), "https://example.com/a")
	assert.True(t, core.IsKind(err, core.KindPermissionDenied))
}

func TestMatchTags(t *testing.T) {
	tags := append(append([]core.ForumTag{}, forumTags...), core.ForumTag{ID: "t4", Name: "Наука"})

	assert.Equal(t, []string{"t1", "t2", "t3"}, MatchTags([]string{"Наука", "Игры", "ИИ", "Технологии"}, tags))
	assert.Empty(t, MatchTags([]string{"игры"}, tags))
	assert.Equal(t, []string{"t2"}, MatchTags([]string{" ИИ "}, tags))
}

func TestWithSource_FitsMessageLimit(t *testing.T) {
	long := strings.Repeat("я", 3000)
	got := withSource(long, "https://example.com")
	assert.Equal(t, maxPostRunes, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "[Источник](https://example.com)"))
}

type memoryLedger struct {
	mu     sync.Mutex
	posted map[string]core.PostedNews
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{posted: map[string]core.PostedNews{}}
}

func (m *memoryLedger) IsPosted(ctx context.Context, link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.posted[link]
	return ok, nil
}

func (m *memoryLedger) MarkPosted(ctx context.Context, entry core.PostedNews) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted[entry.Link] = entry
	return nil
}

func (m *memoryLedger) LastPosted(ctx context.Context) (core.PostedNews, bool, error) {
	return core.PostedNews{}, false, nil
}

type fakeFeeds struct {
	feed *gofeed.Feed
	ok   bool
}

func (f *fakeFeeds) FetchFeed(ctx context.Context, url string) (*gofeed.Feed, bool) {
	return f.feed, f.ok
}

func newsFeed(links ...string) *gofeed.Feed {
	feed := &gofeed.Feed{}
	for _, l := range links {
		feed.Items = append(feed.Items, &gofeed.Item{Link: l})
	}
	return feed
}

func TestDigest_Run(t *testing.T) {
	tests := []struct {
		name      string
		feeds     *fakeFeeds
		preposted string
		wantPosts int
	}{
		{
			name:      "publishes newest entry",
			feeds:     &fakeFeeds{feed: newsFeed("https://habr.com/2", "https://habr.com/1"), ok: true},
			wantPosts: 1,
		},
		{
			name:      "skips already posted entry",
			feeds:     &fakeFeeds{feed: newsFeed("https://habr.com/2"), ok: true},
			preposted: "https://habr.com/2",
			wantPosts: 0,
		},
		{
			name:      "feed unavailable",
			feeds:     &fakeFeeds{ok: false},
			wantPosts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newMemoryLedger()
			if tt.preposted != "" {
				ledger.posted[tt.preposted] = core.PostedNews{Link: tt.preposted}
			}
			gen := &scriptedGenerator{replies: []string{`{"title": "T", "content": "C"}`, `["ИИ"]`}}
			articles := &fakeArticles{text: "x", ok: true}
			forum := &fakeForum{tags: forumTags}
			d := NewDigest(tt.feeds, NewPublisher(articles, gen, forum, "forum", budget.NewApprox()), ledger, "https://habr.com/rss")
			d.now = func() time.Time { return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) }

			d.Run(context.Background())

			assert.Equal(t, tt.wantPosts, forum.count())
			if tt.wantPosts == 1 {
				assert.Equal(t, []string{"https://habr.com/2"}, articles.urls)
				entry := ledger.posted["https://habr.com/2"]
				assert.Equal(t, "T", entry.Title)
				assert.Equal(t, "https://discord.com/channels/1/99", entry.ThreadURL)
			}
		})
	}
}

func TestDigest_SecondRunDoesNotRepost(t *testing.T) {
	ledger := newMemoryLedger()
	gen := &scriptedGenerator{replies: []string{`{"title": "T", "content": "C"}`, `[]`}}
	forum := &fakeForum{tags: forumTags}
	d := NewDigest(&fakeFeeds{feed: newsFeed("https://habr.com/2"), ok: true},
		NewPublisher(&fakeArticles{text: "x", ok: true}, gen, forum, "forum", budget.NewApprox()),
		ledger, "https://habr.com/rss")

	d.Run(context.Background())
	d.Run(context.Background())

	assert.Equal(t, 1, forum.count())
}

func TestDigest_ScheduledJobStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	forum := &fakeForum{tags: forumTags}
	gen := &scriptedGenerator{replies: []string{`{"title": "T", "content": "C"}`, `[]`}}
	d := NewDigest(&fakeFeeds{feed: newsFeed("https://habr.com/2"), ok: true},
		NewPublisher(&fakeArticles{text: "x", ok: true}, gen, forum, "forum", budget.NewApprox()),
		newMemoryLedger(), "https://habr.com/rss")

	job := srv.NewPeriodic("news", time.Hour, d.Run)
	require.NoError(t, job.Start(context.Background()))
	assert.Eventually(t, func() bool { return forum.count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, job.Shutdown(ctx))
}
