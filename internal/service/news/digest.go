package news

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/providers/fetch"
	"github.com/sandevgo/gemibot/pkg/log"
)

type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string) (*gofeed.Feed, bool)
}

// Digest publishes the newest entry of a feed unless it was posted before.
type Digest struct {
	feeds     FeedFetcher
	publisher *Publisher
	repo      core.NewsRepository
	feedURL   string
	now       func() time.Time
}

func NewDigest(feeds FeedFetcher, publisher *Publisher, repo core.NewsRepository, feedURL string) *Digest {
	return &Digest{
		feeds:     feeds,
		publisher: publisher,
		repo:      repo,
		feedURL:   feedURL,
		now:       time.Now,
	}
}

// Run is one scheduled check. It never returns an error: every failure is
// logged and the next tick tries again.
func (d *Digest) Run(ctx context.Context) {
	logger := log.FromCtx(ctx).With().Str("job", "news").Str("feed", d.feedURL).Logger()
	logger.Info().Msg("checking feed for news")

	feed, ok := d.feeds.FetchFeed(ctx, d.feedURL)
	if !ok {
		logger.Warn().Msg("feed unavailable, skipping this cycle")
		return
	}

	item, ok := fetch.Latest(feed)
	if !ok || item.Link == "" {
		logger.Warn().Msg("feed has no usable entry")
		return
	}
	logger = logger.With().Str("link", item.Link).Logger()

	posted, err := d.repo.IsPosted(ctx, item.Link)
	if err != nil {
		logger.Error().Err(err).Msg("failed to check news ledger")
		return
	}
	if posted {
		logger.Info().Msg("no new news")
		return
	}

	res, err := d.publisher.Publish(ctx, item.Link)
	if err != nil {
		logger.Error().Err(err).Msg("failed to publish news")
		return
	}

	if err := d.repo.MarkPosted(ctx, core.PostedNews{
		Link:      item.Link,
		Title:     res.Title,
		ThreadURL: res.ThreadURL,
		PostedAt:  d.now(),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to record posted news")
	}
}
