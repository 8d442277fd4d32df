package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"
)

var ErrEmptyFeed = errors.New("feed has no entries")

// FetchFeed downloads and parses a syndication feed through the same
// cascade as articles. A feed without items counts as a failed attempt.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, bool) {
	parser := gofeed.NewParser()

	var feed *gofeed.Feed
	ok := f.cascade(ctx, feedURL, f.cfg.FeedTimeout, func(body []byte) error {
		parsed, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("feed parse: %w", err)
		}
		if len(parsed.Items) == 0 {
			return ErrEmptyFeed
		}
		feed = parsed
		return nil
	})
	return feed, ok
}

// Latest returns the first entry of the feed, which publishers list newest first.
func Latest(feed *gofeed.Feed) (*gofeed.Item, bool) {
	if feed == nil || len(feed.Items) == 0 {
		return nil, false
	}
	return feed.Items[0], true
}
