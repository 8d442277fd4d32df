package fetch

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Хабр</title><link>https://habr.com/</link>
<item><title>Новая модель</title><link>https://habr.com/ru/articles/2/</link></item>
<item><title>Старая новость</title><link>https://habr.com/ru/articles/1/</link></item>
</channel></rss>`

const emptyRSS = `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`

func TestFetcher_FetchFeed(t *testing.T) {
	cs := newCascadeServer(t, rssBody, http.StatusServiceUnavailable, map[string]int{"/feed": 1})
	f := New(testConfig(cs), WithSleeper((&fakeClock{}).sleep))

	feed, ok := f.FetchFeed(context.Background(), cs.URL+"/feed")
	require.True(t, ok)

	item, ok := Latest(feed)
	require.True(t, ok)
	assert.Equal(t, "https://habr.com/ru/articles/2/", item.Link)
	assert.Equal(t, 2, cs.count("/feed"))
}

func TestFetcher_EmptyFeedIsFailure(t *testing.T) {
	cs := newCascadeServer(t, emptyRSS, http.StatusOK, map[string]int{})
	clock := &fakeClock{}
	f := New(testConfig(cs), WithSleeper(clock.sleep))

	feed, ok := f.FetchFeed(context.Background(), cs.URL+"/feed")
	assert.False(t, ok)
	assert.Nil(t, feed)
	assert.Equal(t, 3, cs.count("/feed"))
	assert.Equal(t, 2, cs.count("/p1"))
}

func TestLatest_Empty(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)
}
