package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/core"
)

func newTestNews(t *testing.T) *News {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "gemibot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewNews(db)
}

func TestNews_MarkAndCheck(t *testing.T) {
	ctx := context.Background()
	repo := newTestNews(t)

	posted, err := repo.IsPosted(ctx, "https://habr.com/ru/news/1/")
	require.NoError(t, err)
	assert.False(t, posted)

	_, ok, err := repo.LastPosted(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first := core.PostedNews{
		Link:      "https://habr.com/ru/news/1/",
		Title:     "Первая",
		ThreadURL: "https://discord.com/channels/g/t1",
		PostedAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	second := core.PostedNews{
		Link:      "https://habr.com/ru/news/2/",
		Title:     "Вторая",
		ThreadURL: "https://discord.com/channels/g/t2",
		PostedAt:  time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.MarkPosted(ctx, second))
	require.NoError(t, repo.MarkPosted(ctx, first))

	posted, err = repo.IsPosted(ctx, first.Link)
	require.NoError(t, err)
	assert.True(t, posted)

	last, ok, err := repo.LastPosted(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.Link, last.Link)
	assert.Equal(t, "Вторая", last.Title)
	assert.True(t, second.PostedAt.Equal(last.PostedAt))
}

func TestNews_MarkTwiceUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newTestNews(t)

	entry := core.PostedNews{Link: "https://x/1", Title: "old", PostedAt: time.Now()}
	require.NoError(t, repo.MarkPosted(ctx, entry))
	entry.Title = "new"
	require.NoError(t, repo.MarkPosted(ctx, entry))

	last, ok, err := repo.LastPosted(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", last.Title)
}

func TestNewDB_MigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemibot.db")
	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
