package core

import (
	"context"
	"time"
)

// HistoryBackend holds turn lists by scope key. Load returns false for
// unknown keys.
type HistoryBackend interface {
	Load(key string) ([]Turn, bool)
	Save(key string, turns []Turn)
}

// NewsRepository remembers which feed entries were already published.
type NewsRepository interface {
	IsPosted(ctx context.Context, link string) (bool, error)
	MarkPosted(ctx context.Context, entry PostedNews) error
	LastPosted(ctx context.Context) (PostedNews, bool, error)
}

type PostedNews struct {
	Link      string
	Title     string
	ThreadURL string
	PostedAt  time.Time
}
