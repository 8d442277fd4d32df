package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/gemibot/internal/core"
)

var _ core.NewsRepository = (*News)(nil)

// News is the ledger of published feed entries.
type News struct {
	db *sql.DB
}

func NewNews(db *sql.DB) *News {
	return &News{db: db}
}

func (n *News) IsPosted(ctx context.Context, link string) (bool, error) {
	var one int
	err := n.db.QueryRowContext(ctx, `SELECT 1 FROM posted_news WHERE link = ?`, link).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query posted news: %w", err)
	}
	return true, nil
}

// MarkPosted records an entry. Marking the same link again updates it.
func (n *News) MarkPosted(ctx context.Context, entry core.PostedNews) error {
	query := `INSERT INTO posted_news (link, title, thread_url, posted_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET title = excluded.title, thread_url = excluded.thread_url, posted_at = excluded.posted_at`
	if _, err := n.db.ExecContext(ctx, query, entry.Link, entry.Title, entry.ThreadURL, entry.PostedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert posted news: %w", err)
	}
	return nil
}

func (n *News) LastPosted(ctx context.Context) (core.PostedNews, bool, error) {
	var e core.PostedNews
	err := n.db.QueryRowContext(ctx,
		`SELECT link, title, thread_url, posted_at FROM posted_news ORDER BY posted_at DESC LIMIT 1`,
	).Scan(&e.Link, &e.Title, &e.ThreadURL, &e.PostedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PostedNews{}, false, nil
	}
	if err != nil {
		return core.PostedNews{}, false, fmt.Errorf("failed to query last posted news: %w", err)
	}
	return e, true, nil
}
