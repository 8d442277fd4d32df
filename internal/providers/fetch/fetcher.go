// Package fetch retrieves remote documents through direct attempts followed
// by a cascade of CORS proxies.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
	"github.com/sandevgo/gemibot/pkg/retry"
)

const maxBodySize = 8 << 20

var DefaultProxies = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"https://cors-anywhere.herokuapp.com/",
}

type Config struct {
	DirectAttempts int
	ProxyAttempts  int
	// RetryDelay is the fixed pause between attempts of one phase.
	RetryDelay     time.Duration
	ArticleTimeout time.Duration
	FeedTimeout    time.Duration
	Proxies        []string
	UserAgent      string
}

func DefaultConfig() Config {
	return Config{
		DirectAttempts: 3,
		ProxyAttempts:  2,
		RetryDelay:     10 * time.Second,
		ArticleTimeout: 30 * time.Second,
		FeedTimeout:    90 * time.Second,
		Proxies:        DefaultProxies,
		UserAgent:      core.BrowserUserAgent,
	}
}

// Extractor turns a response body into text. An error or blank text fails
// the attempt.
type Extractor func(body []byte) (string, error)

type Option func(*Fetcher)

func WithSleeper(s retry.Sleeper) Option {
	return func(f *Fetcher) { f.sleep = s }
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

type Fetcher struct {
	client *http.Client
	cfg    Config
	sleep  retry.Sleeper
}

func New(cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{},
		cfg:    cfg,
		sleep:  retry.SleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText downloads rawURL and runs extract over the body. ok is false when
// every direct and proxied attempt failed.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string, extract Extractor) (string, bool) {
	var text string
	ok := f.cascade(ctx, rawURL, f.cfg.ArticleTimeout, func(body []byte) error {
		t, err := extract(body)
		if err != nil {
			return err
		}
		if strings.TrimSpace(t) == "" {
			return ErrEmptyText
		}
		text = t
		return nil
	})
	return text, ok
}

// FetchArticle fetches a news article without its query string and returns
// the text of its body container.
func (f *Fetcher) FetchArticle(ctx context.Context, rawURL string) (string, bool) {
	return f.FetchText(ctx, StripQuery(rawURL), ArticleExtractor(DefaultArticleSelector))
}

// StripQuery drops everything from the first '?'. Tracking parameters on
// article links break some proxies.
func StripQuery(rawURL string) string {
	before, _, _ := strings.Cut(rawURL, "?")
	return before
}

type phase struct {
	name     string
	url      string
	attempts int
}

func (f *Fetcher) phases(target string) []phase {
	phases := []phase{{name: "direct", url: target, attempts: f.cfg.DirectAttempts}}
	for i, prefix := range f.cfg.Proxies {
		phases = append(phases, phase{
			name:     fmt.Sprintf("proxy#%d", i+1),
			url:      proxied(prefix, target),
			attempts: f.cfg.ProxyAttempts,
		})
	}
	return phases
}

// proxied joins a proxy prefix and a target. Prefixes ending in a query
// parameter get the target escaped; path-style prefixes take it verbatim.
func proxied(prefix, target string) string {
	if strings.HasSuffix(prefix, "=") {
		return prefix + url.QueryEscape(target)
	}
	return prefix + target
}

// cascade tries each phase in order until accept succeeds on a body.
func (f *Fetcher) cascade(ctx context.Context, target string, timeout time.Duration, accept func(body []byte) error) bool {
	logger := log.FromCtx(ctx).With().Str("url", target).Logger()

	for _, ph := range f.phases(target) {
		retrier := retry.NewRetrier(
			retry.NewFixedConfig(ph.attempts, f.cfg.RetryDelay),
			retry.WithSleeper(f.sleep),
			retry.WithNotify(func(attempt int, err error) {
				logger.Warn().Err(err).Str("phase", ph.name).Int("attempt", attempt).Msg("fetch attempt failed, retrying")
			}),
		)

		err := retrier.Do(ctx, func() error {
			body, err := f.get(ctx, ph.url, timeout)
			if err != nil {
				return err
			}
			return accept(body)
		})
		if err == nil {
			logger.Info().Str("phase", ph.name).Msg("fetched")
			return true
		}
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Msg("fetch cancelled")
			return false
		}
		logger.Warn().Err(err).Str("phase", ph.name).Msg("fetch phase exhausted")
	}

	logger.Error().Msg("content unavailable after all direct and proxy attempts")
	return false
}

func (f *Fetcher) get(ctx context.Context, u string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
