package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gemibot/pkg/log"
)

type FetchConfig struct {
	RetryDelay     time.Duration `env:"GEMI_FETCH_RETRY_DELAY" envDefault:"10s"`
	Proxies        []string      `env:"GEMI_FETCH_PROXIES" envDefault:"https://api.allorigins.win/raw?url=,https://corsproxy.io/?,https://cors-anywhere.herokuapp.com/"`
	ArticleTimeout time.Duration `env:"GEMI_ARTICLE_TIMEOUT" envDefault:"30s"`
	FeedTimeout    time.Duration `env:"GEMI_FEED_TIMEOUT" envDefault:"90s"`
}

func NewFetchConfig(ctx context.Context) *FetchConfig {
	c := &FetchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Fetch config")
	}
	return c
}
