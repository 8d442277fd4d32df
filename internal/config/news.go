package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gemibot/pkg/log"
)

type NewsConfig struct {
	ForumChannelID string        `env:"FORUM_CHANNEL_ID"`
	FeedURL        string        `env:"NEWS_RSS_URL"`
	Interval       time.Duration `env:"GEMI_NEWS_INTERVAL" envDefault:"168h"`
}

func NewNewsConfig(ctx context.Context) *NewsConfig {
	c := &NewsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse News config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid News config")
	}
	return c
}

func (c NewsConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("GEMI_NEWS_INTERVAL must be positive, got %s", c.Interval)
	}
	return nil
}

// DigestEnabled reports whether the weekly digest has somewhere to read
// from and somewhere to post to.
func (c NewsConfig) DigestEnabled() bool {
	return c.ForumChannelID != "" && c.FeedURL != ""
}
