package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gemibot/pkg/log"
)

type GoogleConfig struct {
	APIKey string `env:"GOOGLE_API_KEY,required,notEmpty"`
	// MainModel drives conversations, tools and news posts.
	MainModel string `env:"GEMI_MAIN_MODEL" envDefault:"gemini-2.5-flash-lite"`
	// FlashModel rates messages for passive reactions.
	FlashModel string `env:"GEMI_FLASH_MODEL" envDefault:"gemma-3-27b-it"`
}

func NewGoogleConfig(ctx context.Context) *GoogleConfig {
	c := &GoogleConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Google config")
	}
	return c
}
