package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gemibot/pkg/log"
)

type DiscordConfig struct {
	Token string `env:"DISCORD_TOKEN,required,notEmpty"`
	// Triggers start a direct command when they open a message.
	Triggers []string `env:"GEMI_BOT_TRIGGERS" envDefault:"gemini,гемини,геминий,гемени,гемений,геминии,гемении,гимини,гемнии,гемминий,геменни,гемми,геми,гемушка,геммениж"`
	// PassiveTriggers anywhere in a message invite a text reaction.
	PassiveTriggers     []string      `env:"GEMI_PASSIVE_TRIGGERS" envDefault:"гемини,gemini,ии,ai,нейросеть,нейросети,нейронка,геми,гемми,гемени,гемений,гемушка,llm,промпт,гугл,google,chatgpt,чатгпт,gpt,claude"`
	ImageReactionChance float64       `env:"GEMI_IMAGE_REACTION_CHANCE" envDefault:"0.15"`
	BulkInterval        time.Duration `env:"GEMI_BULK_INTERVAL" envDefault:"1.5s"`
}

func NewDiscordConfig(ctx context.Context) *DiscordConfig {
	c := &DiscordConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Discord config")
	}
	return c
}
