package main

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/internal/providers/fetch"
	"github.com/sandevgo/gemibot/internal/providers/llm"
	"github.com/sandevgo/gemibot/internal/service/agent"
	"github.com/sandevgo/gemibot/internal/service/chat"
	"github.com/sandevgo/gemibot/internal/service/history"
	"github.com/sandevgo/gemibot/internal/service/news"
	"github.com/sandevgo/gemibot/internal/service/reactions"
	"github.com/sandevgo/gemibot/internal/service/tools"
	"github.com/sandevgo/gemibot/internal/storage/sqlite"
	"github.com/sandevgo/gemibot/internal/transport/discord"
	"github.com/sandevgo/gemibot/pkg/budget"
	"github.com/sandevgo/gemibot/pkg/log"
	"github.com/sandevgo/gemibot/pkg/srv"
)

// NewServices wires the bot. Services start in order and stop in reverse,
// so the database outlives the transport that writes to it.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	config.LoadEnvFile(ctx)

	// 1. Configuration
	discordCfg := config.NewDiscordConfig(ctx)
	googleCfg := config.NewGoogleConfig(ctx)
	newsCfg := config.NewNewsConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, config.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup("database", db.Close))
	newsRepo := sqlite.NewNews(db)

	// 3. Models
	gens, err := llm.NewGenerators(ctx, googleCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}

	fetcher := newFetcher(ctx)
	clamp := budget.New()

	// 4. Discord
	session, err := discord.NewSession(discordCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize discord session")
	}
	platform := discord.NewPlatform(session)

	// 5. Agent
	store := history.NewStore(history.NewMemoryBackend(), agent.Preamble(tools.Catalog()))
	publisher := news.NewPublisher(fetcher, gens.Main, platform, newsCfg.ForumChannelID, clamp)
	toolbox := tools.NewToolbox(gens.Main, store, publisher, clamp, rate.NewLimiter(rate.Every(discordCfg.BulkInterval), 1))
	ag := agent.NewAgent(gens.Main, toolbox.Registry(), store)

	// 6. Intake
	reactor := reactions.New(gens.Flash, discordCfg.PassiveTriggers, discordCfg.ImageReactionChance)
	handler := chat.NewHandler(platform, ag, reactor, chat.NewTriggers(discordCfg.Triggers), chat.NewBacklog(chat.BacklogSize))
	services = append(services, discord.NewBot(session, handler))

	// 7. Weekly digest
	if newsCfg.DigestEnabled() {
		digest := news.NewDigest(fetcher, publisher, newsRepo, newsCfg.FeedURL)
		services = append(services, srv.NewPeriodic("news", newsCfg.Interval, digest.Run))
	} else {
		logger.Info().Msg("news digest disabled: FORUM_CHANNEL_ID or NEWS_RSS_URL not set")
	}

	logger.Debug().Str("main_model", gens.Main.Model()).Str("flash_model", gens.Flash.Model()).Msg("services wired")
	return services
}

func newFetcher(ctx context.Context) *fetch.Fetcher {
	c := config.NewFetchConfig(ctx)

	cfg := fetch.DefaultConfig()
	cfg.RetryDelay = c.RetryDelay
	cfg.ArticleTimeout = c.ArticleTimeout
	cfg.FeedTimeout = c.FeedTimeout
	if len(c.Proxies) > 0 {
		cfg.Proxies = c.Proxies
	}
	return fetch.New(cfg)
}
