// Package discord connects the bot to Discord: the gateway session that
// delivers messages and the REST platform the tools act through.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/chat"
	"github.com/sandevgo/gemibot/pkg/log"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

type MessageHandler interface {
	Handle(ctx context.Context, ev chat.Event)
}

type Bot struct {
	session *discordgo.Session
	handler MessageHandler
	ctx     context.Context
}

// NewSession creates an unopened gateway session.
func NewSession(cfg *config.DiscordConfig) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = intents
	s.StateEnabled = true
	return s, nil
}

func NewBot(session *discordgo.Session, handler MessageHandler) *Bot {
	return &Bot{
		session: session,
		handler: handler,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	logger := log.FromCtx(ctx)

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord session ready")
	})
	b.session.AddHandler(b.onMessage)

	logger.Info().Msg("starting discord bot")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("stopping discord bot")
	return b.session.Close()
}

// onMessage runs on its own goroutine for every event.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State.User == nil {
		return
	}
	ctx := b.ctx
	msg := toMessage(m.Message)

	ev := chat.Event{
		Message: msg,
		Channel: b.channel(ctx, m.ChannelID, m.GuildID),
		Self:    toUser(s.State.User, ""),
	}
	b.handler.Handle(ctx, ev)
}

func (b *Bot) channel(ctx context.Context, channelID, guildID string) core.Channel {
	if c, err := b.session.State.Channel(channelID); err == nil {
		return toChannel(c)
	}
	c, err := b.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("channel_id", channelID).Msg("channel lookup failed")
		kind := core.ChannelText
		if guildID == "" {
			kind = core.ChannelDM
		}
		return core.Channel{ID: channelID, GuildID: guildID, Kind: kind}
	}
	return toChannel(c)
}
