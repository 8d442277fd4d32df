// Package chat decides what to do with every message the bot sees: run a
// command through the agent, answer in its own forum thread, or react.
package chat

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/providers/media"
	"github.com/sandevgo/gemibot/internal/service/agent"
	"github.com/sandevgo/gemibot/internal/service/history"
	"github.com/sandevgo/gemibot/internal/service/reactions"
	"github.com/sandevgo/gemibot/internal/service/resolver"
	"github.com/sandevgo/gemibot/internal/service/tools"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	EmojiDone   = "✅"
	EmojiFailed = "❌"
	EmojiCrash  = "🔥"
)

// Event is one inbound message together with the channel it was posted in.
type Event struct {
	Message core.Message
	Channel core.Channel
	// Self is the bot's own user.
	Self core.User
}

func (e Event) isDM() bool {
	return e.Channel.Kind == core.ChannelDM || e.Message.GuildID == ""
}

func (e Event) mentionsSelf() bool {
	for _, u := range e.Message.Mentions {
		if u.ID == e.Self.ID {
			return true
		}
	}
	return false
}

func (e Event) ownThread() bool {
	return e.Channel.Kind == core.ChannelThread && e.Channel.OwnerID != "" && e.Channel.OwnerID == e.Self.ID
}

type Agent interface {
	Run(ctx context.Context, scope history.Scope, env *tools.Env, parts []core.Part) (agent.Outcome, error)
	Discuss(ctx context.Context, scope history.Scope, prompt string) (string, error)
}

type Reactor interface {
	React(ctx context.Context, p reactions.Platform, msg core.Message)
}

// typer is implemented by platforms that can show a typing indicator.
type typer interface {
	Typing(ctx context.Context, channelID string) error
}

type Handler struct {
	platform core.Platform
	agent    Agent
	reactor  Reactor
	triggers Triggers
	backlog  *Backlog
}

func NewHandler(platform core.Platform, a Agent, reactor Reactor, triggers Triggers, backlog *Backlog) *Handler {
	if backlog == nil {
		backlog = NewBacklog(BacklogSize)
	}
	return &Handler{
		platform: platform,
		agent:    a,
		reactor:  reactor,
		triggers: triggers,
		backlog:  backlog,
	}
}

// Handle processes one event. It never returns an error or panics: whatever
// goes wrong is logged and, for commands, signalled with a reaction.
func (h *Handler) Handle(ctx context.Context, ev Event) {
	msg := ev.Message
	if msg.Author.ID == ev.Self.ID {
		return
	}

	ctx = log.WithFields(ctx, map[string]any{
		"event_id":   uuid.NewString(),
		"guild_id":   msg.GuildID,
		"channel_id": msg.ChannelID,
		"author":     msg.Author.Username,
	})

	// A panic anywhere below must not take down the other scopes.
	answering := false
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("message handler panicked")
			if answering {
				h.react(ctx, msg, EmojiCrash)
			}
		}
	}()

	dm := ev.isDM()
	if !dm && !msg.Author.Bot && msg.Content != "" {
		h.backlog.Add(msg.ChannelID, msg.Author.Name()+": "+msg.Content)
	}

	trigger, triggered := h.triggers.Match(msg.Content)
	switch {
	case dm || ev.mentionsSelf():
		answering = true
		h.command(ctx, ev, "")
	case triggered:
		answering = true
		h.command(ctx, ev, trigger)
	case ev.ownThread():
		answering = true
		h.discuss(ctx, ev)
	case !msg.Author.Bot && h.reactor != nil:
		h.reactor.React(ctx, h.platform, msg)
	}
}

func (h *Handler) command(ctx context.Context, ev Event, trigger string) {
	logger := log.FromCtx(ctx)
	msg := ev.Message

	text := h.triggers.Strip(requestText(msg, ev.Self.ID), trigger)
	if text == "" && len(msg.Attachments) == 0 {
		h.send(ctx, msg.ChannelID, EmptyRequestReply, "")
		return
	}
	logger.Info().Str("request", msg.Content).Msg("direct command received")
	h.typing(ctx, msg.ChannelID)

	scope := history.GuildScope(msg.GuildID)
	if ev.isDM() {
		scope = history.DMScope(msg.ChannelID)
	}

	parts := h.compose(ctx, ev, text)
	env := &tools.Env{
		Platform:  h.platform,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		Author:    msg.Author,
		Message:   msg,
		BotID:     ev.Self.ID,
	}

	out, err := h.agent.Run(ctx, scope, env, parts)
	if err != nil {
		logger.Error().Err(err).Int("rounds", out.Rounds).Msg("request crashed")
		h.react(ctx, msg, EmojiCrash)
		return
	}
	logger.Info().Stringer("status", out.Status).Int("rounds", out.Rounds).Int("tools", len(out.Executed)).Msg("request finished")

	switch out.Status {
	case agent.Answered:
		h.send(ctx, msg.ChannelID, h.expandMentions(ctx, msg.GuildID, out.Reply), "")
	case agent.Acted:
		h.react(ctx, msg, EmojiDone)
	case agent.Failed:
		h.react(ctx, msg, EmojiFailed)
		h.send(ctx, msg.ChannelID, out.Reply, "")
	case agent.Stuck:
		h.send(ctx, msg.ChannelID, out.Reply, "")
	}
}

// compose builds the request parts: channel background, the replied-to
// message with its media, the request line and the message's own media.
func (h *Handler) compose(ctx context.Context, ev Event, text string) []core.Part {
	logger := log.FromCtx(ctx)
	msg := ev.Message

	var parts []core.Part
	if !ev.isDM() {
		if p, ok := backgroundPart(h.backlog.Lines(msg.ChannelID)); ok {
			parts = append(parts, p)
		}
	}

	if msg.ReferenceID != "" {
		parts = append(parts, h.replyParts(ctx, msg.ChannelID, msg.ReferenceID)...)
	}

	parts = append(parts, core.TextPart(fmt.Sprintf(requestLine, msg.Author.Username, text)))

	own, err := media.Load(ctx, h.platform, msg.Attachments)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load attachments")
	}
	return append(parts, own...)
}

func (h *Handler) replyParts(ctx context.Context, channelID, messageID string) []core.Part {
	logger := log.FromCtx(ctx).With().Str("reference", messageID).Logger()

	ref, err := h.platform.Message(ctx, channelID, messageID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			logger.Warn().Msg("replied-to message not found")
		} else {
			logger.Warn().Err(err).Msg("failed to fetch replied-to message")
		}
		return nil
	}

	var parts []core.Part
	if ref.Content != "" {
		parts = append(parts, core.TextPart(fmt.Sprintf(replyContext, ref.Author.Name(), ref.Content)))
	}

	blobs, err := media.Load(ctx, h.platform, ref.Attachments)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load replied-to attachments")
		return parts
	}
	for _, b := range blobs {
		if b.Kind == core.PartVideo {
			parts = append(parts, core.TextPart(replyVideo), b)
		} else {
			parts = append(parts, core.TextPart(replyImage), b)
		}
	}
	return parts
}

// discuss answers a message in a forum thread the bot opened, framed by the
// thread's starter post.
func (h *Handler) discuss(ctx context.Context, ev Event) {
	logger := log.FromCtx(ctx)
	msg := ev.Message
	h.typing(ctx, msg.ChannelID)

	// A thread's starter message shares the thread's id.
	starter := agent.MissingStarterPost
	if post, err := h.platform.Message(ctx, msg.ChannelID, msg.ChannelID); err == nil {
		starter = post.Content
	} else {
		logger.Warn().Err(err).Msg("thread starter post unavailable")
	}

	scope := history.ThreadScope(msg.ChannelID, msg.GuildID)
	reply, err := h.agent.Discuss(ctx, scope, agent.ThreadPrompt(starter, msg.Author.Name(), msg.Content))
	if err != nil {
		logger.Error().Err(err).Msg("thread reply failed")
		h.react(ctx, msg, EmojiCrash)
		return
	}
	h.send(ctx, msg.ChannelID, reply, msg.ID)
}

func (h *Handler) expandMentions(ctx context.Context, guildID, text string) string {
	if guildID == "" {
		return text
	}
	members, err := h.platform.Members(ctx, guildID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("members unavailable, mentions left as is")
		return text
	}
	return resolver.ExpandMentions(ctx, text, members)
}

func (h *Handler) send(ctx context.Context, channelID, text, replyToID string) {
	if _, err := h.platform.SendMessage(ctx, channelID, text, replyToID); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to send reply")
	}
}

func (h *Handler) react(ctx context.Context, msg core.Message, emoji string) {
	if err := h.platform.AddReaction(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("emoji", emoji).Msg("failed to add reaction")
	}
}

func (h *Handler) typing(ctx context.Context, channelID string) {
	if t, ok := h.platform.(typer); ok {
		if err := t.Typing(ctx, channelID); err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("typing indicator failed")
		}
	}
}
