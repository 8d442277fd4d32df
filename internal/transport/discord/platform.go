package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	maxAttachmentSize = 25 << 20
	membersPageSize   = 1000
	messagesPageSize  = 100
)

var _ core.Platform = (*Platform)(nil)

// Platform implements core.Platform on a discordgo session.
type Platform struct {
	s      *discordgo.Session
	client *http.Client
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{
		s:      s,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *Platform) Roles(ctx context.Context, guildID string) ([]core.Role, error) {
	roles, err := p.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "list roles")
	}
	out := make([]core.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRole(r))
	}
	return out, nil
}

func (p *Platform) Members(ctx context.Context, guildID string) ([]core.Member, error) {
	var out []core.Member
	after := ""
	for {
		page, err := p.s.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err, "list members")
		}
		for _, m := range page {
			out = append(out, toMember(m))
		}
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (p *Platform) Channels(ctx context.Context, guildID string) ([]core.Channel, error) {
	chs, err := p.s.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "list channels")
	}
	out := make([]core.Channel, 0, len(chs))
	for _, c := range chs {
		out = append(out, toChannel(c))
	}
	return out, nil
}

func roleParams(spec core.RoleSpec) *discordgo.RoleParams {
	return &discordgo.RoleParams{
		Name:  spec.Name,
		Color: spec.Color,
	}
}

func (p *Platform) CreateRole(ctx context.Context, guildID string, spec core.RoleSpec) (core.Role, error) {
	r, err := p.s.GuildRoleCreate(guildID, roleParams(spec), discordgo.WithContext(ctx))
	if err != nil {
		return core.Role{}, mapError(err, "create role")
	}
	return toRole(r), nil
}

func (p *Platform) EditRole(ctx context.Context, guildID, roleID string, spec core.RoleSpec) (core.Role, error) {
	r, err := p.s.GuildRoleEdit(guildID, roleID, roleParams(spec), discordgo.WithContext(ctx))
	if err != nil {
		return core.Role{}, mapError(err, "edit role")
	}
	return toRole(r), nil
}

func (p *Platform) DeleteRole(ctx context.Context, guildID, roleID string) error {
	return mapError(p.s.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx)), "delete role")
}

func (p *Platform) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return mapError(p.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)), "add member role")
}

func (p *Platform) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return mapError(p.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)), "remove member role")
}

func (p *Platform) CreateChannel(ctx context.Context, guildID, name string, kind core.ChannelKind) (core.Channel, error) {
	c, err := p.s.GuildChannelCreate(guildID, name, channelType(kind), discordgo.WithContext(ctx))
	if err != nil {
		return core.Channel{}, mapError(err, "create channel")
	}
	return toChannel(c), nil
}

func (p *Platform) RenameChannel(ctx context.Context, channelID, name string) error {
	_, err := p.s.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}, discordgo.WithContext(ctx))
	return mapError(err, "rename channel")
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := p.s.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return mapError(err, "delete channel")
}

func (p *Platform) SendMessage(ctx context.Context, channelID, text, replyToID string) (core.Message, error) {
	chunks := splitMessage(text, maxMessageLen)
	if len(chunks) == 0 {
		return core.Message{}, fmt.Errorf("send message: empty text")
	}

	var first core.Message
	for i, chunk := range chunks {
		var (
			m   *discordgo.Message
			err error
		)
		if i == 0 && replyToID != "" {
			m, err = p.s.ChannelMessageSendReply(channelID, chunk, &discordgo.MessageReference{
				MessageID: replyToID,
				ChannelID: channelID,
			}, discordgo.WithContext(ctx))
		} else {
			m, err = p.s.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx))
		}
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Int("chunk", i).Int("chunks", len(chunks)).Msg("failed to send discord chunk")
			return first, mapError(err, "send message")
		}
		if i == 0 {
			first = toMessage(m)
		}
	}
	return first, nil
}

func (p *Platform) Message(ctx context.Context, channelID, messageID string) (core.Message, error) {
	m, err := p.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return core.Message{}, mapError(err, "fetch message")
	}
	return toMessage(m), nil
}

func (p *Platform) RecentMessages(ctx context.Context, channelID string, limit int) ([]core.Message, error) {
	var out []core.Message
	before := ""
	for len(out) < limit {
		n := min(limit-len(out), messagesPageSize)
		page, err := p.s.ChannelMessages(channelID, n, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err, "fetch history")
		}
		for _, m := range page {
			out = append(out, toMessage(m))
		}
		if len(page) < n {
			break
		}
		before = page[len(page)-1].ID
	}
	return out, nil
}

func (p *Platform) PinMessage(ctx context.Context, channelID, messageID string) error {
	return mapError(p.s.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx)), "pin message")
}

func (p *Platform) UnpinMessage(ctx context.Context, channelID, messageID string) error {
	return mapError(p.s.ChannelMessageUnpin(channelID, messageID, discordgo.WithContext(ctx)), "unpin message")
}

func (p *Platform) PinnedMessages(ctx context.Context, channelID string) ([]core.Message, error) {
	pins, err := p.s.ChannelMessagesPinned(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "list pins")
	}
	out := make([]core.Message, 0, len(pins))
	for _, m := range pins {
		out = append(out, toMessage(m))
	}
	return out, nil
}

func (p *Platform) CanManageMessages(ctx context.Context, channelID string) (bool, error) {
	perms, err := p.s.UserChannelPermissions(p.s.State.User.ID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, mapError(err, "channel permissions")
	}
	return perms&discordgo.PermissionManageMessages != 0, nil
}

func (p *Platform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return mapError(p.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)), "add reaction")
}

func (p *Platform) OpenDM(ctx context.Context, userID string) (core.Channel, error) {
	c, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return core.Channel{}, mapError(err, "open dm")
	}
	return toChannel(c), nil
}

func (p *Platform) JoinVoice(ctx context.Context, guildID, channelID string) error {
	if _, err := p.s.ChannelVoiceJoin(guildID, channelID, false, true); err != nil {
		return mapError(err, "join voice")
	}
	return nil
}

func (p *Platform) LeaveVoice(ctx context.Context, guildID string) (string, error) {
	p.s.RLock()
	vc, ok := p.s.VoiceConnections[guildID]
	p.s.RUnlock()
	if !ok {
		return "", fmt.Errorf("leave voice: %w", core.ErrNotFound)
	}

	name := vc.ChannelID
	if c, err := p.s.State.Channel(vc.ChannelID); err == nil {
		name = c.Name
	}
	if err := vc.Disconnect(); err != nil {
		return "", mapError(err, "leave voice")
	}
	return name, nil
}

func (p *Platform) ForumTags(ctx context.Context, forumID string) ([]core.ForumTag, error) {
	c, err := p.s.Channel(forumID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "fetch forum")
	}
	if c.Type != discordgo.ChannelTypeGuildForum {
		return nil, fmt.Errorf("channel %s is not a forum: %w", forumID, core.ErrNotFound)
	}
	out := make([]core.ForumTag, 0, len(c.AvailableTags))
	for _, t := range c.AvailableTags {
		out = append(out, core.ForumTag{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (p *Platform) CreateForumPost(ctx context.Context, forumID string, post core.ForumPost) (string, error) {
	thread, err := p.s.ForumThreadStartComplex(forumID, &discordgo.ThreadStart{
		Name:        post.Title,
		AppliedTags: post.TagIDs,
	}, &discordgo.MessageSend{
		Content: post.Content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err, "create forum post")
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s", thread.GuildID, thread.ID), nil
}

func (p *Platform) Download(ctx context.Context, a core.Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", a.Filename, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", a.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", a.Filename, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize))
}

func (p *Platform) Typing(ctx context.Context, channelID string) error {
	return mapError(p.s.ChannelTyping(channelID, discordgo.WithContext(ctx)), "typing")
}
