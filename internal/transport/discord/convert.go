package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/sandevgo/gemibot/internal/core"
)

// mapError translates REST failures into the core sentinels tools classify.
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", action, core.ErrForbidden, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", action, core.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}

func channelKind(t discordgo.ChannelType) core.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return core.ChannelText
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return core.ChannelVoice
	case discordgo.ChannelTypeGuildCategory:
		return core.ChannelCategory
	case discordgo.ChannelTypeGuildForum:
		return core.ChannelForum
	case discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread, discordgo.ChannelTypeGuildNewsThread:
		return core.ChannelThread
	case discordgo.ChannelTypeDM, discordgo.ChannelTypeGroupDM:
		return core.ChannelDM
	default:
		return core.ChannelOther
	}
}

func channelType(k core.ChannelKind) discordgo.ChannelType {
	if k == core.ChannelVoice {
		return discordgo.ChannelTypeGuildVoice
	}
	return discordgo.ChannelTypeGuildText
}

func toChannel(c *discordgo.Channel) core.Channel {
	return core.Channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		Kind:     channelKind(c.Type),
		ParentID: c.ParentID,
		OwnerID:  c.OwnerID,
	}
}

func toUser(u *discordgo.User, nick string) core.User {
	if u == nil {
		return core.User{}
	}
	display := nick
	if display == "" {
		display = u.GlobalName
	}
	return core.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: display,
		Bot:         u.Bot,
	}
}

func toMember(m *discordgo.Member) core.Member {
	return core.Member{
		User:    toUser(m.User, m.Nick),
		RoleIDs: m.Roles,
	}
}

func toRole(r *discordgo.Role) core.Role {
	return core.Role{
		ID:       r.ID,
		Name:     r.Name,
		Color:    r.Color,
		Managed:  r.Managed,
		Position: r.Position,
	}
}

func toMessage(m *discordgo.Message) core.Message {
	nick := ""
	if m.Member != nil {
		nick = m.Member.Nick
	}
	out := core.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author:    toUser(m.Author, nick),
		Content:   m.Content,
		System:    m.Type != discordgo.MessageTypeDefault && m.Type != discordgo.MessageTypeReply,
		Embeds:    len(m.Embeds),
		Pinned:    m.Pinned,
	}
	if m.MessageReference != nil {
		out.ReferenceID = m.MessageReference.MessageID
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, core.Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	for _, u := range m.Mentions {
		out.Mentions = append(out.Mentions, toUser(u, ""))
	}
	return out
}
