package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/core"
)

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "noop"))

	err := mapError(restError(http.StatusForbidden), "delete channel")
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Contains(t, err.Error(), "delete channel")

	err = mapError(restError(http.StatusNotFound), "fetch message")
	assert.ErrorIs(t, err, core.ErrNotFound)

	var rest *discordgo.RESTError
	assert.True(t, errors.As(err, &rest))

	err = mapError(restError(http.StatusInternalServerError), "create role")
	assert.NotErrorIs(t, err, core.ErrForbidden)
	assert.NotErrorIs(t, err, core.ErrNotFound)

	err = mapError(errors.New("websocket closed"), "send message")
	assert.EqualError(t, err, "send message: websocket closed")
}

func TestChannelKind(t *testing.T) {
	tests := map[discordgo.ChannelType]core.ChannelKind{
		discordgo.ChannelTypeGuildText:          core.ChannelText,
		discordgo.ChannelTypeGuildNews:          core.ChannelText,
		discordgo.ChannelTypeGuildVoice:         core.ChannelVoice,
		discordgo.ChannelTypeGuildCategory:      core.ChannelCategory,
		discordgo.ChannelTypeGuildForum:         core.ChannelForum,
		discordgo.ChannelTypeGuildPublicThread:  core.ChannelThread,
		discordgo.ChannelTypeDM:                 core.ChannelDM,
		discordgo.ChannelTypeGuildStageVoice:    core.ChannelVoice,
		discordgo.ChannelTypeGuildPrivateThread: core.ChannelThread,
	}
	for in, want := range tests {
		assert.Equal(t, want, channelKind(in), "type %d", in)
	}
	assert.Equal(t, discordgo.ChannelTypeGuildVoice, channelType(core.ChannelVoice))
	assert.Equal(t, discordgo.ChannelTypeGuildText, channelType(core.ChannelText))
}

func TestToMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Type:      discordgo.MessageTypeReply,
		Content:   "гемини глянь",
		Author:    &discordgo.User{ID: "u1", Username: "alice", GlobalName: "Alice G"},
		Member:    &discordgo.Member{Nick: "Алиса"},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "a1", Filename: "cat.png", URL: "https://cdn/cat.png", ContentType: "image/png", Size: 10},
		},
		Embeds:           []*discordgo.MessageEmbed{{}},
		MessageReference: &discordgo.MessageReference{MessageID: "m0"},
		Mentions:         []*discordgo.User{{ID: "bot", Username: "gemini", Bot: true}},
	}

	got := toMessage(m)

	assert.Equal(t, "Алиса", got.Author.Name())
	assert.Equal(t, "alice", got.Author.Username)
	assert.False(t, got.System)
	assert.Equal(t, "m0", got.ReferenceID)
	assert.Equal(t, 1, got.Embeds)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "image/png", got.Attachments[0].ContentType)
	require.Len(t, got.Mentions, 1)
	assert.True(t, got.Mentions[0].Bot)

	m.Member = nil
	m.Type = discordgo.MessageTypeChannelPinnedMessage
	got = toMessage(m)
	assert.Equal(t, "Alice G", got.Author.Name())
	assert.True(t, got.System)
}

func TestToMember(t *testing.T) {
	got := toMember(&discordgo.Member{
		User:  &discordgo.User{ID: "u2", Username: "bob"},
		Roles: []string{"r1"},
	})
	assert.Equal(t, "bob", got.Name())
	assert.Equal(t, []string{"r1"}, got.RoleIDs)
}
