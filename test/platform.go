// Package test holds fakes shared by package tests.
package test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sandevgo/gemibot/internal/core"
)

// Sent is one message posted through the fake platform.
type Sent struct {
	ChannelID string
	Text      string
	ReplyToID string
}

// Reaction is one reaction added through the fake platform.
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// Platform is an in-memory core.Platform. Every call is recorded by method
// name; calls that change state are also recorded in Mutations. Errors maps
// a method name to the error it returns.
type Platform struct {
	mu sync.Mutex

	RolesList    []core.Role
	MembersList  []core.Member
	ChannelsList []core.Channel
	Messages     map[string]core.Message
	// History is per channel, newest first.
	History       map[string][]core.Message
	Pins          map[string][]core.Message
	ForumTagsList []core.ForumTag
	Files         map[string][]byte

	ManageMessages bool
	VoiceChannel   string

	Errors map[string]error

	Calls     []string
	Mutations []string
	SentMsgs  []Sent
	Reactions []Reaction
	Posts     []core.ForumPost

	nextID int
}

func NewPlatform() *Platform {
	return &Platform{
		Messages:       map[string]core.Message{},
		History:        map[string][]core.Message{},
		Pins:           map[string][]core.Message{},
		Files:          map[string][]byte{},
		Errors:         map[string]error{},
		ManageMessages: true,
	}
}

func (p *Platform) call(method string, mutation bool, detail string) error {
	p.Calls = append(p.Calls, method)
	if err, ok := p.Errors[method]; ok {
		return err
	}
	if mutation {
		p.Mutations = append(p.Mutations, strings.TrimSpace(method+" "+detail))
	}
	return nil
}

func (p *Platform) id(prefix string) string {
	p.nextID++
	return fmt.Sprintf("%s%d", prefix, p.nextID)
}

// Called reports whether method was invoked.
func (p *Platform) Called(method string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.Calls, method)
}

func (p *Platform) MutationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Mutations)
}

func (p *Platform) SentTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, s := range p.SentMsgs {
		out = append(out, s.Text)
	}
	return out
}

func (p *Platform) Roles(ctx context.Context, guildID string) ([]core.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("Roles", false, ""); err != nil {
		return nil, err
	}
	return slices.Clone(p.RolesList), nil
}

func (p *Platform) Members(ctx context.Context, guildID string) ([]core.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("Members", false, ""); err != nil {
		return nil, err
	}
	return slices.Clone(p.MembersList), nil
}

func (p *Platform) Channels(ctx context.Context, guildID string) ([]core.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("Channels", false, ""); err != nil {
		return nil, err
	}
	return slices.Clone(p.ChannelsList), nil
}

func (p *Platform) CreateRole(ctx context.Context, guildID string, spec core.RoleSpec) (core.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("CreateRole", true, spec.Name); err != nil {
		return core.Role{}, err
	}
	r := core.Role{ID: p.id("role"), Name: spec.Name}
	if spec.Color != nil {
		r.Color = *spec.Color
	}
	p.RolesList = append(p.RolesList, r)
	return r, nil
}

func (p *Platform) EditRole(ctx context.Context, guildID, roleID string, spec core.RoleSpec) (core.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("EditRole", true, roleID); err != nil {
		return core.Role{}, err
	}
	for i, r := range p.RolesList {
		if r.ID != roleID {
			continue
		}
		if spec.Name != "" {
			p.RolesList[i].Name = spec.Name
		}
		if spec.Color != nil {
			p.RolesList[i].Color = *spec.Color
		}
		return p.RolesList[i], nil
	}
	return core.Role{}, core.ErrNotFound
}

func (p *Platform) DeleteRole(ctx context.Context, guildID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("DeleteRole", true, roleID); err != nil {
		return err
	}
	p.RolesList = slices.DeleteFunc(p.RolesList, func(r core.Role) bool { return r.ID == roleID })
	return nil
}

func (p *Platform) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("AddMemberRole", true, userID+" "+roleID); err != nil {
		return err
	}
	for i := range p.MembersList {
		if p.MembersList[i].ID == userID {
			p.MembersList[i].RoleIDs = append(p.MembersList[i].RoleIDs, roleID)
		}
	}
	return nil
}

func (p *Platform) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("RemoveMemberRole", true, userID+" "+roleID); err != nil {
		return err
	}
	for i := range p.MembersList {
		if p.MembersList[i].ID == userID {
			p.MembersList[i].RoleIDs = slices.DeleteFunc(p.MembersList[i].RoleIDs, func(id string) bool { return id == roleID })
		}
	}
	return nil
}

func (p *Platform) CreateChannel(ctx context.Context, guildID, name string, kind core.ChannelKind) (core.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("CreateChannel", true, name); err != nil {
		return core.Channel{}, err
	}
	c := core.Channel{ID: p.id("ch"), GuildID: guildID, Name: name, Kind: kind}
	p.ChannelsList = append(p.ChannelsList, c)
	return c, nil
}

func (p *Platform) RenameChannel(ctx context.Context, channelID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("RenameChannel", true, channelID+" "+name); err != nil {
		return err
	}
	for i := range p.ChannelsList {
		if p.ChannelsList[i].ID == channelID {
			p.ChannelsList[i].Name = name
		}
	}
	return nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("DeleteChannel", true, channelID); err != nil {
		return err
	}
	p.ChannelsList = slices.DeleteFunc(p.ChannelsList, func(c core.Channel) bool { return c.ID == channelID })
	return nil
}

func (p *Platform) SendMessage(ctx context.Context, channelID, text, replyToID string) (core.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("SendMessage", true, channelID); err != nil {
		return core.Message{}, err
	}
	p.SentMsgs = append(p.SentMsgs, Sent{ChannelID: channelID, Text: text, ReplyToID: replyToID})
	return core.Message{ID: p.id("msg"), ChannelID: channelID, Content: text}, nil
}

func (p *Platform) Message(ctx context.Context, channelID, messageID string) (core.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("Message", false, ""); err != nil {
		return core.Message{}, err
	}
	m, ok := p.Messages[messageID]
	if !ok {
		return core.Message{}, fmt.Errorf("message %s: %w", messageID, core.ErrNotFound)
	}
	return m, nil
}

func (p *Platform) RecentMessages(ctx context.Context, channelID string, limit int) ([]core.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("RecentMessages", false, ""); err != nil {
		return nil, err
	}
	h := p.History[channelID]
	if len(h) > limit {
		h = h[:limit]
	}
	return slices.Clone(h), nil
}

func (p *Platform) PinMessage(ctx context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.call("PinMessage", true, messageID)
}

func (p *Platform) UnpinMessage(ctx context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.call("UnpinMessage", true, messageID)
}

func (p *Platform) PinnedMessages(ctx context.Context, channelID string) ([]core.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("PinnedMessages", false, ""); err != nil {
		return nil, err
	}
	return slices.Clone(p.Pins[channelID]), nil
}

func (p *Platform) CanManageMessages(ctx context.Context, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("CanManageMessages", false, ""); err != nil {
		return false, err
	}
	return p.ManageMessages, nil
}

func (p *Platform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("AddReaction", true, emoji); err != nil {
		return err
	}
	p.Reactions = append(p.Reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (p *Platform) OpenDM(ctx context.Context, userID string) (core.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("OpenDM", false, ""); err != nil {
		return core.Channel{}, err
	}
	return core.Channel{ID: "dm-" + userID, Kind: core.ChannelDM}, nil
}

func (p *Platform) JoinVoice(ctx context.Context, guildID, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("JoinVoice", true, channelID); err != nil {
		return err
	}
	p.VoiceChannel = channelID
	return nil
}

func (p *Platform) LeaveVoice(ctx context.Context, guildID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("LeaveVoice", true, ""); err != nil {
		return "", err
	}
	if p.VoiceChannel == "" {
		return "", core.ErrNotFound
	}
	name := p.VoiceChannel
	for _, c := range p.ChannelsList {
		if c.ID == p.VoiceChannel {
			name = c.Name
		}
	}
	p.VoiceChannel = ""
	return name, nil
}

func (p *Platform) ForumTags(ctx context.Context, forumID string) ([]core.ForumTag, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("ForumTags", false, ""); err != nil {
		return nil, err
	}
	return slices.Clone(p.ForumTagsList), nil
}

func (p *Platform) CreateForumPost(ctx context.Context, forumID string, post core.ForumPost) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("CreateForumPost", true, post.Title); err != nil {
		return "", err
	}
	p.Posts = append(p.Posts, post)
	return "https://discord.com/channels/g/" + p.id("thread"), nil
}

func (p *Platform) Download(ctx context.Context, a core.Attachment) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call("Download", false, ""); err != nil {
		return nil, err
	}
	data, ok := p.Files[a.URL]
	if !ok {
		return nil, core.ErrNotFound
	}
	return data, nil
}

var _ core.Platform = (*Platform)(nil)
