package core

import "context"

type ChannelKind int

const (
	ChannelText ChannelKind = iota
	ChannelVoice
	ChannelCategory
	ChannelForum
	ChannelThread
	ChannelDM
	ChannelOther
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelText:
		return "text"
	case ChannelVoice:
		return "voice"
	case ChannelCategory:
		return "category"
	case ChannelForum:
		return "forum"
	case ChannelThread:
		return "thread"
	case ChannelDM:
		return "dm"
	default:
		return "other"
	}
}

type User struct {
	ID          string
	Username    string
	DisplayName string
	Bot         bool
}

func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Name returns the display name, or the username when no display name is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type Member struct {
	User
	RoleIDs []string
}

type Role struct {
	ID       string
	Name     string
	Color    int
	Managed  bool
	Position int
}

// RoleSpec carries the mutable role fields; nil/empty fields are left as is.
type RoleSpec struct {
	Name  string
	Color *int
}

type Channel struct {
	ID       string
	GuildID  string
	Name     string
	Kind     ChannelKind
	ParentID string
	OwnerID  string
}

type Attachment struct {
	ID          string
	Filename    string
	URL         string
	ContentType string
	Size        int
}

type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	Author      User
	Content     string
	System      bool
	Attachments []Attachment
	Embeds      int
	Pinned      bool
	ReferenceID string
	Mentions    []User
}

type ForumTag struct {
	ID   string
	Name string
}

type ForumPost struct {
	Title   string
	Content string
	TagIDs  []string
}

// Platform is the chat platform as seen by tools. Implementations wrap
// permission failures with ErrForbidden and missing objects with ErrNotFound.
type Platform interface {
	Roles(ctx context.Context, guildID string) ([]Role, error)
	Members(ctx context.Context, guildID string) ([]Member, error)
	Channels(ctx context.Context, guildID string) ([]Channel, error)

	CreateRole(ctx context.Context, guildID string, spec RoleSpec) (Role, error)
	EditRole(ctx context.Context, guildID, roleID string, spec RoleSpec) (Role, error)
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error

	CreateChannel(ctx context.Context, guildID, name string, kind ChannelKind) (Channel, error)
	RenameChannel(ctx context.Context, channelID, name string) error
	DeleteChannel(ctx context.Context, channelID string) error

	// SendMessage splits long text into several platform messages and returns
	// the first one. replyToID may be empty.
	SendMessage(ctx context.Context, channelID, text, replyToID string) (Message, error)
	Message(ctx context.Context, channelID, messageID string) (Message, error)
	// RecentMessages returns up to limit messages, newest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	PinMessage(ctx context.Context, channelID, messageID string) error
	UnpinMessage(ctx context.Context, channelID, messageID string) error
	// PinnedMessages returns pins newest first.
	PinnedMessages(ctx context.Context, channelID string) ([]Message, error)
	CanManageMessages(ctx context.Context, channelID string) (bool, error)
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	OpenDM(ctx context.Context, userID string) (Channel, error)

	JoinVoice(ctx context.Context, guildID, channelID string) error
	// LeaveVoice disconnects and returns the name of the channel that was left.
	LeaveVoice(ctx context.Context, guildID string) (string, error)

	ForumTags(ctx context.Context, forumID string) ([]ForumTag, error)
	// CreateForumPost opens a thread in a forum channel and returns its URL.
	CreateForumPost(ctx context.Context, forumID string, post ForumPost) (string, error)
	Download(ctx context.Context, a Attachment) ([]byte, error)
}
