package history

import "fmt"

// DMBaseKey is the parent of threads opened outside any guild.
const DMBaseKey = "dm_base"

type ScopeKind int

const (
	ScopeGuild ScopeKind = iota
	ScopeDM
	ScopeThread
)

// Scope names one independent conversation: a guild, a DM channel or a
// thread owned by the bot.
type Scope struct {
	Kind ScopeKind
	ID   string
	// Parent is the key a thread inherits its history from.
	Parent string
}

func GuildScope(guildID string) Scope {
	return Scope{Kind: ScopeGuild, ID: guildID}
}

func DMScope(channelID string) Scope {
	return Scope{Kind: ScopeDM, ID: channelID}
}

// ThreadScope derives a thread scope. guildID is empty for threads outside
// a guild, which then inherit from DMBaseKey.
func ThreadScope(threadID, guildID string) Scope {
	parent := DMBaseKey
	if guildID != "" {
		parent = GuildScope(guildID).Key()
	}
	return Scope{Kind: ScopeThread, ID: threadID, Parent: parent}
}

func (s Scope) Key() string {
	switch s.Kind {
	case ScopeGuild:
		return "guild:" + s.ID
	case ScopeDM:
		return "dm:" + s.ID
	case ScopeThread:
		return "thread:" + s.ID
	default:
		return fmt.Sprintf("scope%d:%s", s.Kind, s.ID)
	}
}

func (s Scope) String() string {
	return s.Key()
}
