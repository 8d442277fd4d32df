package tools

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/news"
	"github.com/sandevgo/gemibot/pkg/budget"
)

// HistoryCopier transfers a conversation between scopes.
type HistoryCopier interface {
	Copy(ctx context.Context, fromKey, toKey string) bool
}

// NewsPublisher turns an article link into a forum post.
type NewsPublisher interface {
	Publish(ctx context.Context, url string) (news.Published, error)
}

// Toolbox carries what the tool handlers need beyond the platform.
type Toolbox struct {
	gen     core.Generator
	history HistoryCopier
	news    NewsPublisher
	clamp   *budget.Clamp
	// bulk paces mass rename and delete operations.
	bulk *rate.Limiter
}

func NewToolbox(gen core.Generator, history HistoryCopier, news NewsPublisher, clamp *budget.Clamp, bulk *rate.Limiter) *Toolbox {
	if bulk == nil {
		bulk = rate.NewLimiter(rate.Inf, 1)
	}
	return &Toolbox{
		gen:     gen,
		history: history,
		news:    news,
		clamp:   clamp,
		bulk:    bulk,
	}
}

// Catalog renders the tool list shown to the model. It needs no bound
// dependencies, so conversation stores can be built before the toolbox.
func Catalog() string {
	return (&Toolbox{}).Registry().Catalog()
}

// Registry registers the full catalog in the order the model sees it.
func (tb *Toolbox) Registry() *Registry {
	r := NewRegistry()
	r.MustRegister(
		Descriptor{
			Name:     "create_role",
			Usage:    `{"tool": "create_role", "role_name": "имя", "color_hex": "#RRGGBB", "assign_to_user": "имя_пользователя"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"role_name"},
			Run:      tb.createRole,
		},
		Descriptor{
			Name:     "assign_role",
			Usage:    `{"tool": "assign_role", "role": "имя_роли", "user": "имя_пользователя"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"role"},
			Run:      tb.assignRole,
		},
		Descriptor{
			Name:     "remove_role",
			Usage:    `{"tool": "remove_role", "role": "имя_роли", "user": "имя_пользователя"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"role"},
			Run:      tb.removeRole,
		},
		Descriptor{
			Name:     "edit_role",
			Usage:    `{"tool": "edit_role", "original_name": "старое_имя", "new_name": "новое_имя", "new_color_hex": "#RRGGBB"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"original_name"},
			Run:      tb.editRole,
		},
		Descriptor{
			Name:     "delete_role",
			Usage:    `{"tool": "delete_role", "role_name": "имя_роли"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"role_name"},
			Run:      tb.deleteRole,
		},
		Descriptor{
			Name:  "get_user_roles",
			Usage: `{"tool": "get_user_roles", "user": "имя_пользователя"}`,
			Class: Informational,
			Run:   tb.getUserRoles,
		},
		Descriptor{
			Name:     "create_channel",
			Usage:    `{"tool": "create_channel", "channel_name": "имя", "channel_type": "text|voice"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"channel_name"},
			Run:      tb.createChannel,
		},
		Descriptor{
			Name:     "rename_channel",
			Usage:    `{"tool": "rename_channel", "original_name": "текущее_имя", "new_name": "новое_имя"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"original_name", "new_name"},
			Run:      tb.renameChannel,
		},
		Descriptor{
			Name:     "delete_channel",
			Usage:    `{"tool": "delete_channel", "channel_name": "имя_канала"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"channel_name"},
			Run:      tb.deleteChannel,
		},
		Descriptor{
			Name:     "rename_channels",
			Usage:    `{"tool": "rename_channels", "channel_type": "text|voice|all", "action": "add_prefix|add_suffix|remove_part", "value": "текст", "exclude": ["канал1"]}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"channel_type", "action", "value"},
			Run:      tb.renameChannels,
		},
		Descriptor{
			Name:     "delete_channels",
			Usage:    `{"tool": "delete_channels", "channel_type": "text|voice|all", "exclude": ["канал1"]}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"channel_type"},
			Run:      tb.deleteChannels,
		},
		Descriptor{
			Name:  "pin_message",
			Usage: `{"tool": "pin_message"}`,
			Class: Action,
			Admin: true,
			Run:   tb.pinMessage,
		},
		Descriptor{
			Name:  "unpin_message",
			Usage: `{"tool": "unpin_message"}`,
			Class: Action,
			Admin: true,
			Run:   tb.unpinMessage,
		},
		Descriptor{
			Name:  "send_message",
			Usage: `{"tool": "send_message", "text": "текст", "channel_name": "имя_канала_или_'_CURRENT_'", "reply_to_user": "имя_пользователя"}`,
			Class: Action,
			Admin: true,
			Run:   tb.sendMessage,
		},
		Descriptor{
			Name:  "summarize_chat",
			Usage: `{"tool": "summarize_chat", "count": 25}`,
			Class: Action,
			Run:   tb.summarizeChat,
		},
		Descriptor{
			Name:  "send_dm",
			Usage: `{"tool": "send_dm", "text": "текст для отправки"}`,
			Class: Action,
			Run:   tb.sendDM,
		},
		Descriptor{
			Name:     "join_voice",
			Usage:    `{"tool": "join_voice", "channel_name": "имя_канала"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"channel_name"},
			Run:      tb.joinVoice,
		},
		Descriptor{
			Name:  "leave_voice",
			Usage: `{"tool": "leave_voice"}`,
			Class: Action,
			Admin: true,
			Run:   tb.leaveVoice,
		},
		Descriptor{
			Name:     "post_news",
			Usage:    `{"tool": "post_news", "url": "ссылка_на_статью"}`,
			Class:    Action,
			Admin:    true,
			Required: []string{"url"},
			Run:      tb.postNews,
		},
	)
	return r
}
