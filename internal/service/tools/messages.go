package tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/history"
	"github.com/sandevgo/gemibot/internal/service/resolver"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	replySearchDepth   = 20
	defaultSummarySize = 25
	maxSummarySize     = 100
	maxChatLogTokens   = 6000
	previewRunes       = 50
	defaultDMText      = "Привет! Ты просил меня написать тебе в ЛС. Чем могу помочь?"
)

const summaryPrompt = "Ты — ИИ-аналитик. Тебе предоставлен лог чата, включающий сообщения пользователей, ботов и системные уведомления. " +
	"Сделай краткую, но содержательную сводку этого лога на русском языке. Выдели основные темы, ключевые моменты и общее настроение беседы. " +
	"Не нужно упоминать, кто и что просил, просто дай суть происходящего.\n\n--- ЛОГ ЧАТА ---\n%s\n--- КОНЕЦ ЛОГА ---"

func (tb *Toolbox) sendMessage(ctx context.Context, env *Env, args Args) (string, error) {
	text, ok := args.Str("text")
	if !ok {
		return "", core.NewToolError(core.KindInvalidArgument, "Не могу отправить пустое сообщение.")
	}

	members, err := tb.members(ctx, env)
	if err != nil {
		return "", err
	}
	text = resolver.ExpandMentions(ctx, text, members)

	if who := args.Optional("reply_to_user"); who != "" {
		return tb.replyTo(ctx, env, who, text, members)
	}

	channelID, channelName, err := tb.targetChannel(ctx, env, args.Optional("channel_name"))
	if err != nil {
		return "", err
	}
	if _, err := env.Platform.SendMessage(ctx, channelID, text, ""); err != nil {
		return "", platformError(err, "У меня нет прав на это действие.", "Произошла ошибка при отправке сообщения")
	}
	return fmt.Sprintf("Сообщение '%s' отправлено в канал '%s'.", preview(text, previewRunes), channelName), nil
}

// targetChannel resolves a text channel by name; empty or _CURRENT_ means
// the channel of the request.
func (tb *Toolbox) targetChannel(ctx context.Context, env *Env, query string) (string, string, error) {
	chs, err := tb.channels(ctx, env)
	if err != nil {
		return "", "", err
	}

	if query == "" || query == currentChannel {
		name := "текущий канал"
		if c, ok := findChannel(chs, env.ChannelID); ok {
			name = c.Name
		}
		return env.ChannelID, name, nil
	}

	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       query,
		Kind:       resolver.KindChannel,
		Candidates: resolver.ChannelCandidates(chs, core.ChannelText),
		Threshold:  resolver.ThresholdDefault,
		ExactFirst: true,
	})
	if err != nil {
		return "", "", core.NewToolError(core.KindEntityNotFound, "Не удалось найти канал '%s'.", query)
	}
	return m.ID, m.Name, nil
}

// replyTo answers the user's message: the one the request replied to if it
// is theirs, else their latest in recent history, else a mention in place.
func (tb *Toolbox) replyTo(ctx context.Context, env *Env, who, text string, members []core.Member) (string, error) {
	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       who,
		Kind:       resolver.KindUser,
		Candidates: resolver.MemberCandidates(members),
		Threshold:  resolver.ThresholdDefault,
	})
	if err != nil {
		return "", core.NewToolError(core.KindEntityNotFound, "Не удалось найти пользователя '%s' для ответа.", who)
	}
	target, err := findMember(members, m.ID)
	if err != nil {
		return "", err
	}

	replyID := ""
	if ref := env.Message.ReferenceID; ref != "" {
		msg, err := env.Platform.Message(ctx, env.ChannelID, ref)
		if err == nil && msg.Author.ID == target.ID {
			replyID = msg.ID
		}
	}
	if replyID == "" {
		recent, err := env.Platform.RecentMessages(ctx, env.ChannelID, replySearchDepth)
		if err != nil {
			return "", platformError(err, "У меня нет доступа к истории канала.", "Не удалось прочитать историю канала")
		}
		for _, msg := range recent {
			if msg.Author.ID == target.ID {
				replyID = msg.ID
				break
			}
		}
	}

	if replyID != "" {
		if _, err := env.Platform.SendMessage(ctx, env.ChannelID, text, replyID); err != nil {
			return "", platformError(err, "У меня нет прав на это действие.", "Произошла ошибка при отправке ответа")
		}
		return fmt.Sprintf("Сообщение '%s' отправлено в ответ пользователю %s.", preview(text, previewRunes), target.Name()), nil
	}

	withMention := target.Mention() + " " + text
	if _, err := env.Platform.SendMessage(ctx, env.ChannelID, withMention, ""); err != nil {
		return "", platformError(err, "У меня нет прав на это действие.", "Произошла ошибка при отправке сообщения")
	}
	return fmt.Sprintf("Сообщение '%s' отправлено в текущий канал с упоминанием пользователя.", preview(withMention, previewRunes)), nil
}

func (tb *Toolbox) requireManageMessages(ctx context.Context, env *Env, verb string) error {
	ok, err := env.Platform.CanManageMessages(ctx, env.ChannelID)
	if err != nil {
		return platformError(err, "У меня нет доступа к правам этого канала.", "Не удалось проверить права в канале")
	}
	if !ok {
		return core.NewToolError(core.KindPermissionDenied,
			"У меня нет права 'Управлять сообщениями' в этом канале, поэтому я не могу %s сообщения.", verb)
	}
	return nil
}

func (tb *Toolbox) repliedMessage(ctx context.Context, env *Env) (core.Message, error) {
	msg, err := env.Platform.Message(ctx, env.ChannelID, env.Message.ReferenceID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Message{}, core.WrapToolError(core.KindEntityNotFound, err, "Не удалось найти сообщение, на которое ты ответил.")
		}
		return core.Message{}, platformError(err, "У меня нет доступа к этому сообщению.", "Не удалось получить сообщение")
	}
	return msg, nil
}

func (tb *Toolbox) pinMessage(ctx context.Context, env *Env, args Args) (string, error) {
	if env.Message.ReferenceID == "" {
		return "", core.NewToolError(core.KindInvalidArgument,
			"Чтобы закрепить сообщение, ты должен ответить на него и затем попросить меня его закрепить.")
	}
	if err := tb.requireManageMessages(ctx, env, "закреплять"); err != nil {
		return "", err
	}

	msg, err := tb.repliedMessage(ctx, env)
	if err != nil {
		return "", err
	}
	if msg.Pinned {
		return fmt.Sprintf("Сообщение от %s уже было закреплено ранее.", msg.Author.Name()), nil
	}
	if err := env.Platform.PinMessage(ctx, env.ChannelID, msg.ID); err != nil {
		return "", platformError(err, "У меня нет прав для закрепления сообщений в этом канале.", "Не удалось закрепить сообщение")
	}
	return fmt.Sprintf("Сообщение от пользователя %s было успешно закреплено.", msg.Author.Name()), nil
}

func (tb *Toolbox) unpinMessage(ctx context.Context, env *Env, args Args) (string, error) {
	if err := tb.requireManageMessages(ctx, env, "откреплять"); err != nil {
		return "", err
	}

	if env.Message.ReferenceID != "" {
		msg, err := tb.repliedMessage(ctx, env)
		if err != nil {
			return "", err
		}
		if !msg.Pinned {
			return "", core.NewToolError(core.KindInvalidArgument, "Это сообщение и не было закреплено.")
		}
		if err := env.Platform.UnpinMessage(ctx, env.ChannelID, msg.ID); err != nil {
			return "", platformError(err, "У меня нет прав для открепления сообщений в этом канале.", "Не удалось открепить сообщение")
		}
		return fmt.Sprintf("Сообщение от пользователя %s было успешно откреплено.", msg.Author.Name()), nil
	}

	pins, err := env.Platform.PinnedMessages(ctx, env.ChannelID)
	if err != nil {
		return "", platformError(err, "У меня нет доступа к закрепленным сообщениям.", "Не удалось получить закрепленные сообщения")
	}
	if len(pins) == 0 {
		return "", core.NewToolError(core.KindEntityNotFound, "В этом канале нет закрепленных сообщений.")
	}
	last := pins[0]
	if err := env.Platform.UnpinMessage(ctx, env.ChannelID, last.ID); err != nil {
		return "", platformError(err, "У меня нет прав для открепления сообщений в этом канале.", "Не удалось открепить сообщение")
	}
	return fmt.Sprintf("Последнее закрепленное сообщение (от пользователя %s) было успешно откреплено.", last.Author.Name()), nil
}

func (tb *Toolbox) summarizeChat(ctx context.Context, env *Env, args Args) (string, error) {
	count, err := args.Int("count", defaultSummarySize)
	if err != nil {
		return "", core.WrapToolError(core.KindInvalidArgument, err, "Количество сообщений должно быть числом.")
	}
	count = min(max(count, 1), maxSummarySize)

	recent, err := env.Platform.RecentMessages(ctx, env.ChannelID, count)
	if err != nil {
		return "", platformError(err, "У меня нет доступа к истории канала.", "Ошибка при анализе чата")
	}
	if len(recent) == 0 {
		return "В канале нет сообщений для анализа.", nil
	}

	chronological := slices.Clone(recent)
	slices.Reverse(chronological)

	lines := ChatLog(chronological)
	if len(lines) == 0 {
		return fmt.Sprintf("Не удалось извлечь полезную информацию из последних %d записей.", len(recent)), nil
	}
	lines = tb.fitLog(ctx, lines)

	summary, err := tb.gen.Generate(ctx, []core.Turn{
		core.UserTurn(core.TextPart(fmt.Sprintf(summaryPrompt, strings.Join(lines, "\n")))),
	})
	if err != nil {
		return "", core.WrapToolError(core.KindToolExecution, err, "Ошибка при анализе чата.")
	}

	header := fmt.Sprintf("**Сводка последних %d записей в чате:**\n\n", len(recent))
	if _, err := env.Platform.SendMessage(ctx, env.ChannelID, header+summary, ""); err != nil {
		return "", platformError(err, "У меня нет прав на отправку сообщений в этот канал.", "Не удалось отправить сводку")
	}
	return fmt.Sprintf("Сводка по %d записям успешно создана и отправлена.", len(recent)), nil
}

// fitLog drops the oldest lines until the log fits the token budget.
func (tb *Toolbox) fitLog(ctx context.Context, lines []string) []string {
	start := 0
	for start < len(lines)-1 && tb.clamp.Tokens(strings.Join(lines[start:], "\n")) > maxChatLogTokens {
		start++
	}
	if start > 0 {
		log.FromCtx(ctx).Debug().Int("dropped", start).Msg("chat log trimmed to token budget")
	}
	return lines[start:]
}

// ChatLog renders messages as "author: text" lines, tagging system
// messages and describing attachment-only or embed-only ones.
func ChatLog(msgs []core.Message) []string {
	var lines []string
	for _, m := range msgs {
		author := m.Author.Name()
		var text string
		switch {
		case m.System:
			author = "[СИСТЕМА]"
			text = m.Content
		case m.Content != "":
			text = m.Content
		case len(m.Attachments) > 0:
			text = fmt.Sprintf("[Отправлено вложений: %d]", len(m.Attachments))
		case m.Embeds > 0:
			text = "[Отправлен эмбед/ссылка]"
		}
		if text != "" {
			lines = append(lines, author+": "+text)
		}
	}
	return lines
}

// sendDM always writes to the requester. From a guild the guild
// conversation is carried over into the DM scope.
func (tb *Toolbox) sendDM(ctx context.Context, env *Env, args Args) (string, error) {
	text := args.Optional("text")
	if text == "" {
		text = defaultDMText
	}

	dm, err := env.Platform.OpenDM(ctx, env.Author.ID)
	if err != nil {
		return "", dmError(err, env.Author)
	}

	if env.InGuild() && tb.history != nil {
		tb.history.Copy(ctx, history.GuildScope(env.GuildID).Key(), history.DMScope(dm.ID).Key())
	}

	if _, err := env.Platform.SendMessage(ctx, dm.ID, text, ""); err != nil {
		return "", dmError(err, env.Author)
	}
	return fmt.Sprintf("Личное сообщение успешно отправлено пользователю %s.", env.Author.Name()), nil
}

func dmError(err error, to core.User) error {
	return platformError(err,
		fmt.Sprintf("Не могу отправить тебе ЛС, %s. Возможно, ты заблокировал меня или закрыл ЛС от участников сервера.", to.Name()),
		"Произошла ошибка при отправке ЛС")
}
