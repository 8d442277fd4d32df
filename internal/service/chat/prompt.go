package chat

import (
	"fmt"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
)

const (
	// EmptyRequestReply answers a bare wake word.
	EmptyRequestReply = "Слушаю вас."

	backgroundBlock = "--- ФОНОВЫЙ РАЗГОВОР В КАНАЛЕ ---\n%s\n--- КОНЕЦ ФОНОВОГО РАЗГОВОРА ---"
	replyContext    = "Контекст из сообщения, на которое ответили (автор: '%s'): «%s»."
	replyImage      = "Вот изображение/GIF из сообщения, на которое ответили:"
	replyVideo      = "Вот видео из сообщения, на которое ответили:"
	requestLine     = "Запрос от пользователя %s: %s"
)

// requestText turns the raw message into the request the model sees: other
// users' mentions become display names and the bot mention is dropped.
func requestText(msg core.Message, botID string) string {
	text := msg.Content
	for _, u := range msg.Mentions {
		if u.ID == botID {
			continue
		}
		text = strings.ReplaceAll(text, "<@"+u.ID+">", u.Name())
		text = strings.ReplaceAll(text, "<@!"+u.ID+">", u.Name())
	}
	if botID != "" {
		text = strings.ReplaceAll(text, "<@"+botID+">", "")
		text = strings.ReplaceAll(text, "<@!"+botID+">", "")
	}
	return strings.TrimSpace(text)
}

func backgroundPart(lines []string) (core.Part, bool) {
	if len(lines) == 0 {
		return core.Part{}, false
	}
	return core.TextPart(fmt.Sprintf(backgroundBlock, strings.Join(lines, "\n"))), true
}
