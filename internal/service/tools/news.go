package tools

import (
	"context"
	"fmt"

	"github.com/sandevgo/gemibot/internal/core"
)

func (tb *Toolbox) postNews(ctx context.Context, env *Env, args Args) (string, error) {
	if tb.news == nil {
		return "", core.NewToolError(core.KindInvalidArgument, "Публикация новостей не настроена.")
	}
	url, _ := args.Str("url")

	if _, err := env.Platform.SendMessage(ctx, env.ChannelID, "Принято! Изучаю статью по ссылке: "+url, ""); err != nil {
		return "", platformError(err, "У меня нет прав на отправку сообщений в этот канал.", "Не удалось отправить сообщение")
	}

	res, err := tb.news.Publish(ctx, url)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Новость успешно опубликована! Новый пост здесь: %s", res.ThreadURL), nil
}
