package news

import (
	"fmt"
	"strings"
)

const postPrompt = `Ты — Gemini, ИИ-помощник в Discord. Ты только что прочитал эту новостную статью:
--- СТАТЬЯ ---
%s
--- КОНЕЦ СТАТЬИ ---
Твоя задача — написать от первого лица пост для форум-канала, как будто ты сам нашел эту новость и решил поделиться ею с участниками сервера.
1. Придумай цепляющий, разговорный заголовок (до 100 символов).
2. Напиши текст поста (до 1500 символов). Перескажи суть новости своими словами. Добавь свое мнение, задай вопросы аудитории, чтобы спровоцировать дискуссию.
3. Не используй фразы "статья говорит" или "в источнике сказано". Говори так, будто это твои мысли.

Верни результат в формате строгого JSON: {"title": "твой_заголовок", "content": "твой_текст_поста"}
`

const tagsPrompt = `Проанализируй этот заголовок и текст поста:
Заголовок: %s
Текст: %s
---
Вот список доступных тегов: %s.
Выбери от 1 до 3 самых подходящих тегов для этого поста. Верни ответ в формате строгого JSON-массива строк.
Пример: ["Технологии", "ИИ"]
`

func buildPostPrompt(article string) string {
	return fmt.Sprintf(postPrompt, article)
}

func buildTagsPrompt(title, content string, tags []string) string {
	return fmt.Sprintf(tagsPrompt, title, content, strings.Join(tags, ", "))
}
