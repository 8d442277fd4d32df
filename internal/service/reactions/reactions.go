// Package reactions adds emoji reactions to chat messages the bot was not
// asked about.
package reactions

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/providers/media"
	"github.com/sandevgo/gemibot/pkg/extract"
	"github.com/sandevgo/gemibot/pkg/log"
)

const imagePrompt = `Твоя задача — выступить в роли "эмоционального критика". Проанализируй изображение и верни **ОДИН** наиболее подходящий эмодзи в JSON-формате. Вот несколько подсказок:
- Если это смешной мем или шутка: выбери из 😂, 🤣, 💀.
- Если это красивый арт, пейзаж или фото: выбери из 😍, ✨, 🎨,❤️.
- Если это милое животное: выбери из 🥰, 🥺, ❤️.
- Если это еда: выбери из 😋, 🤤, 👍.
- Если изображение грустное или серьезное: выбери 🤔 или 😢.
- Если ты не уверен или контекст нейтральный: верни ` + "`null`" + `.

**Формат ответа строго:** ` + "`{\"emoji\": \"<один_эмодзи>\"}`" + ` или ` + "`{\"emoji\": null}`" + `.`

const textPrompt = `Твоя задача — проанализировать сообщение пользователя и вернуть ОДИН JSON-объект с эмодзи-реакцией. Следуй этим правилам в строгом порядке: 1.  **Правило про конкурентов:** Если в сообщении позитивно упоминаются конкурирующие модели или компании (например, ChatGPT, Claude), ты ДОЛЖЕН выбрать случайный эмодзи из негативного списка. 2.  **Правило про Google:** Если в сообщении негативно упоминаются модели Google (Gemma, Gemini), ты ДОЛЖЕН выбрать случайный эмодзи из негативного списка. 3.  **Общее позитивное настроение:** Если правила 1 и 2 не сработали и сообщение в целом позитивное, выбери случайный эмодзи из позитивного списка. 4.  **Общее негативное настроение:** Если правила 1 и 2 не сработали и сообщение в целом негативное, выбери случайный эмодзи из негативного списка. 5.  **Все остальные случаи:** Если настроение нейтральное, смешанное или непонятное, верни null. **Списки эмодзи:** - Позитивные: %s - Негативные: %s **Формат ответа:** Ответь ТОЛЬКО JSON-объектом. Без лишних слов. Формат: {"emoji": "<один_эмодзи>"} или {"emoji": null} **Сообщение пользователя для анализа:** %s`

var (
	positiveEmojis = []string{"😊", "👍", "❤️", "🥰", "😍", "🤩", "💯", "🔥"}
	negativeEmojis = []string{"😢", "😠", "👎", "🤔", "😕", "💔"}
)

// DefaultTriggers are the words that make a message worth a text reaction.
var DefaultTriggers = []string{
	"гемини", "gemini", "ии", "ai", "нейросеть", "нейросети", "нейронка",
	"геми", "гемми", "гемени", "гемений", "гемушка",
	"llm", "промпт", "гугл", "google", "chatgpt", "чатгпт", "gpt", "claude",
}

const DefaultImageChance = 0.15

type Platform interface {
	media.Downloader
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

type Reactor struct {
	gen         core.Generator
	triggers    []string
	imageChance float64
	roll        func() float64
}

type Option func(*Reactor)

// WithRoll replaces the random source used for the image reaction chance.
func WithRoll(fn func() float64) Option {
	return func(r *Reactor) { r.roll = fn }
}

func New(gen core.Generator, triggers []string, imageChance float64, opts ...Option) *Reactor {
	lower := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lower = append(lower, t)
		}
	}
	r := &Reactor{
		gen:         gen,
		triggers:    lower,
		imageChance: imageChance,
		roll:        rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// React considers a passive message: an image gets a reaction with
// probability imageChance, otherwise text mentioning a trigger word is
// rated. Failures are logged and never reach the user.
func (r *Reactor) React(ctx context.Context, p Platform, msg core.Message) {
	logger := log.FromCtx(ctx)

	var (
		emoji string
		err   error
	)
	if img, ok := media.FirstImage(msg.Attachments); ok && r.roll() < r.imageChance {
		emoji, err = r.imageEmoji(ctx, p, img)
	} else if msg.Content != "" && r.triggered(msg.Content) {
		emoji, err = r.TextEmoji(ctx, msg.Content)
	} else {
		return
	}

	if err != nil {
		logger.Warn().Err(err).Msg("passive reaction failed")
		return
	}
	if emoji == "" {
		logger.Debug().Msg("model chose not to react")
		return
	}
	if err := p.AddReaction(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		logger.Warn().Err(err).Str("emoji", emoji).Msg("failed to add reaction")
		return
	}
	logger.Info().Str("emoji", emoji).Msg("passive reaction added")
}

func (r *Reactor) triggered(content string) bool {
	lower := strings.ToLower(content)
	for _, t := range r.triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func (r *Reactor) imageEmoji(ctx context.Context, p Platform, a core.Attachment) (string, error) {
	data, err := p.Download(ctx, a)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	part, err := media.Part(ctx, a, data)
	if err != nil {
		return "", err
	}
	return r.ImageEmoji(ctx, part)
}

// ImageEmoji asks the model for one emoji that fits the image, or "".
func (r *Reactor) ImageEmoji(ctx context.Context, image core.Part) (string, error) {
	return r.ask(ctx, core.UserTurn(core.TextPart(imagePrompt), image))
}

// TextEmoji asks the model to rate the mood of a message, or "".
func (r *Reactor) TextEmoji(ctx context.Context, content string) (string, error) {
	quoted, _ := json.Marshal(content)
	prompt := fmt.Sprintf(textPrompt,
		strings.Join(positiveEmojis, ", "),
		strings.Join(negativeEmojis, ", "),
		quoted,
	)
	return r.ask(ctx, core.UserTurn(core.TextPart(prompt)))
}

func (r *Reactor) ask(ctx context.Context, turn core.Turn) (string, error) {
	reply, err := r.gen.Generate(ctx, []core.Turn{turn})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	var decision struct {
		Emoji *string `json:"emoji"`
	}
	if err := extract.Object(reply, &decision); err != nil {
		return "", fmt.Errorf("parse reaction %q: %w", reply, err)
	}
	if decision.Emoji == nil {
		return "", nil
	}
	return strings.TrimSpace(*decision.Emoji), nil
}
