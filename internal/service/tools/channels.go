package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/resolver"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	currentChannel = "_CURRENT_"
	maxChannelName = 100
)

func (tb *Toolbox) channels(ctx context.Context, env *Env) ([]core.Channel, error) {
	chs, err := env.Platform.Channels(ctx, env.GuildID)
	if err != nil {
		return nil, platformError(err, "У меня нет доступа к списку каналов.", "Не удалось получить каналы сервера")
	}
	return chs, nil
}

func findChannel(chs []core.Channel, id string) (core.Channel, bool) {
	for _, c := range chs {
		if c.ID == id {
			return c, true
		}
	}
	return core.Channel{}, false
}

func (tb *Toolbox) createChannel(ctx context.Context, env *Env, args Args) (string, error) {
	name, _ := args.Str("channel_name")
	typ := strings.ToLower(args.Optional("channel_type"))
	if typ == "" {
		typ = "text"
	}

	var kind core.ChannelKind
	var label string
	switch {
	case strings.Contains(typ, "text"):
		kind, label = core.ChannelText, "текстовый"
	case strings.Contains(typ, "voice"):
		kind, label = core.ChannelVoice, "голосовой"
	default:
		return "", core.NewToolError(core.KindInvalidArgument, "Неверный тип канала '%s'. Укажите 'text' или 'voice'.", typ)
	}

	ch, err := env.Platform.CreateChannel(ctx, env.GuildID, name, kind)
	if err != nil {
		return "", platformError(err, "У меня нет прав на управление каналами.", "Непредвиденная ошибка при создании канала")
	}
	return fmt.Sprintf("Канал '%s' (%s) успешно создан.", ch.Name, label), nil
}

func (tb *Toolbox) renameChannel(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("original_name")
	newName, _ := args.Str("new_name")

	chs, err := tb.channels(ctx, env)
	if err != nil {
		return "", err
	}
	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       query,
		Kind:       resolver.KindChannel,
		Candidates: resolver.ChannelCandidates(chs),
		Threshold:  resolver.ThresholdDefault,
	})
	if err != nil {
		return "", err
	}

	if err := env.Platform.RenameChannel(ctx, m.ID, newName); err != nil {
		return "", platformError(err, "У меня нет прав на управление каналами.", "Не удалось переименовать канал '%s'", m.Name)
	}
	return fmt.Sprintf("Канал '%s' успешно переименован в '%s'.", m.Name, newName), nil
}

func (tb *Toolbox) deleteChannel(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("channel_name")
	if strings.EqualFold(strings.TrimSpace(query), currentChannel) {
		return "", core.NewToolError(core.KindInvalidArgument, "Укажите конкретное имя канала для удаления, а не '%s'.", currentChannel)
	}

	chs, err := tb.channels(ctx, env)
	if err != nil {
		return "", err
	}
	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       query,
		Kind:       resolver.KindChannel,
		Candidates: resolver.ChannelCandidates(chs, core.ChannelText, core.ChannelVoice),
		Threshold:  resolver.ThresholdDestructive,
	})
	if err != nil {
		return "", err
	}

	if err := env.Platform.DeleteChannel(ctx, m.ID); err != nil {
		return "", platformError(err, "У меня нет прав на удаление каналов.", "Произошла ошибка при удалении канала")
	}
	return fmt.Sprintf("Канал '%s' успешно удален.", m.Name), nil
}

// bulkTargets selects text/voice/all channels minus the excluded names.
func (tb *Toolbox) bulkTargets(ctx context.Context, env *Env, typ string, exclude []string) ([]core.Channel, error) {
	var kinds []core.ChannelKind
	switch typ {
	case "text":
		kinds = []core.ChannelKind{core.ChannelText}
	case "voice":
		kinds = []core.ChannelKind{core.ChannelVoice}
	case "all":
		kinds = []core.ChannelKind{core.ChannelText, core.ChannelVoice}
	default:
		return nil, core.NewToolError(core.KindInvalidArgument, "Неверный тип канала '%s'. Укажите 'text', 'voice' или 'all'.", typ)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[strings.ToLower(name)] = struct{}{}
	}

	chs, err := tb.channels(ctx, env)
	if err != nil {
		return nil, err
	}

	var out []core.Channel
	for _, c := range chs {
		if !containsKind(kinds, c.Kind) {
			continue
		}
		if _, ok := skip[strings.ToLower(c.Name)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func containsKind(kinds []core.ChannelKind, k core.ChannelKind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

func (tb *Toolbox) renameChannels(ctx context.Context, env *Env, args Args) (string, error) {
	logger := log.FromCtx(ctx)

	action, _ := args.Str("action")
	value, _ := args.Str("value")
	var rename func(string) string
	switch action {
	case "add_prefix":
		rename = func(n string) string { return value + n }
	case "add_suffix":
		rename = func(n string) string { return n + value }
	case "remove_part":
		rename = func(n string) string { return strings.ReplaceAll(n, value, "") }
	default:
		return "", core.NewToolError(core.KindInvalidArgument, "Неверное действие '%s'. Укажите 'add_prefix', 'add_suffix' или 'remove_part'.", action)
	}

	typ, _ := args.Str("channel_type")
	targets, err := tb.bulkTargets(ctx, env, typ, args.Strings("exclude"))
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "Нет каналов для переименования.", nil
	}

	renamed := 0
	for _, c := range targets {
		newName := rename(c.Name)
		if n := utf8.RuneCountInString(newName); n < 1 || n > maxChannelName {
			logger.Warn().Str("channel", c.Name).Str("new_name", newName).Msg("new channel name has invalid length, skipping")
			continue
		}
		if newName == c.Name {
			continue
		}
		if err := tb.bulk.Wait(ctx); err != nil {
			return "", core.WrapToolError(core.KindToolExecution, err, "Переименование прервано после %d каналов.", renamed)
		}
		if err := env.Platform.RenameChannel(ctx, c.ID, newName); err != nil {
			logger.Warn().Err(err).Str("channel", c.Name).Msg("bulk rename failed for channel")
			continue
		}
		renamed++
	}
	return fmt.Sprintf("Успешно переименовано %d каналов.", renamed), nil
}

func (tb *Toolbox) deleteChannels(ctx context.Context, env *Env, args Args) (string, error) {
	logger := log.FromCtx(ctx)

	typ, _ := args.Str("channel_type")
	targets, err := tb.bulkTargets(ctx, env, typ, args.Strings("exclude"))
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "Нет каналов для удаления.", nil
	}

	deleted := 0
	for _, c := range targets {
		if err := tb.bulk.Wait(ctx); err != nil {
			return "", core.WrapToolError(core.KindToolExecution, err, "Удаление прервано после %d каналов.", deleted)
		}
		if err := env.Platform.DeleteChannel(ctx, c.ID); err != nil {
			logger.Warn().Err(err).Str("channel", c.Name).Msg("bulk delete failed for channel")
			continue
		}
		deleted++
	}
	return fmt.Sprintf("Успешно удалено %d каналов.", deleted), nil
}
