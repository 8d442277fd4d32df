package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/resolver"
)

func (tb *Toolbox) joinVoice(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("channel_name")

	chs, err := tb.channels(ctx, env)
	if err != nil {
		return "", err
	}
	candidates := resolver.ChannelCandidates(chs, core.ChannelVoice)
	if len(candidates) == 0 {
		return "", core.NewToolError(core.KindEntityNotFound, "На сервере нет голосовых каналов.")
	}

	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       query,
		Kind:       resolver.KindVoiceChannel,
		Candidates: candidates,
		Threshold:  resolver.ThresholdDefault,
		ExactFirst: true,
	})
	if err != nil {
		return "", err
	}

	if err := env.Platform.JoinVoice(ctx, env.GuildID, m.ID); err != nil {
		return "", platformError(err, "У меня нет прав на подключение к этому каналу.", "Не удалось подключиться к каналу '%s'", m.Name)
	}
	return fmt.Sprintf("Успешно подключился к голосовому каналу '%s'.", m.Name), nil
}

func (tb *Toolbox) leaveVoice(ctx context.Context, env *Env, args Args) (string, error) {
	name, err := env.Platform.LeaveVoice(ctx, env.GuildID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.WrapToolError(core.KindInvalidArgument, err, "Я не нахожусь в голосовом канале.")
		}
		return "", platformError(err, "У меня нет прав на это действие.", "Не удалось отключиться от голосового канала")
	}
	return fmt.Sprintf("Успешно отключился от голосового канала '%s'.", name), nil
}
