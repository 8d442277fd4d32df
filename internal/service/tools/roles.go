package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/resolver"
)

const everyoneRole = "@everyone"

func (tb *Toolbox) resolveRole(ctx context.Context, env *Env, query string) (core.Role, error) {
	roles, err := env.Platform.Roles(ctx, env.GuildID)
	if err != nil {
		return core.Role{}, platformError(err, "У меня нет доступа к списку ролей.", "Не удалось получить роли сервера")
	}
	m, err := resolver.Resolve(ctx, resolver.Query{
		Text:       query,
		Kind:       resolver.KindRole,
		Candidates: resolver.RoleCandidates(roles),
		Threshold:  resolver.ThresholdRole,
	})
	if err != nil {
		return core.Role{}, err
	}
	for _, r := range roles {
		if r.ID == m.ID {
			return r, nil
		}
	}
	return core.Role{}, core.NewToolError(core.KindEntityNotFound, "Не удалось найти роль, похожую на '%s'.", query)
}

func (tb *Toolbox) members(ctx context.Context, env *Env) ([]core.Member, error) {
	members, err := env.Platform.Members(ctx, env.GuildID)
	if err != nil {
		return nil, platformError(err, "У меня нет доступа к списку участников.", "Не удалось получить участников сервера")
	}
	return members, nil
}

func (tb *Toolbox) createRole(ctx context.Context, env *Env, args Args) (string, error) {
	name, _ := args.Str("role_name")
	spec := core.RoleSpec{Name: name}
	if hex := args.Optional("color_hex"); hex != "" {
		color, err := parseColor(hex)
		if err != nil {
			return "", err
		}
		spec.Color = &color
	}

	role, err := env.Platform.CreateRole(ctx, env.GuildID, spec)
	if err != nil {
		return "", platformError(err, "У меня нет прав на управление ролями.", "Ошибка при создании роли")
	}

	assignTo := args.Optional("assign_to_user")
	if assignTo == "" {
		return fmt.Sprintf("Роль '%s' успешно создана.", role.Name), nil
	}

	members, err := tb.members(ctx, env)
	if err != nil {
		return "", err
	}
	target, err := tb.assignee(ctx, env, assignTo, members)
	if err != nil {
		return fmt.Sprintf("Роль '%s' успешно создана. Но не удалось найти пользователя '%s' для выдачи.", role.Name, assignTo), nil
	}
	if err := env.Platform.AddMemberRole(ctx, env.GuildID, target.ID, role.ID); err != nil {
		return "", platformError(err, "У меня нет прав для выдачи этой роли.", "Роль '%s' создана, но выдать её не удалось", role.Name)
	}
	return fmt.Sprintf("Роль '%s' успешно создана и выдана пользователю %s.", role.Name, target.Name()), nil
}

// assignee prefers an exact match among users mentioned in the request
// before falling back to fuzzy member lookup.
func (tb *Toolbox) assignee(ctx context.Context, env *Env, query string, members []core.Member) (core.Member, error) {
	for _, u := range env.mentionedOthers() {
		if strings.EqualFold(u.Name(), query) || strings.EqualFold(u.Username, query) {
			return findMember(members, u.ID)
		}
	}
	return env.resolveMember(ctx, query, members)
}

func (tb *Toolbox) assignRole(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("role")
	role, err := tb.resolveRole(ctx, env, query)
	if err != nil {
		return "", err
	}
	members, err := tb.members(ctx, env)
	if err != nil {
		return "", err
	}
	target, err := env.resolveMember(ctx, args.Optional("user"), members)
	if err != nil {
		return "", err
	}
	if err := env.Platform.AddMemberRole(ctx, env.GuildID, target.ID, role.ID); err != nil {
		return "", platformError(err, "У меня нет прав для выдачи этой роли.", "Произошла ошибка при выдаче роли")
	}
	return fmt.Sprintf("Роль '%s' успешно выдана пользователю %s.", role.Name, target.Name()), nil
}

func (tb *Toolbox) removeRole(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("role")
	role, err := tb.resolveRole(ctx, env, query)
	if err != nil {
		return "", err
	}
	members, err := tb.members(ctx, env)
	if err != nil {
		return "", err
	}
	target, err := env.resolveMember(ctx, args.Optional("user"), members)
	if err != nil {
		return "", err
	}
	if !slices.Contains(target.RoleIDs, role.ID) {
		return "", core.NewToolError(core.KindInvalidArgument, "У пользователя %s нет роли '%s'.", target.Name(), role.Name)
	}
	if err := env.Platform.RemoveMemberRole(ctx, env.GuildID, target.ID, role.ID); err != nil {
		return "", platformError(err, "У меня нет прав для управления этой ролью.", "Произошла ошибка при снятии роли")
	}
	return fmt.Sprintf("Роль '%s' успешно снята с пользователя %s.", role.Name, target.Name()), nil
}

func (tb *Toolbox) editRole(ctx context.Context, env *Env, args Args) (string, error) {
	newName := args.Optional("new_name")
	newColor := args.Optional("new_color_hex")
	if newName == "" && newColor == "" {
		return "", core.NewToolError(core.KindInvalidArgument, "Нужно указать новое имя или цвет.")
	}

	spec := core.RoleSpec{Name: newName}
	if newColor != "" {
		color, err := parseColor(newColor)
		if err != nil {
			return "", err
		}
		spec.Color = &color
	}

	query, _ := args.Str("original_name")
	role, err := tb.resolveRole(ctx, env, query)
	if err != nil {
		return "", err
	}
	if _, err := env.Platform.EditRole(ctx, env.GuildID, role.ID, spec); err != nil {
		return "", platformError(err, "У меня нет прав на управление ролями.", "Произошла ошибка при изменении роли")
	}
	return fmt.Sprintf("Роль '%s' успешно изменена.", role.Name), nil
}

func (tb *Toolbox) deleteRole(ctx context.Context, env *Env, args Args) (string, error) {
	query, _ := args.Str("role_name")
	role, err := tb.resolveRole(ctx, env, query)
	if err != nil {
		return "", err
	}
	if err := env.Platform.DeleteRole(ctx, env.GuildID, role.ID); err != nil {
		return "", platformError(err, "У меня нет прав на управление ролями.", "Произошла ошибка при удалении роли")
	}
	return fmt.Sprintf("Роль '%s' успешно удалена.", role.Name), nil
}

func (tb *Toolbox) getUserRoles(ctx context.Context, env *Env, args Args) (string, error) {
	query := args.Optional("user")

	if !env.InGuild() {
		if query != "" && !resolver.IsSelfReference(query) {
			return "", core.NewToolError(core.KindInvalidArgument, "Поиск пользователей по имени работает только на сервере.")
		}
		return "", core.NewToolError(core.KindInvalidArgument, "Не могу получить роли для %s: роли есть только на сервере.", env.Author.Name())
	}

	members, err := tb.members(ctx, env)
	if err != nil {
		return "", err
	}

	var target core.Member
	if others := env.mentionedOthers(); len(others) > 0 {
		target, err = findMember(members, others[0].ID)
	} else {
		target, err = env.resolveMember(ctx, query, members)
	}
	if err != nil {
		return "", err
	}

	roles, err := env.Platform.Roles(ctx, env.GuildID)
	if err != nil {
		return "", platformError(err, "У меня нет доступа к списку ролей.", "Не удалось получить роли сервера")
	}
	names := roleNames(roles, target.RoleIDs)

	if len(names) == 0 {
		return fmt.Sprintf("Результат: у пользователя %s нет отдельных ролей.", target.Name()), nil
	}
	who := "роли пользователя " + target.Name()
	if target.ID == env.Author.ID {
		who = "твои роли"
	}
	return fmt.Sprintf("Результат: %s: %s.", who, strings.Join(names, ", ")), nil
}

// roleNames lists the names of the given role ids in guild role order.
func roleNames(roles []core.Role, ids []string) []string {
	var out []string
	for _, r := range roles {
		if r.Name == everyoneRole || !slices.Contains(ids, r.ID) {
			continue
		}
		out = append(out, r.Name)
	}
	return out
}
