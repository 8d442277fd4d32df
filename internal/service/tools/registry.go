// Package tools holds the fixed catalog of actions the model may request
// and executes them against the chat platform.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

type Class int

const (
	// Informational results feed the next model round.
	Informational Class = iota
	// Action results are terminal for the round.
	Action
)

func (c Class) String() string {
	if c == Informational {
		return "informational"
	}
	return "action"
}

type Handler func(ctx context.Context, env *Env, args Args) (string, error)

// Descriptor declares one tool.
type Descriptor struct {
	Name string
	// Usage is the JSON example shown to the model in the catalog.
	Usage string
	Class Class
	// Admin tools only run in a guild context.
	Admin bool
	// Required arguments must be present and non-empty strings.
	Required []string
	Run      Handler
}

// Result is the outcome of one successful invocation.
type Result struct {
	Tool   string
	Class  Class
	Output string
}

type Registry struct {
	tools map[string]Descriptor
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if d.Run == nil {
		return fmt.Errorf("tool '%s': handler cannot be nil", d.Name)
	}
	if _, ok := r.tools[d.Name]; ok {
		return fmt.Errorf("tool '%s' already registered", d.Name)
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.tools[name]
	return d, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Catalog renders the tool list for the system preamble.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	sb.WriteString("### Каталог Инструментов\n")
	for _, name := range r.order {
		fmt.Fprintf(&sb, "- `%s`: `%s`\n", name, r.tools[name].Usage)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// AdminTools lists the names of guild-only tools, sorted.
func (r *Registry) AdminTools() []string {
	var out []string
	for name, d := range r.tools {
		if d.Admin {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Execute runs one invocation. Every failure comes back as a *core.ToolError.
// Privilege and argument checks happen before the handler touches the platform.
func (r *Registry) Execute(ctx context.Context, env *Env, inv core.ToolInvocation) (Result, error) {
	logger := log.FromCtx(ctx).With().Str("tool", inv.Name).Logger()

	d, ok := r.tools[inv.Name]
	if !ok {
		logger.Warn().Msg("unknown tool requested")
		return Result{}, core.NewToolError(core.KindInvalidArgument, "Неизвестный инструмент '%s'.", inv.Name)
	}

	if d.Admin && !env.InGuild() {
		logger.Warn().Msg("guild-only tool called outside a guild")
		return Result{}, core.NewToolError(core.KindPermissionDenied, "Эта команда работает только на сервере.")
	}

	args := Args(inv.Args)
	for _, key := range d.Required {
		if _, ok := args.Str(key); !ok {
			return Result{}, core.NewToolError(core.KindInvalidArgument, "Инструменту '%s' не хватает аргумента '%s'.", d.Name, key)
		}
	}

	logger.Info().Str("class", d.Class.String()).Msg("executing tool")

	out, err := d.Run(log.WithFields(ctx, map[string]any{"tool": d.Name}), env, args)
	if err != nil {
		te := translate(d.Name, err)
		logger.Warn().Err(te).Str("kind", string(te.Kind)).Msg("tool failed")
		return Result{}, te
	}

	logger.Debug().Str("result", out).Msg("tool finished")
	return Result{Tool: d.Name, Class: d.Class, Output: out}, nil
}

// translate maps handler errors onto reportable tool errors.
func translate(tool string, err error) *core.ToolError {
	if te, ok := core.AsToolError(err); ok {
		return te
	}
	switch {
	case errors.Is(err, core.ErrForbidden):
		return core.WrapToolError(core.KindPermissionDenied, err, "У меня нет прав на это действие.")
	case errors.Is(err, core.ErrNotFound):
		return core.WrapToolError(core.KindEntityNotFound, err, "Не удалось найти нужный объект на сервере.")
	default:
		return core.WrapToolError(core.KindToolExecution, err, "Произошла ошибка при выполнении '%s': %v", tool, err)
	}
}

// platformError classifies a platform failure with tool-specific wording.
func platformError(err error, forbidden, format string, args ...any) error {
	switch {
	case errors.Is(err, core.ErrForbidden):
		return core.WrapToolError(core.KindPermissionDenied, err, "%s", forbidden)
	case errors.Is(err, core.ErrNotFound):
		return core.WrapToolError(core.KindEntityNotFound, err, format, args...)
	default:
		msg := fmt.Sprintf(format, args...)
		return core.WrapToolError(core.KindToolExecution, err, "%s: %v", msg, err)
	}
}
