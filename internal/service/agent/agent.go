// Package agent runs the bounded tool-calling loop that turns one request
// into a final answer or a sequence of platform actions.
package agent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/internal/service/history"
	"github.com/sandevgo/gemibot/internal/service/tools"
	"github.com/sandevgo/gemibot/pkg/log"
)

// MaxRounds bounds model calls per request.
const MaxRounds = 5

type Executor interface {
	Execute(ctx context.Context, env *tools.Env, inv core.ToolInvocation) (tools.Result, error)
}

type Conversations interface {
	GetOrCreate(ctx context.Context, scope history.Scope) []core.Turn
	Append(scope history.Scope, turns ...core.Turn)
}

type Status int

const (
	// Answered: the model replied with plain text.
	Answered Status = iota
	// Acted: only action tools ran in the last round.
	Acted
	// Failed: a tool or directive error aborted the loop.
	Failed
	// Stuck: the round budget ran out.
	Stuck
)

func (s Status) String() string {
	switch s {
	case Answered:
		return "answered"
	case Acted:
		return "acted"
	case Failed:
		return "failed"
	default:
		return "stuck"
	}
}

// Outcome is how a request ended. Reply holds the final answer, the error
// explanation or the stuck notice, and is empty for Acted.
type Outcome struct {
	Status   Status
	Reply    string
	Rounds   int
	Executed []tools.Result
	// Cause is the *core.ToolError for Failed and ErrLoopBudgetExceeded for Stuck.
	Cause error
}

type Agent struct {
	gen       core.Generator
	exec      Executor
	conv      Conversations
	maxRounds int
}

func NewAgent(gen core.Generator, exec Executor, conv Conversations) *Agent {
	return &Agent{
		gen:       gen,
		exec:      exec,
		conv:      conv,
		maxRounds: MaxRounds,
	}
}

// Run drives one request through at most MaxRounds model calls. Reportable
// failures end up in the Outcome; the returned error is reserved for
// unexpected ones such as a failed generation.
func (a *Agent) Run(ctx context.Context, scope history.Scope, env *tools.Env, parts []core.Part) (Outcome, error) {
	logger := log.FromCtx(ctx).With().Str("scope", scope.Key()).Logger()

	turns := a.conv.GetOrCreate(ctx, scope)
	input := core.UserTurn(parts...)
	var executed []tools.Result

	for round := 1; round <= a.maxRounds; round++ {
		reply, err := a.gen.Generate(ctx, append(slices.Clone(turns), input))
		if err != nil {
			return Outcome{Rounds: round, Executed: executed}, fmt.Errorf("round %d: generate: %w", round, err)
		}
		logger.Debug().Int("round", round).Str("reply", reply).Msg("model reply")

		model := core.ModelTurn(reply)
		a.conv.Append(scope, input, model)
		turns = append(turns, input, model)

		invs, err := ParseDirective(reply)
		if err != nil {
			return a.explain(ctx, turns, err, round, executed)
		}
		if len(invs) == 0 {
			return Outcome{Status: Answered, Reply: reply, Rounds: round, Executed: executed}, nil
		}

		results, err := a.execute(ctx, env, invs)
		executed = append(executed, results...)
		if err != nil {
			if _, ok := core.AsToolError(err); ok {
				return a.explain(ctx, turns, err, round, executed)
			}
			return Outcome{Rounds: round, Executed: executed}, err
		}

		if !informational(results) {
			logger.Info().Int("round", round).Int("tools", len(results)).Msg("actions completed")
			return Outcome{Status: Acted, Rounds: round, Executed: executed}, nil
		}

		logger.Info().Int("round", round).Msg("informational tool ran, continuing")
		input = core.UserTurn(core.TextPart(toolResultsPrefix + joinOutputs(results)))
	}

	logger.Warn().Int("rounds", a.maxRounds).Msg("round budget exhausted")
	return Outcome{
		Status:   Stuck,
		Reply:    StuckNotice,
		Rounds:   a.maxRounds,
		Executed: executed,
		Cause:    core.ErrLoopBudgetExceeded,
	}, nil
}

// execute runs invocations in order and stops at the first failure.
func (a *Agent) execute(ctx context.Context, env *tools.Env, invs []core.ToolInvocation) ([]tools.Result, error) {
	results := make([]tools.Result, 0, len(invs))
	for _, inv := range invs {
		res, err := a.exec.Execute(ctx, env, inv)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// explain asks the model to tell the user what went wrong. The prompt is
// not added to the conversation.
func (a *Agent) explain(ctx context.Context, turns []core.Turn, cause error, round int, executed []tools.Result) (Outcome, error) {
	te, _ := core.AsToolError(cause)
	log.FromCtx(ctx).Warn().Err(cause).Int("round", round).Msg("request failed, explaining to user")

	out := Outcome{Status: Failed, Rounds: round, Executed: executed, Cause: te}

	prompt := core.UserTurn(core.TextPart(fmt.Sprintf(explainPrompt, te.Message)))
	reply, err := a.gen.Generate(ctx, append(slices.Clone(turns), prompt))
	if err != nil || strings.TrimSpace(reply) == "" {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to generate error explanation")
		out.Reply = te.Message
		return out, nil
	}
	out.Reply = reply
	return out, nil
}

// Discuss answers in a bot-owned thread: one model call, no tools.
func (a *Agent) Discuss(ctx context.Context, scope history.Scope, prompt string) (string, error) {
	turns := a.conv.GetOrCreate(ctx, scope)
	input := core.UserTurn(core.TextPart(prompt))

	reply, err := a.gen.Generate(ctx, append(slices.Clone(turns), input))
	if err != nil {
		return "", fmt.Errorf("discuss: generate: %w", err)
	}
	a.conv.Append(scope, input, core.ModelTurn(reply))
	return reply, nil
}

func informational(results []tools.Result) bool {
	for _, r := range results {
		if r.Class == tools.Informational {
			return true
		}
	}
	return false
}

func joinOutputs(results []tools.Result) string {
	outs := make([]string, 0, len(results))
	for _, r := range results {
		if r.Output != "" {
			outs = append(outs, r.Output)
		}
	}
	return strings.Join(outs, "; ")
}
