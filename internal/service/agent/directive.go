package agent

import (
	"encoding/json"
	"errors"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/extract"
)

// ParseDirective extracts the tool invocations embedded in a model reply.
// It returns nil when the reply carries no directive and is a final answer.
// A JSON array or a bare object is accepted; elements without a string
// "tool" field are skipped.
func ParseDirective(reply string) ([]core.ToolInvocation, error) {
	raw, err := extract.Value(reply)
	if errors.Is(err, extract.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, core.WrapToolError(core.KindGenerationParse, err, "Не удалось разобрать команду в ответе модели.")
	}

	var elems []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, core.WrapToolError(core.KindGenerationParse, err, "Не удалось разобрать команду в ответе модели.")
		}
	} else {
		elems = []json.RawMessage{raw}
	}

	var out []core.ToolInvocation
	for _, e := range elems {
		var args map[string]any
		if err := json.Unmarshal(e, &args); err != nil {
			continue
		}
		name, ok := args["tool"].(string)
		if !ok || name == "" {
			continue
		}
		delete(args, "tool")
		out = append(out, core.ToolInvocation{Name: name, Args: args})
	}
	return out, nil
}
