package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gemibot/internal/core"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []core.ToolInvocation
	}{
		{
			name:  "plain text",
			reply: "Просто отвечаю текстом.",
		},
		{
			name:  "fenced array",
			reply: "```json\n[{\"tool\": \"create_channel\", \"channel_name\": \"тест1\"}, {\"tool\": \"leave_voice\"}]\n```",
			want: []core.ToolInvocation{
				{Name: "create_channel", Args: map[string]any{"channel_name": "тест1"}},
				{Name: "leave_voice", Args: map[string]any{}},
			},
		},
		{
			name:  "bare object",
			reply: `Сейчас: {"tool": "summarize_chat", "count": 10}`,
			want:  []core.ToolInvocation{{Name: "summarize_chat", Args: map[string]any{"count": 10.0}}},
		},
		{
			name:  "elements without tool are skipped",
			reply: `[{"text": "x"}, {"tool": 5}, "str", {"tool": "pin_message"}]`,
			want:  []core.ToolInvocation{{Name: "pin_message", Args: map[string]any{}}},
		},
		{
			name:  "json without tools is an answer",
			reply: `Вот пример: {"a": 1}`,
		},
		{
			name:  "list arguments survive",
			reply: `[{"tool": "delete_channels", "channel_type": "all", "exclude": ["general", "rules"]}]`,
			want: []core.ToolInvocation{{Name: "delete_channels", Args: map[string]any{
				"channel_type": "all",
				"exclude":      []any{"general", "rules"},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDirective(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirective_Malformed(t *testing.T) {
	_, err := ParseDirective("```json\n{\"tool\": \"create_role\",}\n```")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindGenerationParse))
}
