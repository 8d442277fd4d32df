package core

import "strings"

const (
	BotName       = "Gemini"
	AppName       = "gemibot"
	AppVersion    = "0.3.0"
	RepositoryURL = "https://github.com/sandevgo/gemibot"

	// BrowserUserAgent is sent on article and feed fetches; several news
	// hosts and CORS proxies reject unknown agents.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// TurnRole tags who produced a turn.
type TurnRole string

const (
	RoleUser   TurnRole = "user"
	RoleModel  TurnRole = "model"
	RoleSystem TurnRole = "system"
)

type PartKind int

const (
	PartText PartKind = iota
	PartImage
	PartVideo
)

// Part is one piece of turn content: text or a media blob.
type Part struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

func BlobPart(kind PartKind, mimeType string, data []byte) Part {
	return Part{Kind: kind, MIMEType: mimeType, Data: data}
}

type Turn struct {
	Role  TurnRole
	Parts []Part
}

func UserTurn(parts ...Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{TextPart(text)}}
}

// HasText reports whether any part carries non-blank text.
func (t Turn) HasText() bool {
	for _, p := range t.Parts {
		if p.Kind == PartText && strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// ToolInvocation is one tool directive parsed out of model output.
type ToolInvocation struct {
	Name string
	Args map[string]any
}
