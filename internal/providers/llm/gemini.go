package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
	"github.com/sandevgo/gemibot/pkg/retry"
)

// ErrEmptyResponse is returned when the model produced no text, usually
// because the answer was blocked.
var ErrEmptyResponse = errors.New("empty model response")

// contentModels is the part of genai.Models the generator calls.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates text with one Gemini or Gemma model.
type Gemini struct {
	models  contentModels
	model   string
	retrier *retry.Retrier
}

func newGemini(models contentModels, model string, retrier *retry.Retrier) *Gemini {
	return &Gemini{
		models:  models,
		model:   model,
		retrier: retrier,
	}
}

func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	contents, system := toContents(turns)
	if len(contents) == 0 {
		return "", fmt.Errorf("nothing to send to %s", g.model)
	}

	var config *genai.GenerateContentConfig
	if system != nil {
		config = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	var text string
	err := g.retrier.Do(ctx, func() error {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			if retryable(err) {
				return err
			}
			return retry.Permanent(err)
		}
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			return retry.Permanent(ErrEmptyResponse)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", g.model, err)
	}
	return text, nil
}

// toContents maps turns to genai contents. System turns are merged into a
// single system instruction; turns without parts are dropped.
func toContents(turns []core.Turn) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(turns))
	var systemParts []*genai.Part

	for _, t := range turns {
		parts := toParts(t.Parts)
		if len(parts) == 0 {
			continue
		}
		switch t.Role {
		case core.RoleSystem:
			systemParts = append(systemParts, parts...)
		case core.RoleModel:
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = genai.NewContentFromParts(systemParts, genai.RoleUser)
	}
	return contents, system
}

func toParts(parts []core.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case core.PartText:
			if p.Text == "" {
				continue
			}
			out = append(out, genai.NewPartFromText(p.Text))
		case core.PartImage, core.PartVideo:
			if len(p.Data) == 0 {
				continue
			}
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
		}
	}
	return out
}

// retryable reports whether a generation error is worth another attempt:
// rate limits and server-side failures.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		// Transport errors carry no status.
		return true
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func notifyRetry(ctx context.Context, model string) func(attempt int, err error) {
	return func(attempt int, err error) {
		log.FromCtx(ctx).Warn().Err(err).Str("model", model).Int("attempt", attempt).Msg("generation failed, retrying")
	}
}
