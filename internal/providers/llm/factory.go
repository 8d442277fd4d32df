package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/pkg/log"
	"github.com/sandevgo/gemibot/pkg/retry"
)

// Generators are the two models the bot talks to. Main handles
// conversations, tools and news; Flash rates messages for reactions.
type Generators struct {
	Main  *Gemini
	Flash *Gemini
}

func NewGenerators(ctx context.Context, cfg *config.GoogleConfig) (*Generators, error) {
	log.FromCtx(ctx).Info().
		Str("main", cfg.MainModel).
		Str("flash", cfg.FlashModel).
		Msg("starting gemini client")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Generators{
		Main:  newGemini(client.Models, cfg.MainModel, newRetrier(ctx, cfg.MainModel)),
		Flash: newGemini(client.Models, cfg.FlashModel, newRetrier(ctx, cfg.FlashModel)),
	}, nil
}

func newRetrier(ctx context.Context, model string) *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    3,
		BackoffFactor: 2,
		InitialDelay:  time.Second,
		MaxDelay:      15 * time.Second,
		Jitter:        250 * time.Millisecond,
	}, retry.WithNotify(notifyRetry(ctx, model)))
}
