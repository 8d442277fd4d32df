package core

import "context"

// Generator is the language model: ordered turns in, completion text out.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}
