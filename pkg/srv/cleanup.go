package srv

import (
	"context"
	"fmt"

	"github.com/sandevgo/gemibot/pkg/log"
)

type cleanupService struct {
	name    string
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	log.FromCtx(ctx).Debug().Str("resource", c.name).Msg("closing")
	if err := c.cleanup(); err != nil {
		return fmt.Errorf("failed to close %s: %w", c.name, err)
	}
	return nil
}

// NewCleanup wraps a close function (database, client) as a Service that
// only acts on shutdown.
func NewCleanup(name string, fn func() error) Service {
	return &cleanupService{name: name, cleanup: fn}
}
