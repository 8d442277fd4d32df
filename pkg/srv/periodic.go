package srv

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/gemibot/pkg/log"
)

// Periodic runs a job once on start and then on every tick until shutdown.
type Periodic struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPeriodic(name string, interval time.Duration, job func(ctx context.Context)) *Periodic {
	return &Periodic{
		name:     name,
		interval: interval,
		job:      job,
	}
}

func (p *Periodic) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	log.FromCtx(ctx).Info().Str("job", p.name).Dur("interval", p.interval).Msg("periodic job started")

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.job(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.job(ctx)
			}
		}
	}()
	return nil
}

func (p *Periodic) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
