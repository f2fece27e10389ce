package poller

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
)

// Poller periodically invokes a refresh function until the context is done.
// Errors from the function are logged and the loop keeps running; the
// previously refreshed state stays served.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context) error
}

// New creates a Poller with the given interval
func New(interval time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
	}
}

// Run blocks, invoking the function immediately and then on every tick,
// until the context is cancelled
func (p *Poller) Run(ctx context.Context) {
	logger := ctxlog.From(ctx)

	if err := p.fn(ctx); err != nil {
		logger.Warn("Poll failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Poller stopped")
			return
		case <-ticker.C:
			if err := p.fn(ctx); err != nil {
				logger.Warn("Poll failed", "error", err)
			}
		}
	}
}
