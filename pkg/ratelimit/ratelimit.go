package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter caps how often an operation may run. A nil or zero-rate Limiter never blocks.
// It is safe for concurrent use.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter returns a limiter allowing rps operations per second with a burst of one.
// If rps <= 0 the limiter does not block.
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next operation is permitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.rl == nil {
		return ctx.Err()
	}
	return l.rl.Wait(ctx)
}

// Sleep pauses for d, returning early with ctx.Err() if ctx is cancelled.
// A non-positive d returns immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
