// Package ratelimit paces outgoing chat messages.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Pacer enforces a fixed minimum interval between consecutive sends
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
	logger   zerolog.Logger
}

// NewPacer creates a pacer allowing one send per interval; a zero interval disables pacing
func NewPacer(interval time.Duration, logger zerolog.Logger) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
		logger:   logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Wait blocks until the next send is allowed or ctx is done
func (p *Pacer) Wait(ctx context.Context) error {
	reservation := p.limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	p.logger.Debug().Dur("delay", delay).Msg("Pacing next message")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		reservation.Cancel()
		return fmt.Errorf("pacing interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Interval returns the configured spacing
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
