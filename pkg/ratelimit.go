package pkg

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttle caps the outbound request rate to the scoring service.
type Throttle struct {
	limiter *rate.Limiter
	maxWait time.Duration // fail fast when a token is further away than this
	logger  *zap.Logger
}

// NewThrottle creates a throttle; if perSec=0, it's unlimited.
func NewThrottle(perSec, burst int, maxWait time.Duration, logger *zap.Logger) *Throttle {
	var limiter *rate.Limiter
	if perSec > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
	return &Throttle{limiter: limiter, maxWait: maxWait, logger: logger}
}

// Wait blocks until a token is available. It returns ErrRateLimitExceeded without waiting
// when the reservation delay exceeds maxWait.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil // Unlimited
	}

	r := t.limiter.Reserve()
	if !r.OK() {
		return ErrRateLimitExceeded
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if t.maxWait > 0 && delay > t.maxWait {
		r.Cancel()
		t.logger.Warn("throttle wait exceeds guard", zap.Duration("delay", delay), zap.Duration("max_wait", t.maxWait))
		return ErrRateLimitExceeded
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
