package utils

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff is the retry policy shared by every strategy that retries:
// how many attempts to make and how long to wait between them.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction (0..1) by which each delay is randomly
	// stretched or shrunk so parallel runs do not retry in lockstep.
	Jitter float64
}

// NoRetry is a policy with a single attempt.
func NoRetry() Backoff {
	return Backoff{MaxAttempts: 1}
}

// Attempts returns the number of attempts allowed, at least one.
func (b Backoff) Attempts() int {
	if b.MaxAttempts < 1 {
		return 1
	}
	return b.MaxAttempts
}

// Delay returns the wait before the given 1-based attempt. The first
// attempt never waits; later ones double from BaseDelay up to MaxDelay.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 1 || b.BaseDelay <= 0 {
		return 0
	}

	d := b.BaseDelay
	for i := 2; i < attempt; i++ {
		d *= 2
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			d = b.MaxDelay
			break
		}
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}

	jitter := b.Jitter
	if jitter <= 0 {
		return d
	}
	if jitter > 1 {
		jitter = 1
	}
	factor := 1 + (rand.Float64()*2-1)*jitter
	return time.Duration(float64(d) * factor)
}

// Wait blocks for Delay(attempt) or until ctx is done.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	d := b.Delay(attempt)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
