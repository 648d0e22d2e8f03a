package crawler

import (
	"context"
	"time"
)

// Limiter enforces a minimum delay between consecutive fetch starts.
// One Limiter is shared across all hosts: politeness is approximated
// crawl-wide rather than per-origin, which is sufficient because the crawl
// loop issues at most one request at a time.
//
// Design decision: We measure from when the previous fetch was initiated,
// not when it completed, matching the contract that at least the configured
// delay elapses between request starts. Elapsed time is computed with
// time.Since on a stored time.Time, which uses the monotonic clock reading,
// so wall-clock adjustments never shorten or lengthen the wait.
type Limiter struct {
	// delay is the minimum time between fetch starts.
	delay time.Duration

	// last is when the previous fetch was initiated.
	last time.Time

	// started reports whether any fetch has been initiated yet.
	started bool
}

// NewLimiter creates a Limiter with the given minimum delay.
// A zero or negative delay disables waiting entirely.
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

// Wait blocks until the configured delay has elapsed since the previous
// call, then marks the next fetch as initiated. It returns early with the
// context error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFor(ctx, l.delay)
}

// WaitFor behaves like Wait but with an explicit delay, which allows
// per-site overrides without constructing a new Limiter. The first call
// never waits.
func (l *Limiter) WaitFor(ctx context.Context, delay time.Duration) error {
	if l.started && delay > 0 {
		if remaining := delay - time.Since(l.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	l.last = time.Now()
	l.started = true
	return nil
}
