package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy describes how Do repeats a failing call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay randomised in either direction.
	Jitter float64
	// Retryable decides whether err is worth another attempt. Nil retries everything.
	Retryable func(err error) bool
	// FixedDelay overrides backoff for specific errors, e.g. a rate-limit cooldown.
	FixedDelay func(err error) (time.Duration, bool)
	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
// Exhaustion wraps both ErrRetriesExhausted and the last error.
func Do[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := fn(ctx, attempt)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}
		if err := policy.sleep(ctx, policy.delay(attempt, err)); err != nil {
			return zero, fmt.Errorf("retry wait: %w", err)
		}
	}

	return zero, fmt.Errorf("%w after %d attempt(s): %w", ErrRetriesExhausted, attempts, lastErr)
}

func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if p.FixedDelay != nil {
		if d, ok := p.FixedDelay(err); ok {
			return d
		}
	}
	if p.BaseDelay <= 0 {
		return 0
	}

	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		spread := float64(d) * p.Jitter
		d += time.Duration((rand.Float64()*2 - 1) * spread)
	}
	if d < 0 {
		return 0
	}
	return d
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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
