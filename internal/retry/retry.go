// Package retry wraps a single remote operation with bounded retries
// and exponential backoff with jitter.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
)

// Policy configures the retry behaviour of Do.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so an
	// operation runs at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay seeds the exponential backoff and bounds the jitter.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay between attempts.
	MaxDelay time.Duration

	// ShouldRetry decides whether a failed attempt is worth retrying.
	// When nil, apperror.IsTransient is used: only 429/5xx statuses and
	// transient codes (timeouts, unavailability) retry; malformed
	// responses and domain errors surface immediately.
	ShouldRetry func(error) bool
}

// Backoff returns the delay after the given 0-indexed failed attempt:
// min(BaseDelay * 2^attempt + uniform(0, BaseDelay), MaxDelay). The
// additive jitter spreads concurrent retries so they do not synchronize
// into storms against an already struggling endpoint.
func (p Policy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}

	delay := p.BaseDelay << uint(attempt)
	if delay <= 0 || delay > p.MaxDelay { // shift overflow lands here too
		return p.MaxDelay
	}

	delay += time.Duration(rand.Int63n(int64(p.BaseDelay)))
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p Policy) shouldRetry(err error) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	return apperror.IsTransient(err)
}

// Do executes op until it succeeds, the policy declines a retry, or the
// attempt budget is exhausted. The final attempt's error propagates
// unchanged. Between attempts Do sleeps for Backoff(n), honouring ctx
// cancellation.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxRetries || !p.shouldRetry(err) {
			break
		}

		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
