// Package ratelimit provides admission control for outbound calls to a
// rate-limited remote endpoint, built on golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every search that draws on one
// endpoint's rate budget. Capacity accrues continuously (fractional
// tokens included) up to the bucket maximum, so short bursts up to
// capacity pass untouched after idle periods while the long-run rate
// stays at or below the configured ceiling.
//
// Acquire is safe for concurrent use; waiting callers are served by the
// underlying limiter's reservation queue.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained throughput.
// The bucket maximum equals the per-second ceiling (minimum 1), so an
// idle bucket admits up to one second's budget at once.
func New(requestsPerSecond float64) *Limiter {
	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return NewWithBurst(requestsPerSecond, burst)
}

// NewWithBurst creates a limiter with an explicit bucket maximum.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Acquire blocks until one unit of capacity is available, then consumes
// it. It fails only when ctx is cancelled before capacity frees up.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now, consuming a token
// if so. Used by health checks to observe saturation without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// SetLimit updates the sustained rate ceiling.
func (l *Limiter) SetLimit(requestsPerSecond float64) {
	l.limiter.SetLimit(rate.Limit(requestsPerSecond))
}
