// Package ratelimit provides the optional client-side request limiter.
// The client only constructs one when rate limiting is explicitly configured.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket allowing a number of requests per period,
// with a burst equal to that number.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing requests per period.
func New(requests int, period time.Duration) *RateLimiter {
	rps := float64(requests) / period.Seconds()
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), requests),
	}
}

// Wait blocks until a request is allowed or ctx is done. It fails immediately
// when ctx would expire before a token becomes available.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
