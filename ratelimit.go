package medglot

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between generation-service calls.
// The pipeline is strictly sequential, so a simple pacing limiter is enough;
// there is no burst allowance.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter allowing at most rpm requests per minute.
// rpm <= 0 disables pacing.
func NewRateLimiter(rpm int) *RateLimiter {
	var interval time.Duration
	if rpm > 0 {
		interval = time.Minute / time.Duration(rpm)
	}
	return &RateLimiter{interval: interval}
}

// Wait blocks until the next call is allowed or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.interval <= 0 {
		return nil
	}

	r.mu.Lock()
	now := time.Now()
	next := r.last.Add(r.interval)
	if next.Before(now) {
		next = now
	}
	r.last = next
	wait := next.Sub(now)
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// LimitedClient paces calls to an underlying Client.
type LimitedClient struct {
	client  Client
	limiter *RateLimiter
}

// NewLimitedClient wraps client with the given limiter.
func NewLimitedClient(client Client, limiter *RateLimiter) *LimitedClient {
	return &LimitedClient{client: client, limiter: limiter}
}

// Generate implements Client, waiting for the limiter first.
func (c *LimitedClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.client.Generate(ctx, req)
}

var _ Client = (*LimitedClient)(nil)
