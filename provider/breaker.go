package provider

import (
	"context"
	"time"

	"github.com/dawalabs/medglot"
	"github.com/sony/gobreaker"
)

// BreakerClient wraps a Client with a circuit breaker so a misbehaving
// service stops the run from burning tokens on calls that will fail anyway.
type BreakerClient struct {
	client  Client
	breaker *gobreaker.CircuitBreaker
}

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker (default: 5).
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open (default: 60s).
	OpenTimeout time.Duration
}

// NewBreakerClient wraps client with a circuit breaker.
func NewBreakerClient(client Client, cfg BreakerConfig) *BreakerClient {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &BreakerClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "generation-service",
			Timeout: timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
	}
}

// Generate implements Client through the breaker. An open breaker surfaces
// as a non-retryable provider error.
func (c *BreakerClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Generate(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &medglot.ProviderError{
				Message: "circuit breaker open",
				Cause:   err,
			}
		}
		return nil, err
	}
	return res.(*GenerateResult), nil
}

// Verify BreakerClient implements Client
var _ Client = (*BreakerClient)(nil)
