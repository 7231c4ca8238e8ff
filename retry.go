package medglot

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // maximum number of retry attempts
	BaseDelay  time.Duration // initial delay between retries
	MaxDelay   time.Duration // maximum delay between retries
}

// DefaultRetryConfig returns the defaults used when retries are enabled.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with exponential backoff, retrying only errors that
// IsRetryable accepts.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableClient wraps a Client with retry logic. The pipeline leaves
// retries off by default; wire this in explicitly when transient service
// failures should be absorbed.
type RetryableClient struct {
	client Client
	config RetryConfig
}

// NewRetryableClient creates a Client that retries retryable failures.
func NewRetryableClient(client Client, cfg RetryConfig) *RetryableClient {
	return &RetryableClient{client: client, config: cfg}
}

// Generate implements Client with retry logic.
func (c *RetryableClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	return WithRetry(ctx, c.config, func() (*GenerateResult, error) {
		return c.client.Generate(ctx, req)
	})
}

var _ Client = (*RetryableClient)(nil)
