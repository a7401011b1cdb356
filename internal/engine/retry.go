package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy defines retry behavior for LLM calls. The orchestrator itself
// never retries; retrying lives in this decorator so it can be swapped or
// removed without touching session logic.
type RetryPolicy struct {
	MaxRetries   int           // Maximum number of retry attempts (0 = no retries)
	InitialDelay time.Duration // Initial delay before first retry
	MaxDelay     time.Duration // Maximum delay cap
	Multiplier   float64       // Exponential backoff multiplier (e.g., 2.0)
	Jitter       bool          // Whether to add random jitter to delays
}

// DefaultRetryPolicy returns a conservative backoff policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// RetryingClient decorates an LLMClient with classified retry + backoff.
type RetryingClient struct {
	inner   LLMClient
	policy  RetryPolicy
	onRetry func(attempt int, delay time.Duration, err error)
}

// NewRetryingClient wraps inner with the given policy. onRetry may be nil.
func NewRetryingClient(inner LLMClient, policy RetryPolicy, onRetry func(int, time.Duration, error)) *RetryingClient {
	return &RetryingClient{inner: inner, policy: policy, onRetry: onRetry}
}

// Chat implements LLMClient.
func (c *RetryingClient) Chat(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (LLMResponse, error) {
	attempt := 0

	for {
		resp, err := c.inner.Chat(ctx, model, messages, opts)
		if err == nil {
			return resp, nil
		}

		class := ClassifyLLMError(err)
		if class == RetryClassNonRetryable {
			return LLMResponse{}, err
		}

		if attempt >= c.policy.MaxRetries {
			return LLMResponse{}, &RetryExhaustedError{Err: err, Attempts: attempt}
		}
		// "maybe" class errors get at most two attempts regardless of policy.
		if class == RetryClassMaybe && attempt >= 2 {
			return LLMResponse{}, &RetryExhaustedError{Err: err, Attempts: attempt}
		}

		delay := calculateDelay(c.policy, attempt, err)
		if c.onRetry != nil {
			c.onRetry(attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return LLMResponse{}, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}

		attempt++
	}
}

// calculateDelay computes the delay for a retry attempt.
func calculateDelay(policy RetryPolicy, attempt int, err error) time.Duration {
	// Respect Retry-After if the provider sent one, capped at MaxDelay.
	retryAfter := ExtractRetryAfter(err)
	if retryAfter > 0 {
		if retryAfter > policy.MaxDelay {
			return policy.MaxDelay
		}
		return retryAfter
	}

	delay := float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	if policy.Jitter {
		delay += rand.Float64() * 0.2 * delay
	}

	return time.Duration(delay)
}
