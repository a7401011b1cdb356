package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyLLM fails n times before succeeding.
type flakyLLM struct {
	failures int
	err      error
	calls    int
}

func (f *flakyLLM) Chat(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (LLMResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return LLMResponse{}, f.err
	}
	return LLMResponse{Assistant: ChatMessage{Role: RoleAssistant, Content: "ok"}}, nil
}

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryingClientRecovers(t *testing.T) {
	inner := &flakyLLM{failures: 2, err: errors.New("429 too many requests")}
	client := NewRetryingClient(inner, fastPolicy(3), nil)

	resp, err := client.Chat(context.Background(), "m", nil, ChatOptions{})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if resp.Assistant.Content != "ok" {
		t.Errorf("unexpected content: %q", resp.Assistant.Content)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryingClientGivesUp(t *testing.T) {
	inner := &flakyLLM{failures: 10, err: errors.New("503 service unavailable")}
	client := NewRetryingClient(inner, fastPolicy(2), nil)

	_, err := client.Chat(context.Background(), "m", nil, ChatOptions{})
	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected RetryExhaustedError, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls (initial + 2 retries), got %d", inner.calls)
	}
}

func TestRetryingClientSkipsNonRetryable(t *testing.T) {
	inner := &flakyLLM{failures: 10, err: errors.New("401 unauthorized")}
	client := NewRetryingClient(inner, fastPolicy(5), nil)

	_, err := client.Chat(context.Background(), "m", nil, ChatOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("auth errors must not be retried, got %d calls", inner.calls)
	}
}

func TestClassifyLLMError(t *testing.T) {
	cases := []struct {
		msg  string
		want RetryClass
	}{
		{"429 rate limit hit", RetryClassRetryable},
		{"502 bad gateway", RetryClassRetryable},
		{"context deadline exceeded", RetryClassMaybe},
		{"invalid api key", RetryClassNonRetryable},
		{"something novel", RetryClassNonRetryable},
	}
	for _, tc := range cases {
		if got := ClassifyLLMError(errors.New(tc.msg)); got != tc.want {
			t.Errorf("ClassifyLLMError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}
