package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultRetryCount is the default number of retry attempts.
const DefaultRetryCount = 3

// DefaultBaseDelay is the initial delay for exponential backoff.
const DefaultBaseDelay = 1 * time.Second

// RetryTranscriber wraps a Transcriber with retry logic and exponential
// backoff on retryable failures.
type RetryTranscriber struct {
	inner     Transcriber
	maxRetry  int
	baseDelay time.Duration
}

// RetryOption configures the RetryTranscriber.
type RetryOption func(*RetryTranscriber)

// WithRetryCount sets the maximum number of retry attempts.
func WithRetryCount(n int) RetryOption {
	return func(t *RetryTranscriber) {
		if n > 0 {
			t.maxRetry = n
		}
	}
}

// WithBaseDelay sets the initial delay for exponential backoff.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(t *RetryTranscriber) {
		t.baseDelay = d
	}
}

// NewRetryTranscriber creates a RetryTranscriber wrapping inner.
func NewRetryTranscriber(inner Transcriber, opts ...RetryOption) *RetryTranscriber {
	t := &RetryTranscriber{
		inner:     inner,
		maxRetry:  DefaultRetryCount,
		baseDelay: DefaultBaseDelay,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Transcribe calls the wrapped transcriber, retrying on connection errors
// and 5xx responses but not on client errors or context cancellation.
func (t *RetryTranscriber) Transcribe(ctx context.Context, path string, opts Options) (*Result, error) {
	var lastErr error

	for attempt := 0; attempt <= t.maxRetry; attempt++ {
		if attempt > 0 {
			delay := t.baseDelay * (1 << (attempt - 1)) // Exponential: 1s, 2s, 4s, 8s...

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := t.inner.Transcribe(ctx, path, opts)
		if err == nil {
			return result, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("transcription failed after %d retries: %w", t.maxRetry, lastErr)
}

// isRetryable determines if an error should trigger a retry.
// Returns true for connection errors and 5xx server errors.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errStr := err.Error()
	if strings.Contains(errStr, "API error: status ") {
		var status int
		if _, scanErr := fmt.Sscanf(errStr[strings.Index(errStr, "API error: status "):], "API error: status %d", &status); scanErr == nil {
			// 4xx client errors are not retryable, 5xx are.
			if status >= 400 && status < 500 {
				return false
			}
			if status >= 500 && status < 600 {
				return true
			}
		}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "send request:") {
		return true
	}

	// Default: don't retry unknown errors
	return false
}
