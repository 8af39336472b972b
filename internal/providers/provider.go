// Package providers implements model-completion clients for the agent
// pipeline. Each provider satisfies agent.CompletionClient: it takes a
// rendered prompt and returns the primary completion choice as text. The
// providers handle retries for transient failures; everything else about the
// model call is opaque to the core.
package providers

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion indicates the provider returned no usable completion
// choice.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// retryConfig bounds the retry loop shared by the providers.
type retryConfig struct {
	maxAttempts int
	backoff     time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{maxAttempts: 3, backoff: time.Second}
}

// withRetries runs call up to cfg.maxAttempts times with linear backoff,
// stopping early on success, context cancellation, or a non-retryable error.
func withRetries(ctx context.Context, cfg retryConfig, retryable func(error) bool, call func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) || attempt == cfg.maxAttempts {
			break
		}
		select {
		case <-time.After(cfg.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
