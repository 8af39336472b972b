package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-20250514"
	defaultAnthropicMaxTokens = 4096
)

// AnthropicProvider satisfies agent.CompletionClient using the Anthropic
// Messages API. It is safe for concurrent use.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     retryConfig
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key (sk-ant-...).
	APIKey string

	// Model overrides the default completion model.
	Model string

	// MaxTokens bounds the completion length. Zero applies the default.
	MaxTokens int64

	// BaseURL overrides the API endpoint, for proxies and tests.
	BaseURL string
}

// NewAnthropicProvider creates an Anthropic completion provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	// The SDK retries internally by default; retries are handled here so
	// both providers share one policy.
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(options...),
		model:     model,
		maxTokens: maxTokens,
		retry:     defaultRetryConfig(),
	}, nil
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate returns the concatenated text blocks of the primary completion,
// retrying rate-limit and server errors with linear backoff.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return withRetries(ctx, p.retry, isRetryableAnthropicError, func() (string, error) {
		msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: p.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("anthropic completion: %w", err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			return "", ErrEmptyCompletion
		}
		return text, nil
	})
}

func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
