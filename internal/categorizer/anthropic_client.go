package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 64

// AnthropicClient calls the Anthropic Messages API. SDK level retries are
// disabled; AIStrategy owns the retry policy.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates a client for model.
func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: API key not set")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if IsRateLimited(err) {
			return "", &apperrors.RateLimitError{Provider: "anthropic", Err: err}
		}
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Anthropic response")
	}
	return sb.String(), nil
}
