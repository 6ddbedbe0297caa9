package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls Google Gemini with deterministic decoding and JSON output.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a client for modelName.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if IsRateLimited(err) {
			return "", &apperrors.RateLimitError{Provider: "gemini", Err: err}
		}
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Gemini response")
	}
	return sb.String(), nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}
