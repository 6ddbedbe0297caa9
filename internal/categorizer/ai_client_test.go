package categorizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"fjacquet/statement-ledger/internal/apperrors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit error", &apperrors.RateLimitError{Provider: "x"}, true},
		{"wrapped rate limit error", fmt.Errorf("call: %w", &apperrors.RateLimitError{}), true},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi 500", &googleapi.Error{Code: http.StatusInternalServerError, Message: "boom"}, false},
		{"anthropic 429", &anthropic.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"text signal", errors.New("status 429 Too Many Requests"), true},
		{"other", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}

func TestRateLimitedClient(t *testing.T) {
	mock := NewMockAIClient(MockReply{Text: "ok"})
	client := NewRateLimitedClient(mock, 0)

	for i := 0; i < 5; i++ {
		reply, err := client.Complete(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
	}
	assert.Equal(t, 5, mock.Calls())
}

func TestRateLimitedClient_HonoursContext(t *testing.T) {
	mock := NewMockAIClient(MockReply{Text: "ok"})
	client := NewRateLimitedClient(mock, 1)

	_, err := client.Complete(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, "second")

	assert.Error(t, err)
	assert.Equal(t, 1, mock.Calls())
}

func TestNewClients_RequireAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)

	_, err = NewAnthropicClient("", "claude-3-5-haiku-latest")
	assert.Error(t, err)
}

func TestNewAnthropicClient(t *testing.T) {
	client, err := NewAnthropicClient("test-key", "claude-3-5-haiku-latest")
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-haiku-latest", client.model)
}
