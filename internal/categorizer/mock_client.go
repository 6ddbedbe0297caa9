package categorizer

import (
	"context"
	"sync"
)

// MockReply is one scripted answer of MockAIClient.
type MockReply struct {
	Text string
	Err  error
}

// MockAIClient replays scripted replies in order and records prompts. Once
// the script is exhausted the last reply repeats.
type MockAIClient struct {
	mu      sync.Mutex
	Replies []MockReply
	Prompts []string
}

// NewMockAIClient creates a MockAIClient with the given script.
func NewMockAIClient(replies ...MockReply) *MockAIClient {
	return &MockAIClient{Replies: replies}
}

func (m *MockAIClient) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)
	if len(m.Replies) == 0 {
		return `{"category": "Other"}`, nil
	}
	if i >= len(m.Replies) {
		i = len(m.Replies) - 1
	}
	return m.Replies[i].Text, m.Replies[i].Err
}

// Calls returns how many prompts were sent.
func (m *MockAIClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
