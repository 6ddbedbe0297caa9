package categorizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRuleLister struct {
	mock.Mock
}

func (m *mockRuleLister) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).([]models.CategoryRule)
	return rules, args.Error(1)
}

func rulesOf(rules ...models.CategoryRule) *mockRuleLister {
	m := &mockRuleLister{}
	m.On("ListRules", mock.Anything).Return(rules, nil)
	return m
}

// noSleep records requested delays without waiting.
type noSleep struct {
	delays []time.Duration
}

func (n *noSleep) sleep(_ context.Context, d time.Duration) error {
	n.delays = append(n.delays, d)
	return nil
}

func testPolicy(s *noSleep) RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: s.sleep}
}

func newTestCategorizer(rules RuleLister, client AIClient, s *noSleep) *Categorizer {
	return NewCategorizer(rules, client, Options{Retry: testPolicy(s), FallbackCategory: models.CategoryOther}, logging.NewMockLogger())
}

func TestPredictCategory_RuleTakesPrecedence(t *testing.T) {
	rules := rulesOf(models.CategoryRule{ID: 1, Keyword: "NETFLIX", Category: models.CategoryEntertainment})
	client := NewMockAIClient(MockReply{Text: `{"category": "Shopping"}`})

	got := newTestCategorizer(rules, client, &noSleep{}).PredictCategory(context.Background(), "NETFLIX.COM MONTREAL")

	assert.Equal(t, models.CategoryEntertainment, got)
	assert.Zero(t, client.Calls())
	rules.AssertExpectations(t)
}

func TestPredictCategory_FirstRuleInOrderWins(t *testing.T) {
	rules := rulesOf(
		models.CategoryRule{ID: 1, Keyword: "uber", Category: models.CategoryTransport},
		models.CategoryRule{ID: 2, Keyword: "UBER EATS", Category: models.CategoryFood},
	)

	got := newTestCategorizer(rules, nil, &noSleep{}).PredictCategory(context.Background(), "Uber Eats Toronto")
	assert.Equal(t, models.CategoryTransport, got)
}

func TestPredictCategory_AIResult(t *testing.T) {
	client := NewMockAIClient(MockReply{Text: "```json\n{\"category\": \"Food\"}\n```"})

	res := newTestCategorizer(rulesOf(), client, &noSleep{}).Categorize(context.Background(), "TIM HORTONS #1234 01/02/2024 12.50")

	assert.Equal(t, models.CategoryFood, res.Category)
	assert.Equal(t, "AI", res.Strategy)
	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], `Transaction: "TIM HORTONS #1234 [DATE] [AMT]"`)
	assert.NotContains(t, client.Prompts[0], "01/02/2024")
}

func TestPredictCategory_AllowListEnforced(t *testing.T) {
	for _, reply := range []string{
		`{"category": "Groceries"}`,
		`{"category": "food"}`,
		`{"category": ""}`,
		`{}`,
	} {
		client := NewMockAIClient(MockReply{Text: reply})
		got := newTestCategorizer(rulesOf(), client, &noSleep{}).PredictCategory(context.Background(), "SOMETHING")
		assert.Equal(t, models.CategoryOther, got, reply)
	}
}

func TestPredictCategory_RateLimitExhausted(t *testing.T) {
	rateLimited := &apperrors.RateLimitError{Provider: "test"}
	client := NewMockAIClient(
		MockReply{Err: rateLimited},
		MockReply{Err: rateLimited},
		MockReply{Err: rateLimited},
		MockReply{Text: `{"category": "Food"}`},
	)
	s := &noSleep{}

	res := newTestCategorizer(rulesOf(), client, s).Categorize(context.Background(), "COFFEE")

	assert.Equal(t, models.CategoryOther, res.Category)
	assert.Equal(t, FallbackStrategy, res.Strategy)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, s.delays)

	errs := res.Attempts.GetErrors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperrors.ErrRateLimited)
}

func TestCategorize_FallbackLogsStrategyErrors(t *testing.T) {
	client := NewMockAIClient(MockReply{Err: errors.New("connection refused")})
	mock := logging.NewMockLogger()
	c := NewCategorizer(rulesOf(), client, Options{Retry: testPolicy(&noSleep{}), FallbackCategory: models.CategoryOther}, mock)

	res := c.Categorize(context.Background(), "COFFEE")
	require.Equal(t, models.CategoryOther, res.Category)

	entries := mock.GetEntriesByLevel("DEBUG")
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "No strategy categorized the transaction, using fallback", last.Message)

	var logged string
	for _, f := range last.Fields {
		if f.Key == "errors" {
			logged, _ = f.Value.(string)
		}
	}
	assert.Contains(t, logged, "AI strategy")
	assert.Contains(t, logged, "connection refused")
}

func TestPredictCategory_RateLimitThenSuccess(t *testing.T) {
	client := NewMockAIClient(
		MockReply{Err: errors.New("googleapi: Error 429: Resource has been exhausted")},
		MockReply{Text: `{"category": "Transport"}`},
	)
	s := &noSleep{}

	got := newTestCategorizer(rulesOf(), client, s).PredictCategory(context.Background(), "UBER TRIP")

	assert.Equal(t, models.CategoryTransport, got)
	assert.Equal(t, 2, client.Calls())
	assert.Equal(t, []time.Duration{time.Second}, s.delays)
}

func TestPredictCategory_OtherErrorNotRetried(t *testing.T) {
	client := NewMockAIClient(
		MockReply{Err: errors.New("connection refused")},
		MockReply{Text: `{"category": "Food"}`},
	)
	s := &noSleep{}

	got := newTestCategorizer(rulesOf(), client, s).PredictCategory(context.Background(), "COFFEE")

	assert.Equal(t, models.CategoryOther, got)
	assert.Equal(t, 1, client.Calls())
	assert.Empty(t, s.delays)
}

func TestPredictCategory_MalformedReplyNotRetried(t *testing.T) {
	client := NewMockAIClient(MockReply{Text: "Food"})

	got := newTestCategorizer(rulesOf(), client, &noSleep{}).PredictCategory(context.Background(), "COFFEE")

	assert.Equal(t, models.CategoryOther, got)
	assert.Equal(t, 1, client.Calls())
}

func TestPredictCategory_RuleStoreErrorFallsThroughToAI(t *testing.T) {
	rules := &mockRuleLister{}
	rules.On("ListRules", mock.Anything).Return(nil, errors.New("db down"))
	client := NewMockAIClient(MockReply{Text: `{"category": "Health"}`})

	res := newTestCategorizer(rules, client, &noSleep{}).Categorize(context.Background(), "PHARMACY")

	assert.Equal(t, models.CategoryHealth, res.Category)
	assert.Equal(t, "Rule:failed, AI:success", res.Attempts.Summary())
}

func TestPredictCategory_NoAIClient(t *testing.T) {
	res := newTestCategorizer(rulesOf(), nil, &noSleep{}).Categorize(context.Background(), "UNKNOWN MERCHANT")

	assert.Equal(t, models.CategoryOther, res.Category)
	assert.Equal(t, "Rule:no_match", res.Attempts.Summary())
}

func TestNewCategorizerWithStrategies_InvalidFallback(t *testing.T) {
	c := NewCategorizerWithStrategies(nil, "Misc", nil)
	assert.Equal(t, models.CategoryOther, c.PredictCategory(context.Background(), "anything"))

	c = NewCategorizerWithStrategies(nil, models.CategoryShopping, nil)
	assert.Equal(t, models.CategoryShopping, c.PredictCategory(context.Background(), "anything"))
}

func TestCategorizer_Strategies(t *testing.T) {
	c := newTestCategorizer(rulesOf(), NewMockAIClient(), &noSleep{})
	assert.Equal(t, []string{"Rule", "AI"}, c.Strategies())
}
