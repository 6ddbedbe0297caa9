package categorizer

import (
	"context"
	"strings"
	"time"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/textutils"
)

// AIStrategy asks a language model for the category of a sanitized
// description. Only rate limit failures are retried.
type AIStrategy struct {
	client  AIClient
	policy  RetryPolicy
	timeout time.Duration
	logger  logging.Logger
}

// NewAIStrategy creates an AIStrategy. timeout bounds each attempt; zero
// means no bound.
func NewAIStrategy(client AIClient, policy RetryPolicy, timeout time.Duration, logger logging.Logger) *AIStrategy {
	return &AIStrategy{
		client:  client,
		policy:  policy,
		timeout: timeout,
		logger:  logging.OrDefault(logger),
	}
}

func (s *AIStrategy) Name() string {
	return "AI"
}

// Categorize returns an allowed category. A reply naming anything else is
// mapped to Other. Failures are returned as *apperrors.CategorizationError.
func (s *AIStrategy) Categorize(ctx context.Context, description string) (string, bool, error) {
	if s.client == nil {
		s.logger.Debug("AI client not available, skipping AI categorization",
			logging.Field{Key: logging.FieldStrategy, Value: s.Name()})
		return "", false, nil
	}
	if strings.TrimSpace(description) == "" {
		return "", false, nil
	}

	prompt := BuildPrompt(textutils.Sanitize(description))

	var category string
	err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		reply, err := s.complete(ctx, prompt)
		if err != nil {
			log := s.logger.WithError(err).WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldAttempt, Value: attempt + 1})
			if IsRateLimited(err) {
				log.Warn("AI rate limited", logging.Field{Key: logging.FieldDelay, Value: s.policy.Backoff(attempt).String()})
			} else {
				log.Warn("AI categorization failed")
			}
			return err
		}
		category, err = parseCategoryReply(reply)
		return err
	})
	if err != nil {
		return "", false, &apperrors.CategorizationError{Description: description, Strategy: s.Name(), Err: err}
	}

	if !models.IsAllowedCategory(category) {
		s.logger.Warn("AI returned a category outside the allow-list",
			logging.Field{Key: logging.FieldCategory, Value: category})
		category = models.CategoryOther
	}

	s.logger.Debug("Transaction categorized using AI",
		logging.Field{Key: logging.FieldCategory, Value: category})
	return category, true, nil
}

func (s *AIStrategy) complete(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.client.Complete(ctx, prompt)
}
