// Package categorizer assigns a spending category to a transaction description
// in three tiers:
// 1. Learned keyword rules from the store
// 2. A language model call on the sanitized description, with retry on rate limits
// 3. The fallback category ("Other")
package categorizer

import (
	"context"
	"errors"
	"time"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
)

// FallbackStrategy names the last tier in results and logs.
const FallbackStrategy = "Fallback"

// Options configures NewCategorizer.
type Options struct {
	Retry            RetryPolicy
	Timeout          time.Duration
	FallbackCategory string
}

// Result is the outcome of categorizing one description.
type Result struct {
	Category string
	Strategy string
	Attempts StrategyResults
}

// Categorizer runs the strategies in order and falls back when none decides.
// It never writes to the store.
type Categorizer struct {
	strategies []CategorizationStrategy
	fallback   string
	logger     logging.Logger
}

// NewCategorizer wires the rule tier over rules and, when aiClient is not
// nil, the AI tier.
func NewCategorizer(rules RuleLister, aiClient AIClient, opts Options, logger logging.Logger) *Categorizer {
	logger = logging.OrDefault(logger)
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}

	strategies := []CategorizationStrategy{NewRuleStrategy(rules, logger)}
	if aiClient != nil {
		strategies = append(strategies, NewAIStrategy(aiClient, opts.Retry, opts.Timeout, logger))
	}
	return NewCategorizerWithStrategies(strategies, opts.FallbackCategory, logger)
}

// NewCategorizerWithStrategies builds a Categorizer from explicit strategies.
// A fallback outside the allow-list is replaced by Other.
func NewCategorizerWithStrategies(strategies []CategorizationStrategy, fallback string, logger logging.Logger) *Categorizer {
	if !models.IsAllowedCategory(fallback) {
		fallback = models.CategoryOther
	}
	return &Categorizer{
		strategies: strategies,
		fallback:   fallback,
		logger:     logging.OrDefault(logger),
	}
}

// Strategies returns the configured strategy names in order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Categorize returns the first category a strategy finds. Strategy errors are
// logged and the next tier is tried.
func (c *Categorizer) Categorize(ctx context.Context, description string) Result {
	var results StrategyResults

	for _, strategy := range c.strategies {
		category, found, err := strategy.Categorize(ctx, description)
		results.Results = append(results.Results, StrategyResult{
			Strategy: strategy.Name(),
			Category: category,
			Found:    found,
			Error:    err,
		})
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.Field{Key: logging.FieldStrategy, Value: strategy.Name()},
				logging.Field{Key: logging.FieldDescription, Value: description})
			continue
		}
		if found {
			return Result{Category: category, Strategy: strategy.Name(), Attempts: results}
		}
	}

	fields := []logging.Field{
		{Key: logging.FieldCategory, Value: c.fallback},
		{Key: "attempts", Value: results.Summary()},
	}
	if errs := results.GetErrors(); len(errs) > 0 {
		fields = append(fields, logging.Field{Key: "errors", Value: errors.Join(errs...).Error()})
	}
	c.logger.Debug("No strategy categorized the transaction, using fallback", fields...)
	return Result{Category: c.fallback, Strategy: FallbackStrategy, Attempts: results}
}

// PredictCategory returns the category for description. It always returns a
// member of models.AllowedCategories.
func (c *Categorizer) PredictCategory(ctx context.Context, description string) string {
	return c.Categorize(ctx, description).Category
}
