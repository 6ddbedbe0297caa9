package categorizer

import (
	"context"

	"fjacquet/statement-ledger/internal/models"
)

// CategorizationStrategy is one tier of the categorization pipeline.
type CategorizationStrategy interface {
	// Categorize returns the category for description. found is false when
	// the strategy has no opinion; err reports a failed attempt.
	Categorize(ctx context.Context, description string) (category string, found bool, err error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

// RuleLister gives read access to learned rules in match order.
type RuleLister interface {
	ListRules(ctx context.Context) ([]models.CategoryRule, error)
}
