package categorizer

import (
	"context"
	"fmt"

	"fjacquet/statement-ledger/internal/logging"
)

// RuleStrategy matches descriptions against learned keyword rules. Rules are
// scanned in the order the store returns them (insertion order) and the first
// keyword found in the description, ignoring case, wins.
type RuleStrategy struct {
	rules  RuleLister
	logger logging.Logger
}

// NewRuleStrategy creates a RuleStrategy over rules.
func NewRuleStrategy(rules RuleLister, logger logging.Logger) *RuleStrategy {
	return &RuleStrategy{rules: rules, logger: logging.OrDefault(logger)}
}

func (s *RuleStrategy) Name() string {
	return "Rule"
}

func (s *RuleStrategy) Categorize(ctx context.Context, description string) (string, bool, error) {
	if s.rules == nil {
		return "", false, nil
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list rules: %w", err)
	}

	for _, rule := range rules {
		if rule.Matches(description) {
			s.logger.Debug("Transaction categorized by rule",
				logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
				logging.Field{Key: logging.FieldCategory, Value: rule.Category})
			return rule.Category, true, nil
		}
	}
	return "", false, nil
}
