package categorizer

import (
	"fmt"
	"strings"
)

// StrategyResult records one strategy attempt.
type StrategyResult struct {
	Strategy string
	Category string
	Found    bool
	Error    error
}

// StrategyResults aggregates the attempts made for one description.
type StrategyResults struct {
	Results []StrategyResult
}

// GetErrors returns all errors encountered during strategy execution
func (sr StrategyResults) GetErrors() []error {
	var errs []error
	for _, result := range sr.Results {
		if result.Error != nil {
			errs = append(errs, fmt.Errorf("%s strategy: %w", result.Strategy, result.Error))
		}
	}
	return errs
}

// Summary returns a human-readable summary of all strategy attempts
func (sr StrategyResults) Summary() string {
	var parts []string
	for _, result := range sr.Results {
		status := "failed"
		if result.Found {
			status = "success"
		} else if result.Error == nil {
			status = "no_match"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", result.Strategy, status))
	}
	return strings.Join(parts, ", ")
}
