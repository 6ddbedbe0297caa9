package models

import "strings"

// CategoryType distinguishes spending from earning categories.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "Expense"
	CategoryTypeIncome  CategoryType = "Income"
)

// Category is an administratively seeded category.
type Category struct {
	ID   int64        `json:"id" yaml:"-"`
	Name string       `json:"name" yaml:"name"`
	Type CategoryType `json:"type" yaml:"type"`
}

// CategoryRule maps a keyword to a category. Keywords are unique; a later
// write for the same keyword replaces the category.
type CategoryRule struct {
	ID       int64  `json:"id" yaml:"-"`
	Keyword  string `json:"keyword" yaml:"keyword"`
	Category string `json:"category" yaml:"category"`
}

// Matches reports whether the rule keyword occurs in description, ignoring
// case. Empty keywords never match.
func (r CategoryRule) Matches(description string) bool {
	if strings.TrimSpace(r.Keyword) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(r.Keyword))
}
