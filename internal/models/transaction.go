package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is a persisted ledger entry. The (Date, Description, Amount)
// triple identifies a transaction for de-duplication.
type Transaction struct {
	ID          int64           `json:"id" csv:"id"`
	Date        string          `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Category    string          `json:"category" csv:"category"`
}

// RawCandidate is a transaction extracted from a document before
// de-duplication and categorization. It is never persisted.
type RawCandidate struct {
	Date        string          `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
}

// ToTransaction builds an unsaved Transaction from the candidate.
func (c RawCandidate) ToTransaction(category string) Transaction {
	return Transaction{
		Date:        c.Date,
		Description: c.Description,
		Amount:      c.Amount,
		Category:    category,
	}
}

// SameKey reports whether t carries the same de-duplication key as c.
// Amounts compare by value, so 4.5 and 4.50 are equal.
func (t Transaction) SameKey(c RawCandidate) bool {
	return t.Date == c.Date && t.Description == c.Description && t.Amount.Equal(c.Amount)
}

// RuleKeyword returns the keyword a correction of t is learned under.
func (t Transaction) RuleKeyword() string {
	return strings.TrimSpace(t.Description)
}
