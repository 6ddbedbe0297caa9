// Package textutils provides text manipulation utilities.
package textutils

import (
	"regexp"
	"strings"
)

// Placeholders substituted by Sanitize.
const (
	DatePlaceholder    = "[DATE]"
	AmountPlaceholder  = "[AMT]"
	AccountPlaceholder = "[ACC#]"
)

// Substitutions run in this order. Amounts are replaced before account numbers
// so the integer part of an amount is not taken for an account number.
var (
	datePattern    = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	amountPattern  = regexp.MustCompile(`\$?[\d,]+\.\d{2}`)
	accountPattern = regexp.MustCompile(`\b\d{5,}\b`)
)

// Sanitize removes dates, monetary amounts and long digit runs from a
// transaction description before it is sent to an external classifier.
// It never fails and Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	text = datePattern.ReplaceAllLiteralString(text, DatePlaceholder)
	text = amountPattern.ReplaceAllLiteralString(text, AmountPlaceholder)
	text = accountPattern.ReplaceAllLiteralString(text, AccountPlaceholder)
	return strings.TrimSpace(text)
}
