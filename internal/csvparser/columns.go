package csvparser

import "strings"

var (
	dateKeywords        = []string{"date"}
	descriptionKeywords = []string{"desc", "merchant", "name"}
	amountKeywords      = []string{"amount", "total", "debit", "credit"}
)

// columns holds the header index of each field.
type columns struct {
	date, description, amount int
}

// resolveColumns picks the date, description and amount columns from the
// header names. Names are lowercased and trimmed; the first column containing
// one of a role's keywords wins, and a column tested for date is not
// considered for description or amount. When a role stays unresolved the
// first three columns are assumed, provided there are at least three.
func resolveColumns(header []string) (columns, bool) {
	cols := columns{date: -1, description: -1, amount: -1}

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case containsAny(name, dateKeywords):
			if cols.date < 0 {
				cols.date = i
			}
		case containsAny(name, descriptionKeywords):
			if cols.description < 0 {
				cols.description = i
			}
		case containsAny(name, amountKeywords):
			if cols.amount < 0 {
				cols.amount = i
			}
		}
	}

	if cols.date >= 0 && cols.description >= 0 && cols.amount >= 0 {
		return cols, true
	}
	if len(header) >= 3 {
		return columns{date: 0, description: 1, amount: 2}, true
	}
	return columns{}, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
