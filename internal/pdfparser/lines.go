package pdfparser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// A statement line: transaction date, posting date, merchant span (usually
// followed by a category label), amount.
//
//	Jul 04 Jul 07 METRO MONTREAL QC Retail and Grocery 28.95
var transactionLine = regexp.MustCompile(`^([A-Z][a-z]{2})\s+(\d{1,2})\s+([A-Z][a-z]{2})\s+(\d{1,2})\s+(.+?)\s+([\d,]+\.\d{2})$`)

var paymentPhrases = []string{"PAYMENT THANK YOU", "PAIEMENT MERCI"}

// Reasons a matching line is dropped.
const (
	reasonNoMatch       = "not a transaction line"
	reasonPayment       = "card payment posting"
	reasonAmount        = "amount not parseable"
	reasonShort         = "description too short"
	reasonHeaderRemnant = "header fragment"
)

// SplitPages splits pdftotext output on form feeds, dropping pages without text.
func SplitPages(text string) []string {
	var pages []string
	for _, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// parseLine converts one statement line into a candidate. When the line is
// not kept, reason says why and err carries a parse failure if any.
func parseLine(line string) (c models.RawCandidate, reason string, err error) {
	line = strings.TrimSpace(line)
	m := transactionLine.FindStringSubmatch(line)
	if m == nil {
		return c, reasonNoMatch, nil
	}
	month, day, span, rawAmount := m[1], m[2], m[5], m[6]

	upper := strings.ToUpper(span)
	if strings.Contains(upper, "PAYMENT") || strings.Contains(upper, "PAIEMENT") {
		return c, reasonPayment, nil
	}

	description := stripCategoryLabel(span)
	upper = strings.ToUpper(description)
	for _, phrase := range paymentPhrases {
		if strings.Contains(upper, phrase) {
			return c, reasonPayment, nil
		}
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", ""))
	if err != nil {
		return c, reasonAmount, &apperrors.ParseError{Parser: parserName, Field: "amount", Value: rawAmount, Err: err}
	}

	if utf8.RuneCountInString(description) <= 3 {
		return c, reasonShort, nil
	}
	if strings.Contains(strings.ToLower(description), "date") {
		return c, reasonHeaderRemnant, nil
	}

	return models.RawCandidate{
		Date:        month + " " + day,
		Description: description,
		Amount:      amount,
	}, "", nil
}

// stripCategoryLabel removes the category label statement renderers append to
// the merchant name. It is a best-effort heuristic: spans of more than three
// words lose their last three words, spans of two or three words keep only the
// first word, and a single word is kept as is. Short merchant names such as
// "TIM HORTONS" are truncated to their first word as a consequence.
func stripCategoryLabel(span string) string {
	words := strings.Fields(span)
	switch {
	case len(words) > 3:
		return strings.Join(words[:len(words)-3], " ")
	case len(words) > 0:
		return words[0]
	default:
		return ""
	}
}
