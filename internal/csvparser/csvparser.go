// Package csvparser extracts transactions from CSV statement exports whose
// layout is guessed from the header row.
package csvparser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parser"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const parserName = "CSV"

// maxAmountDigits bounds the significant digits of an amount cell. Larger
// values are not statement amounts and are expensive to render as text.
const maxAmountDigits = 24

var (
	errExponentAmount = errors.New("exponent notation not accepted")
	errAmountTooLarge = errors.New("too many digits")
)

// Parser reads CSV exports with a header row.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a CSV parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(parserName, logger)}
}

// Parse returns one candidate per data row whose amount parses. A header that
// maps to no usable columns yields an empty result.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]models.RawCandidate, error) {
	reader := gocsv.LazyCSVReader(r)
	if cr, ok := reader.(*csv.Reader); ok {
		cr.FieldsPerRecord = -1
		// Cells are kept as written; descriptions feed the dedup key and rule keywords.
		cr.TrimLeadingSpace = false
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, &apperrors.InvalidFormatError{
			ExpectedFormat: "CSV with a header row",
			Msg:            "cannot read header",
			Err:            err,
		}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols, ok := resolveColumns(header)
	if !ok {
		p.GetLogger().Warn("Cannot map CSV columns, no transactions extracted",
			logging.Field{Key: "header", Value: header})
		return []models.RawCandidate{}, nil
	}

	var candidates []models.RawCandidate
	for rowNo := 2; ; rowNo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &apperrors.InvalidFormatError{
				ExpectedFormat: "CSV",
				Msg:            fmt.Sprintf("cannot read row %d", rowNo),
				Err:            err,
			}
		}

		c, err := toCandidate(record, cols)
		if err != nil {
			p.Skip("amount not parseable",
				logging.Field{Key: logging.FieldLine, Value: rowNo},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		candidates = append(candidates, c)
	}

	p.GetLogger().Info("Parsed CSV statement",
		logging.Field{Key: logging.FieldCount, Value: len(candidates)})
	return candidates, nil
}

func toCandidate(record []string, cols columns) (models.RawCandidate, error) {
	raw := cell(record, cols.amount)
	amount, err := parseAmount(strings.TrimSpace(raw))
	if err != nil {
		return models.RawCandidate{}, &apperrors.ParseError{Parser: parserName, Field: "amount", Value: raw, Err: err}
	}
	return models.RawCandidate{
		Date:        cell(record, cols.date),
		Description: cell(record, cols.description),
		Amount:      amount,
	}, nil
}

// parseAmount accepts plain decimal notation only.
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, errExponentAmount
	}
	if len(s) > 2*maxAmountDigits {
		return decimal.Decimal{}, errAmountTooLarge
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if amount.NumDigits() > maxAmountDigits {
		return decimal.Decimal{}, errAmountTooLarge
	}
	return amount, nil
}

// cell returns record[i], or "" for a short row.
func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
