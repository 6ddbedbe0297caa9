// Package parser defines the contract shared by statement extractors.
package parser

import (
	"context"
	"io"

	"fjacquet/statement-ledger/internal/models"
)

// Parser extracts raw transaction candidates from a statement document.
//
// Lines or rows that do not look like transactions are skipped rather than
// reported. An error is returned only when the document as a whole cannot be
// read in the expected format.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) ([]models.RawCandidate, error)
	// Name identifies the parser in logs and errors.
	Name() string
}
