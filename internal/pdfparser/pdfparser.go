// Package pdfparser extracts transactions from credit card statement PDFs.
package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parser"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const parserName = "PDF"

// PageCounter validates a PDF file and reports its page count.
type PageCounter func(pdfPath string) (int, error)

// Parser reads the text layer of a statement PDF line by line.
type Parser struct {
	parser.BaseParser
	extractor PDFExtractor
	pages     PageCounter
}

// Option configures a Parser.
type Option func(*Parser)

// WithPageCounter replaces the pdfcpu based validation.
func WithPageCounter(pc PageCounter) Option {
	return func(p *Parser) {
		p.pages = pc
	}
}

// NewParser creates a PDF parser. A nil extractor uses pdftotext.
func NewParser(logger logging.Logger, extractor PDFExtractor, opts ...Option) *Parser {
	if extractor == nil {
		extractor = NewPdftotextExtractor()
	}
	p := &Parser{
		BaseParser: parser.NewBaseParser(parserName, logger),
		extractor:  extractor,
		pages:      countPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// countPages reads the document with pdfcpu.
func countPages(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath) // #nosec G304 -- temp file created by Parse
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := api.PDFInfo(f, pdfPath, nil, model.NewDefaultConfiguration())
	if err != nil {
		return 0, err
	}
	return info.PageCount, nil
}

// Parse copies r to a temporary file, validates it, extracts its text and
// returns the candidates found in document order.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]models.RawCandidate, error) {
	logger := p.GetLogger()

	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			logger.WithError(err).Warn("Failed to remove temporary file",
				logging.Field{Key: logging.FieldFile, Value: tempPath})
		}
	}()

	_, copyErr := io.Copy(tempFile, r)
	if err := tempFile.Close(); err != nil && copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		return nil, fmt.Errorf("failed to write temporary PDF file: %w", copyErr)
	}

	pageCount, err := p.pages(tempPath)
	if err != nil {
		return nil, &apperrors.InvalidFormatError{
			FilePath:       tempPath,
			ExpectedFormat: "PDF",
			Msg:            "file is not a valid PDF",
			Err:            err,
		}
	}

	text, err := p.extractor.ExtractText(ctx, tempPath)
	if err != nil {
		return nil, &apperrors.ParseError{
			Parser: parserName,
			Field:  "text extraction",
			Value:  tempPath,
			Err:    err,
		}
	}

	candidates := p.ParseText(text)
	logger.Info("Parsed PDF statement",
		logging.Field{Key: logging.FieldPage, Value: pageCount},
		logging.Field{Key: logging.FieldCount, Value: len(candidates)})
	return candidates, nil
}

// ParseText extracts candidates from already extracted text.
func (p *Parser) ParseText(text string) []models.RawCandidate {
	var candidates []models.RawCandidate
	for pageNo, page := range SplitPages(text) {
		for lineNo, line := range strings.Split(page, "\n") {
			c, reason, err := parseLine(line)
			if reason == reasonNoMatch {
				continue
			}
			if reason != "" {
				fields := []logging.Field{
					{Key: logging.FieldPage, Value: pageNo + 1},
					{Key: logging.FieldLine, Value: lineNo + 1},
				}
				if err != nil {
					fields = append(fields, logging.Field{Key: "error", Value: err.Error()})
				}
				p.Skip(reason, fields...)
				continue
			}
			candidates = append(candidates, c)
		}
	}
	return candidates
}
