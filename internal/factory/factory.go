// Package factory selects the statement parser for an uploaded file.
package factory

import (
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/csvparser"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/parser"
	"fjacquet/statement-ledger/internal/pdfparser"
)

// ParserType defines the types of parsers available.
type ParserType string

const (
	PDF ParserType = "pdf"
	CSV ParserType = "csv"
)

// Factory builds parsers with shared dependencies.
type Factory struct {
	logger       logging.Logger
	pdfExtractor pdfparser.PDFExtractor
	pdfOptions   []pdfparser.Option
}

// New creates a Factory. A nil extractor makes PDF parsers use pdftotext.
func New(logger logging.Logger, pdfExtractor pdfparser.PDFExtractor, pdfOptions ...pdfparser.Option) *Factory {
	return &Factory{
		logger:       logging.OrDefault(logger),
		pdfExtractor: pdfExtractor,
		pdfOptions:   pdfOptions,
	}
}

// TypeForFile maps a file name to a parser type by its extension, ignoring case.
func TypeForFile(fileName string) (ParserType, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return PDF, nil
	case ".csv":
		return CSV, nil
	default:
		return "", &apperrors.UnsupportedFormatError{FileName: fileName, Extension: ext}
	}
}

// GetParser returns a new parser of the given type.
func (f *Factory) GetParser(parserType ParserType) (parser.Parser, error) {
	switch parserType {
	case PDF:
		return pdfparser.NewParser(f.logger, f.pdfExtractor, f.pdfOptions...), nil
	case CSV:
		return csvparser.NewParser(f.logger), nil
	default:
		return nil, &apperrors.UnsupportedFormatError{Extension: string(parserType)}
	}
}

// ForFile returns the parser matching fileName's extension.
func (f *Factory) ForFile(fileName string) (parser.Parser, error) {
	parserType, err := TypeForFile(fileName)
	if err != nil {
		return nil, err
	}
	return f.GetParser(parserType)
}
