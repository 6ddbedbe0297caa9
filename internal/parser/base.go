package parser

import (
	"fjacquet/statement-ledger/internal/logging"
)

// BaseParser holds what every extractor shares. Parsers embed it:
//
//	type MyParser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	name   string
	logger logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger is replaced by the default one.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	return BaseParser{
		name:   name,
		logger: logging.OrDefault(logger).WithField(logging.FieldParser, name),
	}
}

// Name returns the parser name.
func (b *BaseParser) Name() string {
	return b.name
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger.WithField(logging.FieldParser, b.name)
	}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Skip logs a dropped line or row at debug level.
func (b *BaseParser) Skip(reason string, fields ...logging.Field) {
	b.logger.Debug("Skipping entry", append(fields, logging.Field{Key: logging.FieldReason, Value: reason})...)
}
