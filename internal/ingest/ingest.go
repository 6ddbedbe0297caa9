// Package ingest runs the statement pipeline: extraction, de-duplication
// against the ledger, categorization of new transactions and the correction
// feedback loop that turns user fixes into rules.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parser"
	"fjacquet/statement-ledger/internal/store"
)

// ParserSource picks the parser for a file name.
type ParserSource interface {
	ForFile(fileName string) (parser.Parser, error)
}

// Classifier returns an allowed category for a description.
type Classifier interface {
	PredictCategory(ctx context.Context, description string) string
}

// Result summarizes one ingestion. Processed counts extracted candidates,
// Saved the ones that were new; Processed >= Saved.
type Result struct {
	FileName  string `json:"filename"`
	Processed int    `json:"transactions_processed"`
	Saved     int    `json:"new_saved"`
}

// Service owns every write made by the pipeline. Calls run sequentially;
// concurrent ingestions of overlapping data may race on de-duplication, in
// which case the store's unique key rejects the second insert.
type Service struct {
	parsers    ParserSource
	store      store.Store
	classifier Classifier
	logger     logging.Logger
}

// NewService creates a Service.
func NewService(parsers ParserSource, st store.Store, classifier Classifier, logger logging.Logger) *Service {
	return &Service{
		parsers:    parsers,
		store:      st,
		classifier: classifier,
		logger:     logging.OrDefault(logger),
	}
}

// Extract parses the document without touching the ledger.
func (s *Service) Extract(ctx context.Context, fileName string, r io.Reader) ([]models.RawCandidate, error) {
	p, err := s.parsers.ForFile(fileName)
	if err != nil {
		return nil, err
	}
	candidates, err := p.Parse(ctx, r)
	if err != nil {
		var formatErr *apperrors.InvalidFormatError
		if errors.As(err, &formatErr) && formatErr.FilePath == "" {
			formatErr.FilePath = fileName
		}
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	return candidates, nil
}

// Ingest extracts the document, skips candidates already in the ledger and
// saves the others with their predicted category.
func (s *Service) Ingest(ctx context.Context, fileName string, r io.Reader) (Result, error) {
	start := time.Now()
	logger := s.logger.WithField(logging.FieldFile, fileName)

	candidates, err := s.Extract(ctx, fileName, r)
	if err != nil {
		return Result{}, err
	}

	res := Result{FileName: fileName, Processed: len(candidates)}
	for _, c := range candidates {
		_, known, err := s.store.FindTransaction(ctx, c.Date, c.Description, c.Amount)
		if err != nil {
			return res, fmt.Errorf("look up transaction: %w", err)
		}
		if known {
			logger.Debug("Skipping known transaction",
				logging.Field{Key: logging.FieldDescription, Value: c.Description})
			continue
		}

		tx := c.ToTransaction(s.classifier.PredictCategory(ctx, c.Description))
		if err := s.store.InsertTransaction(ctx, &tx); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				logger.Warn("Transaction inserted concurrently, skipping",
					logging.Field{Key: logging.FieldDescription, Value: c.Description})
				continue
			}
			return res, fmt.Errorf("save transaction: %w", err)
		}
		res.Saved++
	}

	logger.Info("Ingested statement",
		logging.Field{Key: logging.FieldProcessed, Value: res.Processed},
		logging.Field{Key: logging.FieldSaved, Value: res.Saved},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return res, nil
}

// Correct sets the category of transaction id and learns a rule keyed by its
// trimmed description, replacing any earlier rule for the same text.
func (s *Service) Correct(ctx context.Context, id int64, category string) (models.Transaction, error) {
	if !models.IsAllowedCategory(category) {
		return models.Transaction{}, &apperrors.InvalidCategoryError{Category: category}
	}

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Category = category
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return models.Transaction{}, err
	}

	logger := s.logger.WithFields(
		logging.Field{Key: logging.FieldTransactionID, Value: id},
		logging.Field{Key: logging.FieldCategory, Value: category})

	keyword := tx.RuleKeyword()
	if keyword == "" {
		logger.Warn("Transaction has no description, no rule learned")
		return tx, nil
	}
	if _, err := s.store.UpsertRule(ctx, keyword, category); err != nil {
		return tx, fmt.Errorf("learn rule: %w", err)
	}

	logger.Info("Learned rule from correction", logging.Field{Key: logging.FieldKeyword, Value: keyword})
	return tx, nil
}
