// Package store persists transactions, categories and learned rules.
package store

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrDuplicate is returned when inserting a transaction whose
// (date, description, amount) key already exists.
var ErrDuplicate = errors.New("duplicate transaction")

// Store is the persistence collaborator of the ingestion service. Amounts
// compare by decimal value. Rules are returned in insertion order; updating a
// rule keeps its position.
type Store interface {
	// FindTransaction looks up a transaction by its de-duplication key.
	FindTransaction(ctx context.Context, date, description string, amount decimal.Decimal) (models.Transaction, bool, error)
	// InsertTransaction saves tx and sets its ID.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	// GetTransaction returns *apperrors.NotFoundError for an unknown id.
	GetTransaction(ctx context.Context, id int64) (models.Transaction, error)
	// UpdateTransaction overwrites the category of tx.ID.
	UpdateTransaction(ctx context.Context, tx models.Transaction) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	// ResetTransactions deletes every transaction and returns how many.
	ResetTransactions(ctx context.Context) (int64, error)

	ListRules(ctx context.Context) ([]models.CategoryRule, error)
	// UpsertRule creates the rule or replaces the category of an existing keyword.
	UpsertRule(ctx context.Context, keyword, category string) (models.CategoryRule, error)
	// InsertRuleIfAbsent creates the rule unless the keyword exists.
	InsertRuleIfAbsent(ctx context.Context, keyword, category string) (bool, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	// SeedCategories inserts categories only when none exist yet.
	SeedCategories(ctx context.Context, categories []models.Category) (int, error)

	Close() error
}

// Config selects and locates the backing store.
type Config struct {
	Driver string
	// Path of the SQLite database file.
	Path string
	// DSN of the PostgreSQL database.
	DSN string
}

// Open connects to the configured store and creates its schema.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Store, error) {
	logger = logging.OrDefault(logger)
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.Path, logger)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// CategoryNames returns the stored category names, or the allow-list when the
// category table is empty.
func CategoryNames(ctx context.Context, s Store) ([]string, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return append([]string(nil), models.AllowedCategories...), nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names, nil
}
