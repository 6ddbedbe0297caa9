package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		UNIQUE (date, description, amount)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT 'Expense'
	)`,
	`CREATE TABLE IF NOT EXISTS category_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL
	)`,
}

// SQLiteStore persists to a SQLite file. Amounts are stored as canonical
// decimal text so equal values compare equal in SQL.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the schema
// exists. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logging.OrDefault(logger).Debug("Opened SQLite store", logging.Field{Key: logging.FieldFile, Value: path})
	return &SQLiteStore{db: db, logger: logging.OrDefault(logger)}, nil
}

func (s *SQLiteStore) FindTransaction(ctx context.Context, date, description string, amount decimal.Decimal) (models.Transaction, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions
		WHERE date = ? AND description = ? AND amount = ?`,
		date, description, amount.String())

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("find transaction: %w", err)
	}
	return tx, true, nil
}

func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (date, description, amount, category)
		VALUES (?, ?, ?, ?)`,
		tx.Date, tx.Description, tx.Amount.String(), tx.Category)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = id
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions
		WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, &apperrors.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, tx.Category, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return &apperrors.NotFoundError{Entity: "transaction", ID: tx.ID}
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ResetTransactions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("reset transactions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, keyword, category FROM category_rules ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		if err := rows.Scan(&r.ID, &r.Keyword, &r.Category); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertRule(ctx context.Context, keyword, category string) (models.CategoryRule, error) {
	var r models.CategoryRule
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO category_rules (keyword, category) VALUES (?, ?)
		ON CONFLICT (keyword) DO UPDATE SET category = excluded.category
		RETURNING id, keyword, category`,
		keyword, category).Scan(&r.ID, &r.Keyword, &r.Category)
	if err != nil {
		return models.CategoryRule{}, fmt.Errorf("upsert rule: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) InsertRuleIfAbsent(ctx context.Context, keyword, category string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO category_rules (keyword, category) VALUES (?, ?)
		ON CONFLICT (keyword) DO NOTHING`, keyword, category)
	if err != nil {
		return false, fmt.Errorf("insert rule: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = models.CategoryType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SeedCategories(ctx context.Context, categories []models.Category) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, c := range categories {
		typ := c.Type
		if typ == "" {
			typ = models.CategoryTypeExpense
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (name, type) VALUES (?, ?)`, c.Name, string(typ)); err != nil {
			return 0, fmt.Errorf("insert category %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(categories), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var tx models.Transaction
	var amount string
	if err := row.Scan(&tx.ID, &tx.Date, &tx.Description, &amount, &tx.Category); err != nil {
		return models.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, &apperrors.ParseError{Parser: "store", Field: "amount", Value: amount, Err: err}
	}
	tx.Amount = d
	return tx, nil
}
