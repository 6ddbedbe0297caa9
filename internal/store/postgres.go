package store

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		UNIQUE (date, description, amount)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT 'Expense'
	)`,
	`CREATE TABLE IF NOT EXISTS category_rules (
		id BIGSERIAL PRIMARY KEY,
		keyword TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL
	)`,
}

// PostgresStore persists to PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty DSN")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger = logging.OrDefault(logger)
	logger.Debug("Connected to PostgreSQL store")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) FindTransaction(ctx context.Context, date, description string, amount decimal.Decimal) (models.Transaction, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions
		WHERE date = $1 AND description = $2 AND amount = $3`,
		date, description, amount.String())

	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("find transaction: %w", err)
	}
	return tx, true, nil
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (date, description, amount, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		tx.Date, tx.Description, tx.Amount.String(), tx.Category).Scan(&tx.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions
		WHERE id = $1`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, &apperrors.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	tag, err := s.pool.Exec(ctx, `UPDATE transactions SET category = $1 WHERE id = $2`, tx.Category, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Entity: "transaction", ID: tx.ID}
	}
	return nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
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

func (s *PostgresStore) ResetTransactions(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("reset transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, keyword, category FROM category_rules ORDER BY id ASC`)
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

func (s *PostgresStore) UpsertRule(ctx context.Context, keyword, category string) (models.CategoryRule, error) {
	var r models.CategoryRule
	err := s.pool.QueryRow(ctx, `
		INSERT INTO category_rules (keyword, category) VALUES ($1, $2)
		ON CONFLICT (keyword) DO UPDATE SET category = EXCLUDED.category
		RETURNING id, keyword, category`,
		keyword, category).Scan(&r.ID, &r.Keyword, &r.Category)
	if err != nil {
		return models.CategoryRule{}, fmt.Errorf("upsert rule: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) InsertRuleIfAbsent(ctx context.Context, keyword, category string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO category_rules (keyword, category) VALUES ($1, $2)
		ON CONFLICT (keyword) DO NOTHING`, keyword, category)
	if err != nil {
		return false, fmt.Errorf("insert rule: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, type FROM categories ORDER BY id ASC`)
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

func (s *PostgresStore) SeedCategories(ctx context.Context, categories []models.Category) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range categories {
		typ := c.Type
		if typ == "" {
			typ = models.CategoryTypeExpense
		}
		batch.Queue(`INSERT INTO categories (name, type) VALUES ($1, $2)`, c.Name, string(typ))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert categories: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(categories), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
