package store

import (
	"context"
	"sync"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps everything in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	rules        []models.CategoryRule
	categories   []models.Category
	nextTxID     int64
	nextRuleID   int64
	nextCatID    int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) FindTransaction(_ context.Context, date, description string, amount decimal.Decimal) (models.Transaction, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := models.RawCandidate{Date: date, Description: description, Amount: amount}
	for _, tx := range m.transactions {
		if tx.SameKey(key) {
			return tx, true, nil
		}
	}
	return models.Transaction{}, false, nil
}

func (m *MemoryStore) InsertTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.transactions {
		if existing.Date == tx.Date && existing.Description == tx.Description && existing.Amount.Equal(tx.Amount) {
			return ErrDuplicate
		}
	}
	m.nextTxID++
	tx.ID = m.nextTxID
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *MemoryStore) GetTransaction(_ context.Context, id int64) (models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tx := range m.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return models.Transaction{}, &apperrors.NotFoundError{Entity: "transaction", ID: id}
}

func (m *MemoryStore) UpdateTransaction(_ context.Context, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.transactions {
		if m.transactions[i].ID == tx.ID {
			m.transactions[i].Category = tx.Category
			return nil
		}
	}
	return &apperrors.NotFoundError{Entity: "transaction", ID: tx.ID}
}

func (m *MemoryStore) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out, nil
}

func (m *MemoryStore) ResetTransactions(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.transactions))
	m.transactions = nil
	return n, nil
}

func (m *MemoryStore) ListRules(_ context.Context) ([]models.CategoryRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.CategoryRule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *MemoryStore) UpsertRule(_ context.Context, keyword, category string) (models.CategoryRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rules {
		if m.rules[i].Keyword == keyword {
			m.rules[i].Category = category
			return m.rules[i], nil
		}
	}
	m.nextRuleID++
	rule := models.CategoryRule{ID: m.nextRuleID, Keyword: keyword, Category: category}
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *MemoryStore) InsertRuleIfAbsent(_ context.Context, keyword, category string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rules {
		if r.Keyword == keyword {
			return false, nil
		}
	}
	m.nextRuleID++
	m.rules = append(m.rules, models.CategoryRule{ID: m.nextRuleID, Keyword: keyword, Category: category})
	return true, nil
}

func (m *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *MemoryStore) SeedCategories(_ context.Context, categories []models.Category) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.categories) > 0 {
		return 0, nil
	}
	for _, c := range categories {
		m.nextCatID++
		c.ID = m.nextCatID
		if c.Type == "" {
			c.Type = models.CategoryTypeExpense
		}
		m.categories = append(m.categories, c)
	}
	return len(categories), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
