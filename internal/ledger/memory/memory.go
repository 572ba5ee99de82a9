package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"painel/internal/core"
	"painel/internal/importer"
	"painel/internal/ledger"
)

const defaultCategory = "Outros"

// Ensure interface conformance
var (
	_ ledger.TransactionReader = (*Store)(nil)
	_ ledger.TransactionWriter = (*Store)(nil)
	_ ledger.Counter           = (*Store)(nil)
)

// Store keeps the ledger in process memory. Useful for demos and tests.
type Store struct {
	mu     sync.RWMutex
	items  []core.Transaction
	nextID int64
}

func New(seed ...core.Transaction) *Store {
	s := &Store{}
	s.append(seed)
	return s
}

// NewFromFile seeds the store from a processed statement CSV. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	txs, err := importer.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Memory seed file not found, starting empty", "path", path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed memory store: %w", err)
	}
	return New(txs...), nil
}

// ListTransactions returns a copy of every stored row.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction{}, s.items...), nil
}

// InsertTransactions validates all rows before storing any of them.
func (s *Store) InsertTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	for i, t := range txs {
		if err := t.Validate(); err != nil && !errors.Is(err, core.ErrEmptyDescription) {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(txs)
	return len(txs), nil
}

// Classify mirrors the SQL LIKE used by the SQLite store: ASCII
// case-insensitive substring match.
func (s *Store) Classify(_ context.Context, category string, patterns []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.items {
		desc := strings.ToUpper(s.items[i].Description)
		for _, p := range patterns {
			if strings.Contains(desc, strings.ToUpper(p)) {
				s.items[i].Category = category
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

// append must be called with mu held (or before the store is shared).
func (s *Store) append(txs []core.Transaction) {
	for _, t := range txs {
		s.nextID++
		t.ID = s.nextID
		if t.Category == "" {
			t.Category = defaultCategory
		}
		s.items = append(s.items, t)
	}
}
