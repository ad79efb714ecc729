package memoryrepository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
)

// Store is an in-memory repository. It backs unit tests and keeps the
// ledger and analytics services independent of a real database.
type Store struct {
	mu       sync.RWMutex
	trades   map[string]models.Trade
	accounts map[string]models.Account
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		trades:   make(map[string]models.Trade),
		accounts: make(map[string]models.Account),
	}
}

func (s *Store) Trades() repository.TradeRepository {
	return (*tradeStore)(s)
}

func (s *Store) Accounts() repository.AccountRepository {
	return (*accountStore)(s)
}

// InTx runs fn against the store itself. Writes apply immediately; the
// in-memory store offers no rollback, which is acceptable for the tests
// it serves.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	return fn(s)
}

// --- trades -----------------------------------------------------------------

type tradeStore Store

func (s *tradeStore) GetByID(ctx context.Context, id string) (*models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trade, ok := s.trades[id]
	if !ok {
		return nil, nil
	}
	return &trade, nil
}

func matchesFilter(t models.Trade, f repository.TradeFilter) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.SetupID != "" && (t.SetupID == nil || *t.SetupID != f.SetupID) {
		return false
	}
	if f.EntryFrom != nil && t.EntryDate.Before(*f.EntryFrom) {
		return false
	}
	if f.EntryTo != nil && t.EntryDate.After(*f.EntryTo) {
		return false
	}
	if f.ExitFrom != nil && (t.ExitDate == nil || t.ExitDate.Before(*f.ExitFrom)) {
		return false
	}
	if f.ExitTo != nil && (t.ExitDate == nil || t.ExitDate.After(*f.ExitTo)) {
		return false
	}
	if len(f.Tags) > 0 {
		tags := models.ListFromJSON(t.Tags)
		found := false
		for _, want := range f.Tags {
			for _, have := range tags {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *tradeStore) collect(f repository.TradeFilter) []models.Trade {
	var trades []models.Trade
	for _, t := range s.trades {
		if matchesFilter(t, f) {
			trades = append(trades, t)
		}
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].EntryDate.After(trades[j].EntryDate)
	})
	return trades
}

func (s *tradeStore) List(ctx context.Context, f repository.TradeFilter) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trades := s.collect(f)
	if f.Offset > 0 {
		if f.Offset >= len(trades) {
			return nil, nil
		}
		trades = trades[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(trades) {
		trades = trades[:f.Limit]
	}
	return trades, nil
}

func (s *tradeStore) Count(ctx context.Context, f repository.TradeFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collect(f))), nil
}

func (s *tradeStore) Create(ctx context.Context, trade *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	trade.CreatedAt = now
	trade.UpdatedAt = now
	s.trades[trade.ID] = *trade
	return nil
}

func (s *tradeStore) Save(ctx context.Context, trade *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trade.UpdatedAt = time.Now()
	s.trades[trade.ID] = *trade
	return nil
}

func (s *tradeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trades, id)
	return nil
}

func (s *tradeStore) DeleteByAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.trades {
		if t.AccountID == accountID {
			delete(s.trades, id)
		}
	}
	return nil
}

// --- accounts ---------------------------------------------------------------

type accountStore Store

func (s *accountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (s *accountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []models.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *accountStore) ListAll(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *accountStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = *account
	return nil
}

func (s *accountStore) Save(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account.UpdatedAt = time.Now()
	s.accounts[account.ID] = *account
	return nil
}

func (s *accountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

func (s *accountStore) IncrementBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return repositoryNotFound(id)
	}
	account.CurrentBalance = account.CurrentBalance.Add(delta)
	account.UpdatedAt = time.Now()
	s.accounts[id] = account
	return nil
}

func repositoryNotFound(id string) error {
	return &notFoundError{id: id}
}

type notFoundError struct {
	id string
}

func (e *notFoundError) Error() string {
	return "account " + e.id + " not found"
}
