package gormrepository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
)

// Store is the GORM-backed repository.
type Store struct {
	db *gorm.DB
}

var _ repository.Repository = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Trades() repository.TradeRepository {
	return &tradeStore{db: s.db}
}

func (s *Store) Accounts() repository.AccountRepository {
	return &accountStore{db: s.db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// --- trades -----------------------------------------------------------------

type tradeStore struct {
	db *gorm.DB
}

func (s *tradeStore) GetByID(ctx context.Context, id string) (*models.Trade, error) {
	var trade models.Trade
	err := s.db.WithContext(ctx).First(&trade, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trade %s: %w", id, err)
	}
	return &trade, nil
}

func applyTradeFilter(query *gorm.DB, f repository.TradeFilter) *gorm.DB {
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.AccountID != "" {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if f.Symbol != "" {
		query = query.Where("symbol = ?", f.Symbol)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.SetupID != "" {
		query = query.Where("setup_id = ?", f.SetupID)
	}
	if f.EntryFrom != nil {
		query = query.Where("entry_date >= ?", *f.EntryFrom)
	}
	if f.EntryTo != nil {
		query = query.Where("entry_date <= ?", *f.EntryTo)
	}
	if f.ExitFrom != nil {
		query = query.Where("exit_date >= ?", *f.ExitFrom)
	}
	if f.ExitTo != nil {
		query = query.Where("exit_date <= ?", *f.ExitTo)
	}
	if len(f.Tags) > 0 {
		// Tags is a JSON array column; a trade matches when it carries any
		// of the requested tags.
		tags := query.Session(&gorm.Session{NewDB: true})
		for _, tag := range f.Tags {
			tags = tags.Or(`tags LIKE ?`, `%"`+tag+`"%`)
		}
		query = query.Where(tags)
	}
	return query
}

func (s *tradeStore) List(ctx context.Context, f repository.TradeFilter) ([]models.Trade, error) {
	query := applyTradeFilter(s.db.WithContext(ctx).Model(&models.Trade{}), f)
	query = query.Order("entry_date desc")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}
	var trades []models.Trade
	if err := query.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

func (s *tradeStore) Count(ctx context.Context, f repository.TradeFilter) (int64, error) {
	var count int64
	query := applyTradeFilter(s.db.WithContext(ctx).Model(&models.Trade{}), f)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func (s *tradeStore) Create(ctx context.Context, trade *models.Trade) error {
	if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (s *tradeStore) Save(ctx context.Context, trade *models.Trade) error {
	if err := s.db.WithContext(ctx).Save(trade).Error; err != nil {
		return fmt.Errorf("failed to save trade %s: %w", trade.ID, err)
	}
	return nil
}

func (s *tradeStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Trade{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}
	return nil
}

func (s *tradeStore) DeleteByAccount(ctx context.Context, accountID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Trade{}, "account_id = ?", accountID).Error; err != nil {
		return fmt.Errorf("failed to delete trades for account %s: %w", accountID, err)
	}
	return nil
}

// --- accounts ---------------------------------------------------------------

type accountStore struct {
	db *gorm.DB
}

func (s *accountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", id, err)
	}
	return &account, nil
}

func (s *accountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountStore) ListAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountStore) Create(ctx context.Context, account *models.Account) error {
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *accountStore) Save(ctx context.Context, account *models.Account) error {
	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.ID, err)
	}
	return nil
}

func (s *accountStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return nil
}

// IncrementBalance applies the delta as a single atomic UPDATE so that
// concurrent reconciliations against the same account serialize in the
// database rather than racing in application code.
func (s *accountStore) IncrementBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to increment balance for account %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to increment balance: account %s not found", id)
	}
	return nil
}
