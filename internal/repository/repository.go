package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
)

// TradeFilter narrows a trade listing. Zero values mean "no constraint".
type TradeFilter struct {
	UserID    string
	AccountID string
	Symbol    string
	Status    string
	SetupID   string
	Tags      []string

	EntryFrom *time.Time
	EntryTo   *time.Time
	ExitFrom  *time.Time
	ExitTo    *time.Time

	Limit  int
	Offset int
}

// TradeRepository is the storage contract for trades. GetByID returns
// (nil, nil) when no trade exists with the given id.
type TradeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Trade, error)
	List(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	Count(ctx context.Context, filter TradeFilter) (int64, error)
	Create(ctx context.Context, trade *models.Trade) error
	Save(ctx context.Context, trade *models.Trade) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

// AccountRepository is the storage contract for accounts. GetByID returns
// (nil, nil) when no account exists with the given id.
//
// IncrementBalance must be a single atomic read-modify-write against the
// account row, not a read-then-write in application code; concurrent
// reconciliations against the same account rely on it.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Save(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	IncrementBalance(ctx context.Context, id string, delta decimal.Decimal) error
}

// Repository bundles the entity stores with a transactional boundary.
// InTx runs fn against a repository whose writes commit together; if fn
// returns an error nothing it wrote becomes visible.
type Repository interface {
	Trades() TradeRepository
	Accounts() AccountRepository
	InTx(ctx context.Context, fn func(tx Repository) error) error
}
