// Package ledger owns the trade lifecycle: it derives the financial
// fields of each trade, keeps account balances consistent with realized
// P&L across every create/amend/delete and open/closed transition, and
// enforces ownership on every entry point.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
	"trade-journal-go/internal/snapshot"
)

// Service is the trade ledger. All operations run under a caller-supplied
// owner identity; the identity is trusted, authentication lives outside
// the core.
type Service struct {
	repo       repository.Repository
	reconciler *Reconciler
	snapshots  snapshot.Store
	logger     *zap.Logger
}

func NewService(repo repository.Repository, snapshots snapshot.Store, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		reconciler: NewReconciler(logger),
		snapshots:  snapshots,
		logger:     logger,
	}
}

// CreateTradeInput carries the raw entry/exit fields for a new trade.
type CreateTradeInput struct {
	AccountID  string
	Symbol     string
	AssetClass string
	Direction  string
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryDate  time.Time
	ExitPrice  *decimal.Decimal
	ExitDate   *time.Time
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
	Fees       decimal.Decimal
	SetupID    *string
	Tags       []string
	Mistakes   []string
	Notes      string
	Rating     *int
}

// TradePatch amends an existing trade. Nil pointer fields are left
// untouched; the Clear flags reset their optional counterparts, e.g.
// ClearExit reopens a closed trade by removing both exit fields.
type TradePatch struct {
	Symbol     *string
	AssetClass *string
	Direction  *string
	Quantity   *decimal.Decimal
	EntryPrice *decimal.Decimal
	EntryDate  *time.Time

	ExitPrice *decimal.Decimal
	ExitDate  *time.Time
	ClearExit bool

	StopLoss      *decimal.Decimal
	ClearStopLoss bool

	TakeProfit      *decimal.Decimal
	ClearTakeProfit bool

	Fees *decimal.Decimal

	SetupID    *string
	ClearSetup bool

	Tags     *[]string
	Mistakes *[]string
	Notes    *string

	Rating      *int
	ClearRating bool
}

// ListTradesQuery narrows and pages a trade listing. The owner constraint
// is always added by the service.
type ListTradesQuery struct {
	AccountID string
	Symbol    string
	Status    string
	SetupID   string
	Tags      []string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// contribution is a trade's realized effect on its account balance: its
// P&L when closed, zero when open.
func contribution(t *models.Trade) decimal.Decimal {
	if t.Status == models.StatusClosed {
		return t.PnL
	}
	return decimal.Zero
}

// CreateTrade validates the input, derives status and financial fields,
// persists the trade and, when it is created already closed, applies its
// full P&L to the owning account in the same transaction.
func (s *Service) CreateTrade(ctx context.Context, ownerID string, input CreateTradeInput) (*models.Trade, error) {
	account, err := s.repo.Accounts().GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, input.AccountID)
	}
	if account.UserID != ownerID {
		return nil, fmt.Errorf("%w: account %s", ErrNotOwned, input.AccountID)
	}

	if input.AssetClass == "" {
		input.AssetClass = models.AssetStock
	}
	trade := &models.Trade{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		AccountID:  input.AccountID,
		Symbol:     normalizeSymbol(input.Symbol),
		AssetClass: input.AssetClass,
		Direction:  input.Direction,
		Quantity:   input.Quantity,
		EntryPrice: input.EntryPrice,
		EntryDate:  input.EntryDate,
		ExitPrice:  input.ExitPrice,
		ExitDate:   input.ExitDate,
		StopLoss:   input.StopLoss,
		TakeProfit: input.TakeProfit,
		Fees:       input.Fees,
		SetupID:    input.SetupID,
		Tags:       models.JSONList(input.Tags),
		Mistakes:   models.JSONList(input.Mistakes),
		Notes:      input.Notes,
		Rating:     input.Rating,
	}
	if err := validateTrade(trade); err != nil {
		return nil, err
	}
	applyDerived(trade)

	// A trade created closed contributes its whole P&L; prior contribution
	// is zero by definition.
	delta := contribution(trade)

	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.Trades().Create(ctx, trade); err != nil {
			return err
		}
		return s.reconciler.Apply(ctx, tx, trade.AccountID, delta)
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		s.invalidateSnapshots(ctx, trade.AccountID)
	}
	s.logger.Info("Trade created",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("status", trade.Status),
	)
	return trade, nil
}

// AmendTrade applies the patch, re-derives status and financial fields
// and reconciles the account with delta = newContribution - prior
// contribution. The single formula covers open->open, open->closed,
// closed->open and closed->closed alike.
func (s *Service) AmendTrade(ctx context.Context, ownerID, tradeID string, patch TradePatch) (*models.Trade, error) {
	trade, err := s.loadOwnedTrade(ctx, ownerID, tradeID)
	if err != nil {
		return nil, err
	}

	prior := contribution(trade)

	applyPatch(trade, patch)
	if err := validateTrade(trade); err != nil {
		return nil, err
	}
	applyDerived(trade)

	delta := contribution(trade).Sub(prior)

	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.Trades().Save(ctx, trade); err != nil {
			return err
		}
		return s.reconciler.Apply(ctx, tx, trade.AccountID, delta)
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		s.invalidateSnapshots(ctx, trade.AccountID)
	}
	s.logger.Info("Trade amended",
		zap.String("trade_id", trade.ID),
		zap.String("status", trade.Status),
		zap.String("balance_delta", delta.String()),
	)
	return trade, nil
}

// DeleteTrade removes the trade and backs its realized contribution out
// of the account balance. Deleting an open trade leaves the balance
// untouched.
func (s *Service) DeleteTrade(ctx context.Context, ownerID, tradeID string) error {
	trade, err := s.loadOwnedTrade(ctx, ownerID, tradeID)
	if err != nil {
		return err
	}

	delta := contribution(trade).Neg()

	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.Trades().Delete(ctx, trade.ID); err != nil {
			return err
		}
		return s.reconciler.Apply(ctx, tx, trade.AccountID, delta)
	})
	if err != nil {
		return err
	}

	if !delta.IsZero() {
		s.invalidateSnapshots(ctx, trade.AccountID)
	}
	s.logger.Info("Trade deleted", zap.String("trade_id", trade.ID))
	return nil
}

// GetTrade returns a single trade after an ownership check.
func (s *Service) GetTrade(ctx context.Context, ownerID, tradeID string) (*models.Trade, error) {
	return s.loadOwnedTrade(ctx, ownerID, tradeID)
}

// ListTrades returns the owner's trades matching the query, newest entry
// first, plus the total match count for pagination.
func (s *Service) ListTrades(ctx context.Context, ownerID string, q ListTradesQuery) ([]models.Trade, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	filter := repository.TradeFilter{
		UserID:    ownerID,
		AccountID: q.AccountID,
		Symbol:    normalizeSymbol(q.Symbol),
		Status:    q.Status,
		SetupID:   q.SetupID,
		Tags:      q.Tags,
		EntryFrom: q.StartDate,
		EntryTo:   q.EndDate,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	total, err := s.repo.Trades().Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	trades, err := s.repo.Trades().List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return trades, total, nil
}

func (s *Service) loadOwnedTrade(ctx context.Context, ownerID, tradeID string) (*models.Trade, error) {
	trade, err := s.repo.Trades().GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("%w: trade %s", ErrNotFound, tradeID)
	}
	if trade.UserID != ownerID {
		return nil, fmt.Errorf("%w: trade %s", ErrNotOwned, tradeID)
	}
	return trade, nil
}

func (s *Service) invalidateSnapshots(ctx context.Context, accountID string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Invalidate(ctx, accountID); err != nil {
		s.logger.Warn("Failed to invalidate metrics snapshots",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func applyPatch(t *models.Trade, p TradePatch) {
	if p.Symbol != nil {
		t.Symbol = normalizeSymbol(*p.Symbol)
	}
	if p.AssetClass != nil {
		t.AssetClass = *p.AssetClass
	}
	if p.Direction != nil {
		t.Direction = *p.Direction
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.EntryPrice != nil {
		t.EntryPrice = *p.EntryPrice
	}
	if p.EntryDate != nil {
		t.EntryDate = *p.EntryDate
	}
	if p.ClearExit {
		t.ExitPrice = nil
		t.ExitDate = nil
	} else {
		if p.ExitPrice != nil {
			t.ExitPrice = p.ExitPrice
		}
		if p.ExitDate != nil {
			t.ExitDate = p.ExitDate
		}
	}
	if p.ClearStopLoss {
		t.StopLoss = nil
	} else if p.StopLoss != nil {
		t.StopLoss = p.StopLoss
	}
	if p.ClearTakeProfit {
		t.TakeProfit = nil
	} else if p.TakeProfit != nil {
		t.TakeProfit = p.TakeProfit
	}
	if p.Fees != nil {
		t.Fees = *p.Fees
	}
	if p.ClearSetup {
		t.SetupID = nil
	} else if p.SetupID != nil {
		t.SetupID = p.SetupID
	}
	if p.Tags != nil {
		t.Tags = models.JSONList(*p.Tags)
	}
	if p.Mistakes != nil {
		t.Mistakes = models.JSONList(*p.Mistakes)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.ClearRating {
		t.Rating = nil
	} else if p.Rating != nil {
		t.Rating = p.Rating
	}
}

func validateTrade(t *models.Trade) error {
	if t.Symbol == "" {
		return validationErr("symbol is required")
	}
	if !models.ValidDirection(t.Direction) {
		return validationErr("direction must be %q or %q", models.DirectionLong, models.DirectionShort)
	}
	if !models.ValidAssetClass(t.AssetClass) {
		return validationErr("unknown asset class %q", t.AssetClass)
	}
	if !t.Quantity.IsPositive() {
		return validationErr("quantity must be greater than zero")
	}
	if !t.EntryPrice.IsPositive() {
		return validationErr("entry price must be greater than zero")
	}
	if t.EntryDate.IsZero() {
		return validationErr("entry date is required")
	}
	if t.ExitPrice != nil && !t.ExitPrice.IsPositive() {
		return validationErr("exit price must be greater than zero")
	}
	if t.StopLoss != nil && !t.StopLoss.IsPositive() {
		return validationErr("stop loss must be greater than zero")
	}
	if t.TakeProfit != nil && !t.TakeProfit.IsPositive() {
		return validationErr("take profit must be greater than zero")
	}
	if t.Fees.IsNegative() {
		return validationErr("fees must not be negative")
	}
	if t.Rating != nil && (*t.Rating < 1 || *t.Rating > 5) {
		return validationErr("rating must be between 1 and 5")
	}
	return nil
}
