package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trade-journal-go/internal/models"
	memoryrepository "trade-journal-go/internal/repository/memory"
	"trade-journal-go/internal/snapshot"
)

type ledgerFixture struct {
	service   *Service
	repo      *memoryrepository.Store
	snapshots *snapshot.MemoryStore
	account   *models.Account
}

const ownerID = "user-1"

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	repo := memoryrepository.New()
	snapshots := snapshot.NewMemoryStore()
	service := NewService(repo, snapshots, zap.NewNop())

	account, err := service.CreateAccount(context.Background(), ownerID, CreateAccountInput{
		Name:           "Main",
		Broker:         "IBKR",
		InitialBalance: d("10000"),
	})
	require.NoError(t, err)

	return &ledgerFixture{service: service, repo: repo, snapshots: snapshots, account: account}
}

func (f *ledgerFixture) balance(t *testing.T) string {
	t.Helper()
	account, err := f.repo.Accounts().GetByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account.CurrentBalance.String()
}

func closedInput(accountID string) CreateTradeInput {
	return CreateTradeInput{
		AccountID:  accountID,
		Symbol:     "aapl",
		Direction:  models.DirectionLong,
		Quantity:   d("10"),
		EntryPrice: d("100"),
		EntryDate:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		ExitPrice:  dp("110"),
		ExitDate:   tp(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)),
		Fees:       d("5"),
	}
}

func openInput(accountID string) CreateTradeInput {
	input := closedInput(accountID)
	input.ExitPrice = nil
	input.ExitDate = nil
	return input
}

func TestCreateTradeOpen(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, openInput(f.account.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusOpen, trade.Status)
	assert.Equal(t, "AAPL", trade.Symbol, "symbol must be normalized to uppercase")
	assert.True(t, trade.PnL.IsZero())
	assert.Equal(t, "10000", f.balance(t), "an open trade must not move the balance")
}

func TestCreateTradeClosed(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, trade.Status)
	assert.Equal(t, "95", trade.PnL.String())
	assert.Equal(t, "9.5", trade.PnLPercentage.String())
	assert.Equal(t, "10095", f.balance(t))
}

func TestAmendTradeReopenRestoresBalance(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)
	require.Equal(t, "10095", f.balance(t))

	// Clearing the exit fields reopens the trade; the balance must return
	// exactly to its pre-creation value.
	amended, err := f.service.AmendTrade(context.Background(), ownerID, trade.ID, TradePatch{ClearExit: true})
	require.NoError(t, err)

	assert.Equal(t, models.StatusOpen, amended.Status)
	assert.True(t, amended.PnL.IsZero())
	assert.Nil(t, amended.ExitPrice)
	assert.Nil(t, amended.ExitDate)
	assert.Equal(t, "10000", f.balance(t))
}

func TestAmendTradeOpenToClosed(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, openInput(f.account.ID))
	require.NoError(t, err)

	amended, err := f.service.AmendTrade(context.Background(), ownerID, trade.ID, TradePatch{
		ExitPrice: dp("110"),
		ExitDate:  tp(time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, amended.Status)
	assert.Equal(t, "95", amended.PnL.String())
	assert.Equal(t, "10095", f.balance(t))
}

func TestAmendTradeClosedToClosedAppliesDifferenceOnly(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	// New pnl = (120-100)*10 - 5 = 195; delta over the stored 95 is +100.
	amended, err := f.service.AmendTrade(context.Background(), ownerID, trade.ID, TradePatch{
		ExitPrice: dp("120"),
	})
	require.NoError(t, err)

	assert.Equal(t, "195", amended.PnL.String())
	assert.Equal(t, "10195", f.balance(t))
}

func TestAmendTradeNonFinancialChangeIsNoOpForBalance(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	// Seed a snapshot so we can observe that a zero-delta amendment does
	// not invalidate it.
	require.NoError(t, f.snapshots.Put(context.Background(), f.account.ID, "all", models.PerformanceMetrics{TotalTrades: 1}))

	notes := "entered too early"
	_, err = f.service.AmendTrade(context.Background(), ownerID, trade.ID, TradePatch{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "10095", f.balance(t))
	_, ok, err := f.snapshots.Get(context.Background(), f.account.ID, "all")
	require.NoError(t, err)
	assert.True(t, ok, "zero-delta amendments must not invalidate snapshots")
}

func TestAmendTradeInvalidatesSnapshotsOnBalanceChange(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	require.NoError(t, f.snapshots.Put(context.Background(), f.account.ID, "all", models.PerformanceMetrics{TotalTrades: 1}))

	_, err = f.service.AmendTrade(context.Background(), ownerID, trade.ID, TradePatch{ExitPrice: dp("120")})
	require.NoError(t, err)

	_, ok, err := f.snapshots.Get(context.Background(), f.account.ID, "all")
	require.NoError(t, err)
	assert.False(t, ok, "a balance-changing amendment must invalidate snapshots")
}

func TestDeleteClosedTradeRemovesContribution(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)
	require.Equal(t, "10095", f.balance(t))

	require.NoError(t, f.service.DeleteTrade(context.Background(), ownerID, trade.ID))

	assert.Equal(t, "10000", f.balance(t))
	deleted, err := f.repo.Trades().GetByID(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestDeleteOpenTradeLeavesBalance(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, openInput(f.account.ID))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTrade(context.Background(), ownerID, trade.ID))
	assert.Equal(t, "10000", f.balance(t))
}

func TestTradeOwnershipEnforced(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	_, err = f.service.GetTrade(context.Background(), "intruder", trade.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.service.AmendTrade(context.Background(), "intruder", trade.ID, TradePatch{ClearExit: true})
	assert.ErrorIs(t, err, ErrNotOwned)

	err = f.service.DeleteTrade(context.Background(), "intruder", trade.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	// The balance and the trade itself must be untouched.
	assert.Equal(t, "10095", f.balance(t))
}

func TestTradeNotFound(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.GetTrade(context.Background(), ownerID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.service.DeleteTrade(context.Background(), ownerID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTradeAccountChecks(t *testing.T) {
	f := newLedgerFixture(t)

	input := closedInput("missing-account")
	_, err := f.service.CreateTrade(context.Background(), ownerID, input)
	assert.ErrorIs(t, err, ErrNotFound)

	input = closedInput(f.account.ID)
	_, err = f.service.CreateTrade(context.Background(), "intruder", input)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestCreateTradeValidation(t *testing.T) {
	f := newLedgerFixture(t)

	testCases := []struct {
		name   string
		mutate func(*CreateTradeInput)
	}{
		{"zero quantity", func(in *CreateTradeInput) { in.Quantity = d("0") }},
		{"negative quantity", func(in *CreateTradeInput) { in.Quantity = d("-1") }},
		{"zero entry price", func(in *CreateTradeInput) { in.EntryPrice = d("0") }},
		{"negative fees", func(in *CreateTradeInput) { in.Fees = d("-1") }},
		{"missing symbol", func(in *CreateTradeInput) { in.Symbol = "  " }},
		{"bad direction", func(in *CreateTradeInput) { in.Direction = "sideways" }},
		{"bad asset class", func(in *CreateTradeInput) { in.AssetClass = "art" }},
		{"zero exit price", func(in *CreateTradeInput) { in.ExitPrice = dp("0") }},
		{"zero stop loss", func(in *CreateTradeInput) { in.StopLoss = dp("0") }},
		{"rating out of range", func(in *CreateTradeInput) { rating := 9; in.Rating = &rating }},
		{"missing entry date", func(in *CreateTradeInput) { in.EntryDate = time.Time{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := closedInput(f.account.ID)
			tc.mutate(&input)
			_, err := f.service.CreateTrade(context.Background(), ownerID, input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing invalid may have moved the balance.
	assert.Equal(t, "10000", f.balance(t))
}

func TestListTradesScopedToOwner(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)
	_, err = f.service.CreateTrade(context.Background(), ownerID, openInput(f.account.ID))
	require.NoError(t, err)

	trades, total, err := f.service.ListTrades(context.Background(), ownerID, ListTradesQuery{})
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.EqualValues(t, 2, total)

	closedOnly, total, err := f.service.ListTrades(context.Background(), ownerID, ListTradesQuery{Status: models.StatusClosed})
	require.NoError(t, err)
	assert.Len(t, closedOnly, 1)
	assert.EqualValues(t, 1, total)

	other, total, err := f.service.ListTrades(context.Background(), "someone-else", ListTradesQuery{})
	require.NoError(t, err)
	assert.Empty(t, other)
	assert.EqualValues(t, 0, total)
}
