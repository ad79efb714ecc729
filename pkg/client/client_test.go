package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/ledger"
	memoryrepository "trade-journal-go/internal/repository/memory"
	"trade-journal-go/internal/server"
	"trade-journal-go/internal/snapshot"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	repo := memoryrepository.New()
	snapshots := snapshot.NewMemoryStore()

	ledgerSvc := ledger.NewService(repo, snapshots, logger)
	analyticsSvc := analytics.NewService(repo, snapshots, logger)

	cfg := &config.Config{
		RateLimit: config.RateLimit{RPS: 1000, Burst: 1000},
	}
	srv := server.New(logger, cfg, ledgerSvc, analyticsSvc)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestClientTradeLifecycle(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.URL, "user-1")
	ctx := context.Background()

	account, err := c.CreateAccount(ctx, AccountInput{
		Name:           "Main",
		Broker:         "IBKR",
		InitialBalance: d("10000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10000", account.CurrentBalance.String())

	exitDate := time.Now().UTC()
	trade, err := c.CreateTrade(ctx, TradeInput{
		AccountID:  account.ID,
		Symbol:     "aapl",
		Direction:  "long",
		Quantity:   d("10"),
		EntryPrice: d("100"),
		EntryDate:  exitDate.Add(-24 * time.Hour),
		ExitPrice:  dp("110"),
		ExitDate:   &exitDate,
		Fees:       d("5"),
		Tags:       []string{"momentum"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, "closed", trade.Status)
	assert.Equal(t, "95", trade.PnL.String())

	// The closed trade's pnl is reflected in the account balance.
	account, err = c.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10095", account.CurrentBalance.String())

	updated, err := c.UpdateTrade(ctx, trade.ID, TradePatch{ExitPrice: dp("120")})
	require.NoError(t, err)
	assert.Equal(t, "195", updated.PnL.String())

	account, err = c.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10195", account.CurrentBalance.String())

	trades, total, err := c.ListTrades(ctx, TradeListOptions{AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, trades, 1)

	require.NoError(t, c.DeleteTrade(ctx, trade.ID))

	account, err = c.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000", account.CurrentBalance.String())
}

func TestClientAnalytics(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.URL, "user-1")
	ctx := context.Background()

	account, err := c.CreateAccount(ctx, AccountInput{
		Name:           "Main",
		Broker:         "IBKR",
		InitialBalance: d("10000"),
	})
	require.NoError(t, err)

	seed := func(symbol, entry, exit string) {
		exitDate := time.Now().UTC()
		_, err := c.CreateTrade(ctx, TradeInput{
			AccountID:  account.ID,
			Symbol:     symbol,
			Direction:  "long",
			Quantity:   d("1"),
			EntryPrice: d(entry),
			EntryDate:  exitDate.Add(-time.Hour),
			ExitPrice:  dp(exit),
			ExitDate:   &exitDate,
			Fees:       d("0"),
		})
		require.NoError(t, err)
	}
	seed("AAPL", "100", "150")
	seed("TSLA", "200", "180")

	metrics, err := c.Performance(ctx, AnalyticsOptions{AccountID: account.ID, Period: "all"})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalTrades)
	assert.Equal(t, "30", metrics.NetProfit.String())
	assert.Equal(t, "50", metrics.WinRate.String())

	grouped, err := c.GroupedPerformance(ctx, AnalyticsOptions{AccountID: account.ID}, "symbol")
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Equal(t, "50", grouped["AAPL"].NetProfit.String())
	assert.Equal(t, "-20", grouped["TSLA"].NetProfit.String())
}

func TestClientErrorsSurfaceAsAPIError(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := New(ts.URL, "user-1")
	account, err := owner.CreateAccount(ctx, AccountInput{
		Name:           "Main",
		Broker:         "IBKR",
		InitialBalance: d("1000"),
	})
	require.NoError(t, err)

	entryDate := time.Now().UTC()
	trade, err := owner.CreateTrade(ctx, TradeInput{
		AccountID:  account.ID,
		Symbol:     "AAPL",
		Direction:  "long",
		Quantity:   d("1"),
		EntryPrice: d("100"),
		EntryDate:  entryDate,
	})
	require.NoError(t, err)

	// Another user's trades are indistinguishable from absent ones.
	intruder := New(ts.URL, "user-2")
	_, err = intruder.GetTrade(ctx, trade.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "resource not found", apiErr.Message)

	// Validation failures come back as 400 with the reason.
	_, err = owner.CreateTrade(ctx, TradeInput{
		AccountID:  account.ID,
		Symbol:     "AAPL",
		Direction:  "sideways",
		Quantity:   d("1"),
		EntryPrice: d("100"),
		EntryDate:  entryDate,
	})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
}
