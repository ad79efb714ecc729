package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-go/internal/models"
)

func closedTrade(pnl string) models.Trade {
	return models.Trade{
		Symbol:     "AAPL",
		AssetClass: models.AssetStock,
		Direction:  models.DirectionLong,
		Status:     models.StatusClosed,
		PnL:        decimal.RequireFromString(pnl),
	}
}

func TestSummarizeEmptyPopulation(t *testing.T) {
	m := Summarize(nil)

	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinningTrades)
	assert.Zero(t, m.LosingTrades)
	assert.True(t, m.WinRate.IsZero())
	assert.True(t, m.ProfitFactor.IsZero())
	assert.True(t, m.NetProfit.IsZero())
	assert.True(t, m.AverageWin.IsZero())
	assert.True(t, m.AverageLoss.IsZero())
	assert.True(t, m.Expectancy.IsZero())
}

func TestSummarizeMixedPopulation(t *testing.T) {
	trades := []models.Trade{
		closedTrade("100"),
		closedTrade("50"),
		closedTrade("-30"),
		closedTrade("0"), // breakeven counts as a loss
	}

	m := Summarize(trades)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.Equal(t, "150", m.GrossProfit.String())
	assert.Equal(t, "-30", m.GrossLoss.String())
	assert.Equal(t, "120", m.NetProfit.String())
	assert.Equal(t, "50", m.WinRate.String())
	assert.Equal(t, "5", m.ProfitFactor.String())
	assert.Equal(t, "75", m.AverageWin.String())
	assert.Equal(t, "-15", m.AverageLoss.String())
	// 0.5*75 + 0.5*(-15)
	assert.Equal(t, "30", m.Expectancy.String())
	assert.Equal(t, "100", m.LargestWin.String())
	assert.Equal(t, "-30", m.LargestLoss.String())
}

func TestSummarizeProfitFactorSentinel(t *testing.T) {
	// Only profits: the factor is reported as the 999 "effectively
	// infinite" sentinel, not a division by zero.
	m := Summarize([]models.Trade{closedTrade("10"), closedTrade("20")})
	assert.Equal(t, "999", m.ProfitFactor.String())

	// Only breakeven trades: both gross sides are zero, factor is zero.
	m = Summarize([]models.Trade{closedTrade("0")})
	assert.True(t, m.ProfitFactor.IsZero())
}

func TestSummarizeAllLosses(t *testing.T) {
	m := Summarize([]models.Trade{closedTrade("-10"), closedTrade("-40")})

	assert.Equal(t, 0, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.True(t, m.WinRate.IsZero())
	assert.True(t, m.ProfitFactor.IsZero())
	assert.Equal(t, "-25", m.AverageLoss.String())
	// 0*avgWin + 1*avgLoss
	assert.Equal(t, "-25", m.Expectancy.String())
}

func TestGroupBySymbol(t *testing.T) {
	aapl := closedTrade("100")
	tsla := closedTrade("-50")
	tsla.Symbol = "TSLA"

	grouped := GroupBy([]models.Trade{aapl, tsla}, DimensionSymbol)

	require.Len(t, grouped, 2)
	assert.Equal(t, 1, grouped["AAPL"].TotalTrades)
	assert.Equal(t, "100", grouped["AAPL"].NetProfit.String())
	assert.Equal(t, "-50", grouped["TSLA"].NetProfit.String())
}

func TestGroupBySetupUsesNoSetupBucket(t *testing.T) {
	setup := "breakout-setup"
	withSetup := closedTrade("80")
	withSetup.SetupID = &setup
	orphanA := closedTrade("10")
	orphanB := closedTrade("-20")

	population := []models.Trade{withSetup, orphanA, orphanB}
	grouped := GroupBy(population, DimensionSetup)

	require.Len(t, grouped, 2)
	require.Contains(t, grouped, NoSetupBucket)
	require.Contains(t, grouped, setup)

	// The bucket's metrics must equal Summarize applied to exactly that
	// subset: grouping composes with summarizing.
	assert.Equal(t, Summarize([]models.Trade{orphanA, orphanB}), grouped[NoSetupBucket])
	assert.Equal(t, Summarize([]models.Trade{withSetup}), grouped[setup])
}

func TestGroupByDirectionAndAssetClass(t *testing.T) {
	long := closedTrade("100")
	short := closedTrade("25")
	short.Direction = models.DirectionShort
	short.AssetClass = models.AssetCrypto

	byDirection := GroupBy([]models.Trade{long, short}, DimensionDirection)
	require.Len(t, byDirection, 2)
	assert.Equal(t, 1, byDirection[models.DirectionLong].TotalTrades)
	assert.Equal(t, 1, byDirection[models.DirectionShort].TotalTrades)

	byClass := GroupBy([]models.Trade{long, short}, DimensionAssetClass)
	require.Len(t, byClass, 2)
	assert.Equal(t, "100", byClass[models.AssetStock].NetProfit.String())
	assert.Equal(t, "25", byClass[models.AssetCrypto].NetProfit.String())
}
